package entity

import "time"

// LabelPoint and LabelBox are the persisted label file shapes read by the
// training pipeline.
type LabelPoint struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	ID int64   `json:"id"`
}

type LabelBox struct {
	Left      float64      `json:"left"`
	Top       float64      `json:"top"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Landmarks []LabelPoint `json:"landmarks"`
}

type LabelFile struct {
	ImageFilename string     `json:"imageFilename"`
	Boxes         []LabelBox `json:"boxes"`
}

type Label struct {
	ImageFilename string    `db:"image_filename"`
	ImagePath     string    `db:"image_path"`
	Boxes         string    `db:"boxes"`
	BoxCount      int       `db:"box_count"`
	LandmarkCount int       `db:"landmark_count"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// LabelBoxes converts annotation boxes to the persisted label shape.
func LabelBoxes(boxes []BoundingBox) []LabelBox {
	out := make([]LabelBox, 0, len(boxes))
	for _, b := range boxes {
		lb := LabelBox{
			Left:      b.Left,
			Top:       b.Top,
			Width:     b.Width,
			Height:    b.Height,
			Landmarks: make([]LabelPoint, 0, len(b.Landmarks)),
		}
		for _, p := range b.Landmarks {
			lb.Landmarks = append(lb.Landmarks, LabelPoint{X: p.X, Y: p.Y, ID: p.ID})
		}
		out = append(out, lb)
	}
	return out
}
