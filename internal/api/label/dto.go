package label

import "time"

type LabelSummary struct {
	ImageFilename string    `json:"imageFilename"`
	ImagePath     string    `json:"imagePath"`
	BoxCount      int       `json:"boxCount"`
	LandmarkCount int       `json:"landmarkCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type SaveResult struct {
	Saved int      `json:"saved"`
	Files []string `json:"files"`
}
