package entity

// MinBoxSize is the smallest accepted box side, in image pixels.
const MinBoxSize = 10.0

type BoxSource string

const (
	SourceManual    BoxSource = "manual"
	SourcePredicted BoxSource = "predicted"
	SourceCorrected BoxSource = "corrected"
)

type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusPredicted ProcessingStatus = "predicted"
	StatusReview    ProcessingStatus = "review"
	StatusApproved  ProcessingStatus = "approved"
)

// SkippedCoordinate marks a landmark that was deliberately left out.
const SkippedCoordinate = -1.0

type Point struct {
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	ID          int64    `json:"id"`
	IsSkipped   bool     `json:"isSkipped,omitempty"`
	Label       string   `json:"label,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	IsPredicted bool     `json:"isPredicted,omitempty"`
	IsCorrected bool     `json:"isCorrected,omitempty"`
}

type BoundingBox struct {
	ID         int64     `json:"id"`
	Left       float64   `json:"left"`
	Top        float64   `json:"top"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Landmarks  []Point   `json:"landmarks"`
	Confidence *float64  `json:"confidence,omitempty"`
	ClassName  string    `json:"className,omitempty"`
	Source     BoxSource `json:"source,omitempty"`
}

// Contains reports whether (x, y) lies inside the box, edges included.
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.Left && x <= b.Left+b.Width && y >= b.Top && y <= b.Top+b.Height
}

func (b BoundingBox) Rect() Rect {
	return Rect{Left: b.Left, Top: b.Top, Width: b.Width, Height: b.Height}
}

// Rect is a bare rectangle in image space.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizeRect builds a rect from two arbitrary corners.
func NormalizeRect(x1, y1, x2, y2 float64) Rect {
	r := Rect{Left: x1, Top: y1, Width: x2 - x1, Height: y2 - y1}
	if r.Width < 0 {
		r.Left = x2
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Top = y2
		r.Height = -r.Height
	}
	return r
}

func (r Rect) LargeEnough() bool {
	return r.Width >= MinBoxSize && r.Height >= MinBoxSize
}

type AnnotatedImage struct {
	ID               string           `json:"id"`
	Path             string           `json:"path"`
	URL              string           `json:"url"`
	Filename         string           `json:"filename"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	LoadError        string           `json:"loadError,omitempty"`
	Boxes            []BoundingBox    `json:"boxes"`
	SelectedBoxID    *int64           `json:"selectedBoxId"`
	History          [][]BoundingBox  `json:"history,omitempty"`
	Future           [][]BoundingBox  `json:"future,omitempty"`
	ProcessingStatus ProcessingStatus `json:"processingStatus,omitempty"`
	// Status stacks run parallel to History and Future.
	StatusHistory []ProcessingStatus `json:"-"`
	StatusFuture  []ProcessingStatus `json:"-"`
}

// Failed reports whether the image could not be decoded.
func (img AnnotatedImage) Failed() bool {
	return img.LoadError != ""
}

func (img AnnotatedImage) InBounds(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= float64(img.Width) && y <= float64(img.Height)
}

// CloneBoxes returns a deep copy, nil stays nil.
func CloneBoxes(boxes []BoundingBox) []BoundingBox {
	if boxes == nil {
		return nil
	}
	out := make([]BoundingBox, len(boxes))
	for i, b := range boxes {
		out[i] = b
		out[i].Confidence = cloneFloat(b.Confidence)
		out[i].Landmarks = make([]Point, len(b.Landmarks))
		for j, p := range b.Landmarks {
			out[i].Landmarks[j] = p
			out[i].Landmarks[j].Confidence = cloneFloat(p.Confidence)
		}
	}
	return out
}

func CloneHistory(stack [][]BoundingBox) [][]BoundingBox {
	if stack == nil {
		return nil
	}
	out := make([][]BoundingBox, len(stack))
	for i, s := range stack {
		out[i] = CloneBoxes(s)
	}
	return out
}

// Clone deep copies the image including its history stacks.
func (img AnnotatedImage) Clone() AnnotatedImage {
	out := img
	out.Boxes = CloneBoxes(img.Boxes)
	out.History = CloneHistory(img.History)
	out.Future = CloneHistory(img.Future)
	out.StatusHistory = append([]ProcessingStatus(nil), img.StatusHistory...)
	out.StatusFuture = append([]ProcessingStatus(nil), img.StatusFuture...)
	if img.SelectedBoxID != nil {
		id := *img.SelectedBoxID
		out.SelectedBoxID = &id
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
