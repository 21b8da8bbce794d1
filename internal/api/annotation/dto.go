package annotation

import (
	"BioVision/internal/annotator"
	"BioVision/internal/entity"
)

type AddBoxRequest struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

type SelectRequest struct {
	BoxID *int64 `json:"boxId"`
}

type LandmarkRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ExportQuery struct {
	Format string `query:"format" validate:"omitempty,exportformat"`
}

// EditResult reports one edit on the active image. Edits that reference
// unknown boxes or violate the size rules come back with Changed false and
// a hint instead of an error.
type EditResult struct {
	Changed       bool                `json:"changed"`
	Hint          string              `json:"hint,omitempty"`
	Box           *entity.BoundingBox `json:"box,omitempty"`
	Landmark      *entity.Point       `json:"landmark,omitempty"`
	LandmarkIndex int                 `json:"landmarkIndex,omitempty"`
	Snapshot      annotator.Snapshot  `json:"snapshot"`
}

type ExportUpload struct {
	Format   string `json:"format"`
	Key      string `json:"key"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Images   int    `json:"images"`
}
