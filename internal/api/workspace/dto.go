package workspace

import (
	"BioVision/internal/annotator"
	"BioVision/internal/entity"
)

type AddImageRequest struct {
	Path string `json:"path" validate:"required"`
}

type ToolRequest struct {
	Mode string `json:"mode" validate:"required,toolmode"`
}

type ToolState struct {
	Mode annotator.Mode `json:"mode"`
}

type ResizeRequest struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

type ZoomRequest struct {
	CursorX float64 `json:"cursorX"`
	CursorY float64 `json:"cursorY"`
	Factor  float64 `json:"factor" validate:"gt=0"`
}

type PanRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ImageSummary is the carousel view of a workspace image.
type ImageSummary struct {
	ID               string                  `json:"id"`
	Filename         string                  `json:"filename"`
	Path             string                  `json:"path"`
	URL              string                  `json:"url"`
	ThumbnailURL     string                  `json:"thumbnailUrl"`
	Width            int                     `json:"width"`
	Height           int                     `json:"height"`
	LoadError        string                  `json:"loadError,omitempty"`
	BoxCount         int                     `json:"boxCount"`
	ProcessingStatus entity.ProcessingStatus `json:"processingStatus"`
	Active           bool                    `json:"active"`
}

type AddImageResult struct {
	Image    ImageSummary `json:"image"`
	Restored int          `json:"restoredBoxes"`
}

// Message types exchanged on the editor websocket.
const (
	MessagePointer  = "pointer"
	MessageKey      = "key"
	MessageSnapshot = "snapshot"
	MessageOutcome  = "outcome"
	MessageError    = "error"
)

type ClientMessage struct {
	Type    string                  `json:"type"`
	Pointer *annotator.PointerEvent `json:"pointer,omitempty"`
	Key     *annotator.KeyEvent     `json:"key,omitempty"`
}

type ServerMessage struct {
	Type     string              `json:"type"`
	Snapshot *annotator.Snapshot `json:"snapshot,omitempty"`
	Outcome  *annotator.Outcome  `json:"outcome,omitempty"`
	Error    string              `json:"error,omitempty"`
}
