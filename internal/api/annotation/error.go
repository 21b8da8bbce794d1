package annotation

import (
	"net/http"

	"BioVision/pkg/response"
)

const (
	HintBoxTooSmall     = "boxes must be at least 10 px wide and tall"
	HintBoxNotFound     = "box not found"
	HintLandmarkMissing = "landmark not found"
	HintOutsideImage    = "click inside the image"
	HintNothingToUndo   = "nothing to undo"
	HintNothingToRedo   = "nothing to redo"
	HintAlreadyEmpty    = "image has no boxes"
	HintUnchanged       = "nothing changed"
)

var (
	ErrInvalidBoxID       = response.NewError(http.StatusBadRequest, "box id must be an integer")
	ErrInvalidLandmarkID  = response.NewError(http.StatusBadRequest, "landmark id must be an integer")
	ErrInvalidFormat      = response.NewError(http.StatusBadRequest, "format must be json or csv")
	ErrExportFailed       = response.NewError(http.StatusInternalServerError, "failed to render export")
	ErrExportStorage      = response.NewError(http.StatusServiceUnavailable, "export storage is not configured")
	ErrExportUploadFailed = response.NewError(http.StatusBadGateway, "failed to upload export")
)
