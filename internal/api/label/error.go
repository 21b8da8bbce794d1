package label

import "BioVision/pkg/response"

var (
	ErrLabelNotFound    = response.NewError(404, "no saved labels for this image")
	ErrInvalidFilename  = response.NewError(400, "invalid image filename")
	ErrSaveLabelsFailed = response.NewError(500, "failed to save labels")
)
