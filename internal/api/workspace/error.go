package workspace

import (
	"net/http"

	"BioVision/pkg/response"
)

var (
	ErrImagePathNotFound = response.NewError(http.StatusNotFound, "image file does not exist")
	ErrImagePathIsDir    = response.NewError(http.StatusBadRequest, "image path is a directory")
	ErrSaveUpload        = response.NewError(http.StatusInternalServerError, "failed to store uploaded image")
	ErrThumbnail         = response.NewError(http.StatusUnprocessableEntity, "failed to render thumbnail")
	ErrInvalidFilename   = response.NewError(http.StatusBadRequest, "invalid image filename")
)
