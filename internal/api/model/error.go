package model

import "BioVision/pkg/response"

var (
	ErrModelNotFound      = response.NewError(404, "Model not found")
	ErrModelExists        = response.NewError(409, "A model with that name already exists")
	ErrInvalidModelName   = response.NewError(400, "model names may only contain letters, digits, '.', '_' and '-'")
	ErrTrainingInProgress = response.NewError(409, "a training run is already in progress")
	ErrFlushLabels        = response.NewError(500, "failed to save labels before training")
)
