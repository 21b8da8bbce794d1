package detection

import (
	"net/http"

	"BioVision/pkg/response"
)

var (
	ErrNoDetector        = response.NewError(http.StatusServiceUnavailable, "no detector is available")
	ErrVisionResponse    = response.NewError(http.StatusBadGateway, "vision model returned an unreadable response")
	ErrPrepareImage      = response.NewError(http.StatusUnprocessableEntity, "failed to prepare image for detection")
	ErrBridgeUnavailable = response.NewError(http.StatusServiceUnavailable, "prediction requires the detection bridge")
)
