package detectionService

import (
	"errors"
	"fmt"

	"BioVision/internal/annotator"
	"BioVision/internal/api/detection"
	contextPkg "BioVision/pkg/context"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// visionMaxSide bounds the image sent to a vision model.
const visionMaxSide = 1024

func (s *detectionService) Detect(ctx context.Context, req detection.DetectRequest) (annotator.DetectionOutcome, error) {
	ticket, err := s.ws.BeginDetection()
	if err != nil {
		return annotator.DetectionOutcome{}, err
	}

	if ticket.ManualBoxes && !req.Confirmed() {
		return needsConfirmation(ticket), nil
	}

	boxes, err := s.detect(ctx, ticket, req.Threshold())
	return s.ws.ApplyDetection(ticket, boxes, err), nil
}

func (s *detectionService) Predict(ctx context.Context, req detection.PredictRequest) (annotator.DetectionOutcome, error) {
	ticket, err := s.ws.BeginDetection()
	if err != nil {
		return annotator.DetectionOutcome{}, err
	}

	if ticket.ManualBoxes && !req.Confirmed() {
		return needsConfirmation(ticket), nil
	}

	if s.bridge == nil {
		return s.ws.ApplyPrediction(ticket, nil, detection.ErrBridgeUnavailable), nil
	}

	boxes, err := s.bridge.Predict(ctx, ticket.ImagePath, req.ModelTag)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"image_id":   ticket.ImageID,
			"model_tag":  req.ModelTag,
			"error":      err.Error(),
		}).Warn("Prediction request failed")
	}
	return s.ws.ApplyPrediction(ticket, boxes, err), nil
}

func (s *detectionService) Status(ctx context.Context) detection.DetectorStatus {
	st := detection.DetectorStatus{}
	if s.bridge != nil {
		st.BridgeConnected = s.bridge.IsConnected()
	}
	if s.vision != nil {
		st.Vision = s.vision.Name()
	}
	return st
}

// detect asks the bridge first and falls back to the vision model when the
// bridge is missing or fails.
func (s *detectionService) detect(ctx context.Context, t annotator.Ticket, threshold float64) ([]annotator.DetectedBox, error) {
	fields := logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"image_id":   t.ImageID,
	}

	var bridgeErr error
	if s.bridge != nil {
		boxes, err := s.bridge.Detect(ctx, t.ImagePath, threshold)
		if err == nil {
			return boxes, nil
		}
		bridgeErr = err
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Bridge detection failed")
	}

	if s.vision == nil {
		if bridgeErr == nil {
			return nil, detection.ErrNoDetector
		}
		return nil, bridgeErr
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	fields["vision"] = s.vision.Name()
	s.log.WithFields(fields).Info("Detecting with vision model")

	boxes, err := s.detectWithVision(ctx, t, threshold)
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Vision detection failed")
		return nil, errors.Join(bridgeErr, err)
	}
	return boxes, nil
}

func (s *detectionService) detectWithVision(ctx context.Context, t annotator.Ticket, threshold float64) ([]annotator.DetectedBox, error) {
	image, mimeType, err := s.utils.PrepareImageForVision(t.ImagePath, visionMaxSide)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrPrepareImage, err)
	}

	raw, err := s.vision.AnalyzeImage(ctx, image, mimeType, detection.VisionPrompt)
	if err != nil {
		return nil, err
	}

	result, err := detection.ParseVisionResult(raw)
	if err != nil {
		return nil, err
	}
	return detection.ToDetectedBoxes(result, t.Width, t.Height, threshold), nil
}

func needsConfirmation(t annotator.Ticket) annotator.DetectionOutcome {
	return annotator.DetectionOutcome{
		Status:  annotator.DetectionNeedsConfirmation,
		ImageID: t.ImageID,
		Message: "image has manually drawn boxes; send confirmReplace to replace them",
	}
}
