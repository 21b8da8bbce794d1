package annotator

import (
	"fmt"
	"time"

	"BioVision/pkg/log"
)

// Ticket identifies the image a detection or prediction request was issued
// for. Results are only applied while that image is still active.
type Ticket struct {
	ImageID     string    `json:"imageId"`
	ImagePath   string    `json:"imagePath"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	ManualBoxes bool      `json:"manualBoxes"`
	IssuedAt    time.Time `json:"issuedAt"`
}

type DetectionStatus string

const (
	DetectionApplied           DetectionStatus = "applied"
	DetectionEmpty             DetectionStatus = "empty"
	DetectionFailed            DetectionStatus = "failed"
	DetectionStale             DetectionStatus = "stale"
	DetectionNeedsConfirmation DetectionStatus = "needs_confirmation"
)

type DetectionOutcome struct {
	Status  DetectionStatus `json:"status"`
	ImageID string          `json:"imageId"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error,omitempty"`
}

// BeginDetection captures the active image for a request that will run
// outside the workspace lock.
func (w *Workspace) BeginDetection() (Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := w.activeStore()
	if st == nil {
		return Ticket{}, ErrNoActiveImage
	}
	if st.img.Failed() {
		return Ticket{}, ErrImageUnavailable
	}
	return Ticket{
		ImageID:     st.img.ID,
		ImagePath:   st.img.Path,
		Width:       st.img.Width,
		Height:      st.img.Height,
		ManualBoxes: st.HasManualBoxes(),
		IssuedAt:    time.Now(),
	}, nil
}

// ApplyDetection replaces the ticket image's boxes with the detected ones.
// Failures, empty results and results for an image that is no longer active
// leave the workspace untouched.
func (w *Workspace) ApplyDetection(t Ticket, boxes []DetectedBox, reqErr error) DetectionOutcome {
	return w.applyResult(t, "detection", reqErr, len(boxes), func(s *Store) int {
		return s.SetBoxesFromDetection(boxes)
	})
}

// ApplyPrediction is ApplyDetection for model output with landmarks.
func (w *Workspace) ApplyPrediction(t Ticket, boxes []PredictedBox, reqErr error) DetectionOutcome {
	return w.applyResult(t, "prediction", reqErr, len(boxes), func(s *Store) int {
		return s.SetBoxesFromPrediction(boxes)
	})
}

func (w *Workspace) applyResult(t Ticket, kind string, reqErr error, received int, apply func(*Store) int) DetectionOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := DetectionOutcome{ImageID: t.ImageID}
	fields := log.Fields{
		"image_id": t.ImageID,
		"kind":     kind,
		"elapsed":  time.Since(t.IssuedAt).String(),
	}

	if reqErr != nil {
		out.Status = DetectionFailed
		out.Error = reqErr.Error()
		out.Message = fmt.Sprintf("%s failed", kind)
		fields["error"] = reqErr.Error()
		w.log.WithFields(fields).Warn("Collaborator request failed")
		return out
	}

	if w.activeID != t.ImageID {
		out.Status = DetectionStale
		out.Message = fmt.Sprintf("%s result discarded: image is no longer active", kind)
		fields["active_id"] = w.activeID
		w.log.WithFields(fields).Info("Dropping stale result")
		return out
	}

	if received == 0 {
		out.Status = DetectionEmpty
		out.Message = "no specimens found"
		return out
	}

	applied := apply(w.activeStore())
	if applied == 0 {
		out.Status = DetectionEmpty
		out.Message = "no specimens above the minimum size"
		return out
	}

	w.tool.Reset()
	w.publish(t.ImageID)

	out.Status = DetectionApplied
	out.Count = applied
	out.Message = fmt.Sprintf("%d specimen(s) found", applied)
	fields["count"] = applied
	w.log.WithFields(fields).Info("Result applied")
	return out
}
