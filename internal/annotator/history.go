package annotator

import "BioVision/internal/entity"

// commit installs next as the current box array and records the previous
// array, with the processing status it had, as one undo step. Callers must
// pass a freshly built slice; the previous array is never written to again,
// so it can be stacked as is.
func (s *Store) commit(next []entity.BoundingBox) {
	prev := s.img.Boxes
	if prev == nil {
		prev = []entity.BoundingBox{}
	}
	if next == nil {
		next = []entity.BoundingBox{}
	}

	s.img.History = append(s.img.History, prev)
	s.img.StatusHistory = append(s.img.StatusHistory, s.img.ProcessingStatus)
	s.img.Future = nil
	s.img.StatusFuture = nil
	s.img.Boxes = next
}

// Undo swaps the current array and status with the latest history entry.
func (s *Store) Undo() bool {
	n := len(s.img.History)
	if n == 0 || s.img.Failed() {
		return false
	}

	snapshot := s.img.History[n-1]
	s.img.History = s.img.History[:n-1]
	s.img.Future = append(s.img.Future, s.img.Boxes)
	s.img.Boxes = snapshot
	s.img.StatusFuture, s.img.StatusHistory = swapStatus(s.img.StatusFuture, s.img.StatusHistory, &s.img.ProcessingStatus)
	s.reconcileSelection()
	return true
}

func (s *Store) Redo() bool {
	n := len(s.img.Future)
	if n == 0 || s.img.Failed() {
		return false
	}

	snapshot := s.img.Future[n-1]
	s.img.Future = s.img.Future[:n-1]
	s.img.History = append(s.img.History, s.img.Boxes)
	s.img.Boxes = snapshot
	s.img.StatusHistory, s.img.StatusFuture = swapStatus(s.img.StatusHistory, s.img.StatusFuture, &s.img.ProcessingStatus)
	s.reconcileSelection()
	return true
}

// swapStatus pushes the current status onto dst and pops src into it.
// An empty src leaves the status alone.
func swapStatus(dst, src []entity.ProcessingStatus, current *entity.ProcessingStatus) ([]entity.ProcessingStatus, []entity.ProcessingStatus) {
	n := len(src)
	if n == 0 {
		return dst, src
	}
	dst = append(dst, *current)
	*current = src[n-1]
	return dst, src[:n-1]
}

func (s *Store) CanUndo() bool { return len(s.img.History) > 0 }

func (s *Store) CanRedo() bool { return len(s.img.Future) > 0 }

// Clear empties the image as a regular undoable step. Clearing an image that
// has no boxes records nothing.
func (s *Store) Clear() bool {
	if len(s.img.Boxes) == 0 || s.img.Failed() {
		return false
	}

	s.commit([]entity.BoundingBox{})
	s.img.SelectedBoxID = nil
	s.markEdited()
	return true
}

// reconcileSelection falls back to the first box when the selected one is
// gone after a history jump.
func (s *Store) reconcileSelection() {
	if s.img.SelectedBoxID != nil && s.indexOf(*s.img.SelectedBoxID) >= 0 {
		return
	}
	if len(s.img.Boxes) == 0 {
		s.img.SelectedBoxID = nil
		return
	}
	id := s.img.Boxes[0].ID
	s.img.SelectedBoxID = &id
}
