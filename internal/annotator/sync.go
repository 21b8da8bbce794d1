package annotator

import "BioVision/internal/entity"

// Snapshot is the read-only view of one image handed to collaborators.
type Snapshot struct {
	ImageID       string                  `json:"imageId"`
	Filename      string                  `json:"filename"`
	Path          string                  `json:"path"`
	Boxes         []entity.BoundingBox    `json:"boxes"`
	SelectedBoxID *int64                  `json:"selectedBoxId"`
	CanUndo       bool                    `json:"canUndo"`
	CanRedo       bool                    `json:"canRedo"`
	Status        entity.ProcessingStatus `json:"processingStatus"`
	Revision      uint64                  `json:"revision"`
}

// Listener receives a snapshot after every committed change. It runs while
// the workspace is locked: it must return quickly and must not call back
// into the workspace.
type Listener func(Snapshot)

// Subscribe registers l and returns a function that removes it.
func (w *Workspace) Subscribe(l Listener) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextSub
	w.nextSub++
	w.listeners[id] = l

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
	}
}

// Snapshot returns the current state of an image.
func (w *Workspace) Snapshot(imageID string) (Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.images[imageID]; !ok {
		return Snapshot{}, false
	}
	return w.snapshot(imageID), true
}

func (w *Workspace) ActiveSnapshot() (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.activeID == "" {
		return Snapshot{}, ErrNoActiveImage
	}
	return w.snapshot(w.activeID), nil
}

func (w *Workspace) snapshot(imageID string) Snapshot {
	img := w.images[imageID]
	var selected *int64
	if img.SelectedBoxID != nil {
		id := *img.SelectedBoxID
		selected = &id
	}
	return Snapshot{
		ImageID:       img.ID,
		Filename:      img.Filename,
		Path:          img.Path,
		Boxes:         entity.CloneBoxes(img.Boxes),
		SelectedBoxID: selected,
		CanUndo:       len(img.History) > 0,
		CanRedo:       len(img.Future) > 0,
		Status:        img.ProcessingStatus,
		Revision:      w.revision,
	}
}

func (w *Workspace) publish(imageID string) {
	w.revision++
	if len(w.listeners) == 0 {
		return
	}
	snap := w.snapshot(imageID)
	for _, l := range w.listeners {
		l(snap)
	}
}
