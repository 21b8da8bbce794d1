package annotator

import (
	"errors"
	"sync"
	"time"

	"BioVision/internal/entity"
	"BioVision/pkg/log"
	"BioVision/pkg/viewport"
	"github.com/sirupsen/logrus"
)

var (
	ErrImageNotFound    = errors.New("image not found")
	ErrImageExists      = errors.New("image already in workspace")
	ErrNoActiveImage    = errors.New("no active image")
	ErrImageUnavailable = errors.New("image failed to load")
	ErrInvalidMode      = errors.New("invalid tool mode")
)

// Workspace holds the working set of images and serializes every input
// event and edit on them. At most one image is active; pointer events and
// store operations always target the active image.
type Workspace struct {
	mu        sync.Mutex
	log       *logrus.Logger
	ids       *IDGenerator
	images    map[string]*entity.AnnotatedImage
	order     []string
	activeID  string
	tool      *ToolMachine
	view      viewport.Viewport
	container [2]float64
	resizer   *viewport.Debouncer
	listeners map[uint64]Listener
	nextSub   uint64
	revision  uint64
}

type Option func(*Workspace)

func WithIDGenerator(ids *IDGenerator) Option {
	return func(w *Workspace) {
		w.ids = ids
	}
}

func WithResizeDelay(d time.Duration) Option {
	return func(w *Workspace) {
		w.resizer = viewport.NewDebouncer(d)
	}
}

func WithMode(mode Mode) Option {
	return func(w *Workspace) {
		w.tool.SetMode(mode)
	}
}

func NewWorkspace(logger *logrus.Logger, opts ...Option) *Workspace {
	w := &Workspace{
		log:       logger,
		ids:       NewIDGenerator(),
		images:    make(map[string]*entity.AnnotatedImage),
		tool:      NewToolMachine(ModeBox),
		resizer:   viewport.NewDebouncer(150 * time.Millisecond),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Close stops pending viewport recomputation.
func (w *Workspace) Close() {
	w.resizer.Stop()
}

// AddImage puts an image into the working set. The first image added
// becomes the active one. Saved labels are keyed by file name, so two
// images may not share one.
func (w *Workspace) AddImage(img entity.AnnotatedImage) (entity.AnnotatedImage, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.images[img.ID]; exists {
		return entity.AnnotatedImage{}, ErrImageExists
	}
	if img.Filename != "" {
		for _, existing := range w.images {
			if existing.Filename == img.Filename {
				return entity.AnnotatedImage{}, ErrImageExists
			}
		}
	}

	stored := img.Clone()
	if stored.Boxes == nil {
		stored.Boxes = []entity.BoundingBox{}
	}
	if stored.ProcessingStatus == "" {
		stored.ProcessingStatus = entity.StatusPending
	}
	w.images[stored.ID] = &stored
	w.order = append(w.order, stored.ID)

	if w.activeID == "" {
		w.activate(stored.ID)
	}

	w.log.WithFields(log.Fields{
		"image_id": stored.ID,
		"filename": stored.Filename,
		"failed":   stored.Failed(),
	}).Debug("Image added to workspace")

	return stored.Clone(), nil
}

func (w *Workspace) RemoveImage(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.images[id]; !ok {
		return false
	}
	delete(w.images, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}

	if w.activeID == id {
		w.activeID = ""
		w.tool.Reset()
		if len(w.order) > 0 {
			w.activate(w.order[0])
		}
	}
	return true
}

func (w *Workspace) Images() []entity.AnnotatedImage {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]entity.AnnotatedImage, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.images[id].Clone())
	}
	return out
}

func (w *Workspace) Image(id string) (entity.AnnotatedImage, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	img, ok := w.images[id]
	if !ok {
		return entity.AnnotatedImage{}, false
	}
	return img.Clone(), true
}

func (w *Workspace) Activate(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.images[id]; !ok {
		return ErrImageNotFound
	}
	if w.activeID != id {
		w.activate(id)
	}
	return nil
}

func (w *Workspace) activate(id string) {
	img := w.images[id]
	w.activeID = id
	w.tool.Reset()
	w.view = viewport.New(float64(img.Width), float64(img.Height))
	if w.container[0] > 0 && w.container[1] > 0 {
		w.view = w.view.Fit(w.container[0], w.container[1])
	}
}

func (w *Workspace) ActiveID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeID
}

func (w *Workspace) Active() (entity.AnnotatedImage, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.activeID == "" {
		return entity.AnnotatedImage{}, false
	}
	return w.images[w.activeID].Clone(), true
}

func (w *Workspace) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tool.Mode()
}

func (w *Workspace) SetMode(mode Mode) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.tool.SetMode(mode) {
		return ErrInvalidMode
	}
	return nil
}

func (w *Workspace) View() viewport.Viewport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

func (w *Workspace) Zoom(cursorX, cursorY, factor float64) viewport.Viewport {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.view = w.view.ZoomAt(cursorX, cursorY, factor)
	return w.view
}

func (w *Workspace) Pan(dx, dy float64) viewport.Viewport {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.view = w.view.Pan(dx, dy)
	return w.view
}

// Resize records the new container size and refits the view once the
// resize burst settles.
func (w *Workspace) Resize(width, height float64) {
	w.mu.Lock()
	w.container = [2]float64{width, height}
	w.mu.Unlock()

	w.resizer.Schedule(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.view = w.view.Fit(w.container[0], w.container[1])
	})
}

// HandlePointer feeds one pointer event to the tool machine.
func (w *Workspace) HandlePointer(ev PointerEvent) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := w.activeStore()
	if st == nil {
		return ignored()
	}

	out := w.tool.Handle(ev, st, w.view)
	if out.Changed {
		w.publish(w.activeID)
	}
	return out
}

// HandleKey applies keyboard shortcuts to the active image.
func (w *Workspace) HandleKey(ev KeyEvent) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	action := ev.action()
	if action == keySwitchBox || action == keySwitchLandmark || action == keySwitchSelect {
		w.tool.SetMode(modeForKey[action])
		return Outcome{Intent: IntentSwitchMode, Mode: w.tool.Mode()}
	}
	if action == keyCancel {
		return w.tool.Cancel()
	}

	st := w.activeStore()
	if st == nil || st.img.Failed() {
		return ignored()
	}

	var out Outcome
	switch action {
	case keyUndo:
		w.tool.Reset()
		out = Outcome{Intent: IntentUndo, Changed: st.Undo()}
	case keyRedo:
		w.tool.Reset()
		out = Outcome{Intent: IntentRedo, Changed: st.Redo()}
	case keyDelete:
		sel, ok := st.Selected()
		if !ok {
			return ignored()
		}
		w.tool.Reset()
		out = Outcome{Intent: IntentDeleteBox, Changed: st.DeleteBox(sel.ID), BoxID: sel.ID}
	default:
		return ignored()
	}

	if out.Changed {
		w.publish(w.activeID)
	}
	return out
}

// Apply runs op against the active image's store as one serialized edit.
// op reports whether it changed anything.
func (w *Workspace) Apply(op func(s *Store) bool) (Snapshot, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := w.activeStore()
	if st == nil {
		return Snapshot{}, false, ErrNoActiveImage
	}
	if st.img.Failed() {
		return w.snapshot(w.activeID), false, ErrImageUnavailable
	}

	changed := op(st)
	if changed {
		w.tool.Reset()
		w.publish(w.activeID)
	}
	return w.snapshot(w.activeID), changed, nil
}

// Restore seeds an image with previously saved boxes without recording
// history or notifying listeners.
func (w *Workspace) Restore(imageID string, boxes []entity.BoundingBox) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	img, ok := w.images[imageID]
	if !ok {
		return ErrImageNotFound
	}
	NewStore(img, w.ids).Restore(boxes)
	return nil
}

func (w *Workspace) activeStore() *Store {
	if w.activeID == "" {
		return nil
	}
	return NewStore(w.images[w.activeID], w.ids)
}
