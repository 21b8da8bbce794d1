package annotator

import (
	"math"

	"BioVision/internal/entity"
	"BioVision/pkg/viewport"
)

type Mode string

const (
	ModeBox      Mode = "box"
	ModeLandmark Mode = "landmark"
	ModeSelect   Mode = "select"
)

func ParseMode(s string) (Mode, bool) {
	switch m := Mode(s); m {
	case ModeBox, ModeLandmark, ModeSelect:
		return m, true
	}
	return "", false
}

type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerMove PointerKind = "move"
	PointerUp   PointerKind = "up"
)

type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerEvent is a raw pointer event in screen coordinates. A nil Position
// means the input device reported no pointer location.
type PointerEvent struct {
	Kind     PointerKind  `json:"kind"`
	Position *ScreenPoint `json:"position"`
}

type Intent string

const (
	IntentNone           Intent = "none"
	IntentStartBox       Intent = "start-box"
	IntentPreviewBox     Intent = "preview-box"
	IntentCommitBox      Intent = "commit-box"
	IntentDiscardBox     Intent = "discard-box"
	IntentAddLandmark    Intent = "add-landmark"
	IntentSelectBox      Intent = "select-box"
	IntentClearSelection Intent = "clear-selection"
	IntentDragBox        Intent = "drag-box"
	IntentResizeBox      Intent = "resize-box"
	IntentUpdateBox      Intent = "update-box"
	IntentDeleteBox      Intent = "delete-box"
	IntentUndo           Intent = "undo"
	IntentRedo           Intent = "redo"
	IntentCancel         Intent = "cancel"
	IntentSwitchMode     Intent = "switch-mode"
)

const (
	HintClickInsideBox   = "click inside a box"
	HintClickInsideImage = "click inside the image"
)

// Outcome describes what the engine did with one input event. Changed is
// set when the box array or the selection was modified.
type Outcome struct {
	Intent        Intent        `json:"intent"`
	Changed       bool          `json:"changed"`
	Hint          string        `json:"hint,omitempty"`
	Preview       *entity.Rect  `json:"preview,omitempty"`
	BoxID         int64         `json:"boxId,omitempty"`
	Landmark      *entity.Point `json:"landmark,omitempty"`
	LandmarkIndex int           `json:"landmarkIndex,omitempty"`
	Mode          Mode          `json:"mode,omitempty"`
}

func ignored() Outcome { return Outcome{Intent: IntentNone} }

type gesture int

const (
	gestureIdle gesture = iota
	gestureDrawing
	gestureMoving
	gestureResizing
)

// DefaultHandleTolerance is the grab distance of resize handles, in screen
// pixels.
const DefaultHandleTolerance = 8.0

// ToolMachine turns pointer events into store edits according to the active
// tool. It only holds gesture state; the boxes live in the Store.
type ToolMachine struct {
	mode            Mode
	gesture         gesture
	anchorX         float64
	anchorY         float64
	boxID           int64
	origin          entity.Rect
	preview         entity.Rect
	handleTolerance float64
}

func NewToolMachine(mode Mode) *ToolMachine {
	if _, ok := ParseMode(string(mode)); !ok {
		mode = ModeBox
	}
	return &ToolMachine{mode: mode, handleTolerance: DefaultHandleTolerance}
}

func (m *ToolMachine) Mode() Mode { return m.mode }

func (m *ToolMachine) SetMode(mode Mode) bool {
	if _, ok := ParseMode(string(mode)); !ok {
		return false
	}
	m.mode = mode
	m.Reset()
	return true
}

// Reset drops any gesture in progress.
func (m *ToolMachine) Reset() {
	m.gesture = gestureIdle
	m.boxID = 0
	m.origin = entity.Rect{}
	m.preview = entity.Rect{}
}

// Busy reports whether a drag gesture is in progress.
func (m *ToolMachine) Busy() bool { return m.gesture != gestureIdle }

// Preview returns the live rectangle of the current gesture.
func (m *ToolMachine) Preview() (entity.Rect, bool) {
	if m.gesture == gestureIdle {
		return entity.Rect{}, false
	}
	return m.preview, true
}

func (m *ToolMachine) Cancel() Outcome {
	if m.gesture == gestureIdle {
		return ignored()
	}
	m.Reset()
	return Outcome{Intent: IntentCancel}
}

// Handle interprets one pointer event. Events without a target image, for an
// image that failed to load, or without a position are ignored.
func (m *ToolMachine) Handle(ev PointerEvent, s *Store, vp viewport.Viewport) Outcome {
	if s == nil || s.img.Failed() || ev.Position == nil {
		return ignored()
	}
	if math.IsNaN(ev.Position.X) || math.IsNaN(ev.Position.Y) {
		return ignored()
	}

	x, y := vp.ToImage(ev.Position.X, ev.Position.Y)
	switch m.mode {
	case ModeBox:
		return m.handleBox(ev.Kind, x, y, s)
	case ModeLandmark:
		return m.handleLandmark(ev.Kind, x, y, s)
	case ModeSelect:
		return m.handleSelect(ev.Kind, x, y, s, vp)
	}
	return ignored()
}

func (m *ToolMachine) handleBox(kind PointerKind, x, y float64, s *Store) Outcome {
	switch kind {
	case PointerDown:
		if !s.img.InBounds(x, y) {
			return ignored()
		}
		m.gesture = gestureDrawing
		m.anchorX, m.anchorY = x, y
		m.preview = entity.Rect{Left: x, Top: y}
		return m.previewOutcome(IntentStartBox)

	case PointerMove:
		if m.gesture != gestureDrawing {
			return ignored()
		}
		x, y = clampToImage(s.img, x, y)
		m.preview = entity.NormalizeRect(m.anchorX, m.anchorY, x, y)
		return m.previewOutcome(IntentPreviewBox)

	case PointerUp:
		if m.gesture != gestureDrawing {
			return ignored()
		}
		x, y = clampToImage(s.img, x, y)
		draft := entity.NormalizeRect(m.anchorX, m.anchorY, x, y)
		m.Reset()

		box, ok := s.AddBox(draft)
		if !ok {
			return Outcome{Intent: IntentDiscardBox, Preview: &draft}
		}
		return Outcome{Intent: IntentCommitBox, Changed: true, BoxID: box.ID}
	}
	return ignored()
}

func (m *ToolMachine) handleLandmark(kind PointerKind, x, y float64, s *Store) Outcome {
	if kind != PointerDown {
		return ignored()
	}
	if !s.img.InBounds(x, y) {
		return Outcome{Intent: IntentNone, Hint: HintClickInsideImage}
	}

	box, ok := s.BoxAt(x, y)
	if !ok {
		return Outcome{Intent: IntentNone, Hint: HintClickInsideBox}
	}

	p, index, ok := s.AddLandmark(box.ID, x, y)
	if !ok {
		return ignored()
	}
	return Outcome{
		Intent:        IntentAddLandmark,
		Changed:       true,
		BoxID:         box.ID,
		Landmark:      &p,
		LandmarkIndex: index,
	}
}

func (m *ToolMachine) handleSelect(kind PointerKind, x, y float64, s *Store, vp viewport.Viewport) Outcome {
	switch kind {
	case PointerDown:
		if sel, ok := s.Selected(); ok {
			tolerance := vp.ScreenToImageDistance(m.handleTolerance)
			if fx, fy, hit := oppositeCorner(sel.Rect(), x, y, tolerance); hit {
				m.gesture = gestureResizing
				m.boxID = sel.ID
				m.anchorX, m.anchorY = fx, fy
				m.origin = sel.Rect()
				m.preview = m.origin
				return m.previewOutcome(IntentResizeBox)
			}
		}

		box, ok := s.BoxAt(x, y)
		if !ok {
			changed := s.SelectBox(nil)
			return Outcome{Intent: IntentClearSelection, Changed: changed}
		}
		id := box.ID
		changed := s.SelectBox(&id)
		m.gesture = gestureMoving
		m.boxID = box.ID
		m.anchorX, m.anchorY = x, y
		m.origin = box.Rect()
		m.preview = m.origin
		return Outcome{Intent: IntentSelectBox, Changed: changed, BoxID: box.ID}

	case PointerMove:
		return m.trackSelect(x, y, s)

	case PointerUp:
		if m.gesture != gestureMoving && m.gesture != gestureResizing {
			return ignored()
		}
		m.trackSelect(x, y, s)
		moving := m.gesture == gestureMoving
		boxID, final, origin := m.boxID, m.preview, m.origin
		m.Reset()

		if final == origin {
			return ignored()
		}
		ok := s.UpdateBox(boxID, BoxPatch{
			Left:          &final.Left,
			Top:           &final.Top,
			Width:         &final.Width,
			Height:        &final.Height,
			MoveLandmarks: moving,
		})
		return Outcome{Intent: IntentUpdateBox, Changed: ok, BoxID: boxID}
	}
	return ignored()
}

func (m *ToolMachine) trackSelect(x, y float64, s *Store) Outcome {
	switch m.gesture {
	case gestureMoving:
		left := m.origin.Left + (x - m.anchorX)
		top := m.origin.Top + (y - m.anchorY)
		maxLeft := math.Max(0, float64(s.img.Width)-m.origin.Width)
		maxTop := math.Max(0, float64(s.img.Height)-m.origin.Height)
		m.preview = entity.Rect{
			Left:   clamp(left, 0, maxLeft),
			Top:    clamp(top, 0, maxTop),
			Width:  m.origin.Width,
			Height: m.origin.Height,
		}
		return m.previewOutcome(IntentDragBox)

	case gestureResizing:
		x, y = clampToImage(s.img, x, y)
		candidate := entity.NormalizeRect(m.anchorX, m.anchorY, x, y)
		if candidate.LargeEnough() {
			m.preview = candidate
		}
		return m.previewOutcome(IntentResizeBox)
	}
	return ignored()
}

func (m *ToolMachine) previewOutcome(intent Intent) Outcome {
	r := m.preview
	return Outcome{Intent: intent, Preview: &r, BoxID: m.boxID}
}

// oppositeCorner reports whether (x, y) grabs a corner handle of r and, if
// so, returns the corner that stays fixed during the resize.
func oppositeCorner(r entity.Rect, x, y, tolerance float64) (float64, float64, bool) {
	corners := [4][2]float64{
		{r.Left, r.Top},
		{r.Left + r.Width, r.Top},
		{r.Left, r.Top + r.Height},
		{r.Left + r.Width, r.Top + r.Height},
	}
	for i, c := range corners {
		if math.Abs(x-c[0]) <= tolerance && math.Abs(y-c[1]) <= tolerance {
			o := corners[3-i]
			return o[0], o[1], true
		}
	}
	return 0, 0, false
}

func clampToImage(img *entity.AnnotatedImage, x, y float64) (float64, float64) {
	return clamp(x, 0, float64(img.Width)), clamp(y, 0, float64(img.Height))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
