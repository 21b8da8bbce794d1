package annotator

import (
	"math"
	"testing"

	"BioVision/internal/entity"
	"BioVision/pkg/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(kind PointerKind, x, y float64) PointerEvent {
	return PointerEvent{Kind: kind, Position: &ScreenPoint{X: x, Y: y}}
}

func drag(m *ToolMachine, s *Store, vp viewport.Viewport, x1, y1, x2, y2 float64) Outcome {
	m.Handle(at(PointerDown, x1, y1), s, vp)
	m.Handle(at(PointerMove, (x1+x2)/2, (y1+y2)/2), s, vp)
	return m.Handle(at(PointerUp, x2, y2), s, vp)
}

func TestBoxToolDrawsNormalizedBox(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.New(800, 600)

	out := drag(m, s, vp, 150, 160, 50, 40)

	assert.Equal(t, IntentCommitBox, out.Intent)
	require.Len(t, s.Boxes(), 1)
	assert.Equal(t, entity.Rect{Left: 50, Top: 40, Width: 100, Height: 120}, s.Boxes()[0].Rect())
	assert.False(t, m.Busy())
}

func TestBoxToolPreviewFollowsPointer(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.New(800, 600)

	start := m.Handle(at(PointerDown, 10, 10), s, vp)
	assert.Equal(t, IntentStartBox, start.Intent)

	out := m.Handle(at(PointerMove, 60, 30), s, vp)
	assert.Equal(t, IntentPreviewBox, out.Intent)
	require.NotNil(t, out.Preview)
	assert.Equal(t, entity.Rect{Left: 10, Top: 10, Width: 50, Height: 20}, *out.Preview)
	assert.False(t, out.Changed)
	assert.Empty(t, s.Boxes())
}

func TestBoxToolDiscardsSmallDraft(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.New(800, 600)

	out := drag(m, s, vp, 100, 100, 105, 180)

	assert.Equal(t, IntentDiscardBox, out.Intent)
	assert.False(t, out.Changed)
	assert.Empty(t, s.Boxes())
	assert.False(t, s.CanUndo())
}

func TestBoxToolClampsToImage(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.New(800, 600)

	drag(m, s, vp, 700, 500, 1200, 900)

	require.Len(t, s.Boxes(), 1)
	assert.Equal(t, entity.Rect{Left: 700, Top: 500, Width: 100, Height: 100}, s.Boxes()[0].Rect())
}

func TestBoxToolUsesViewportTransform(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.Viewport{Scale: 2, OffsetX: 20, OffsetY: 10, ImageWidth: 800, ImageHeight: 600}

	drag(m, s, vp, 120, 110, 320, 310)

	require.Len(t, s.Boxes(), 1)
	assert.Equal(t, entity.Rect{Left: 50, Top: 50, Width: 100, Height: 100}, s.Boxes()[0].Rect())
}

func TestBoxToolIgnoresDownOutsideImage(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.New(800, 600)

	out := m.Handle(at(PointerDown, -10, 50), s, vp)
	assert.Equal(t, IntentNone, out.Intent)
	assert.False(t, m.Busy())
}

func TestToolIgnoresMissingPosition(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.New(800, 600)

	assert.Equal(t, IntentNone, m.Handle(PointerEvent{Kind: PointerDown}, s, vp).Intent)
	assert.Equal(t, IntentNone, m.Handle(at(PointerDown, math.NaN(), 4), s, vp).Intent)
	assert.Equal(t, IntentNone, m.Handle(at(PointerDown, 4, 4), nil, vp).Intent)
}

func TestToolIgnoresFailedImage(t *testing.T) {
	img := &entity.AnnotatedImage{ID: "bad", Width: 800, Height: 600, LoadError: "decode failed"}
	s := NewStore(img, nil)
	m := NewToolMachine(ModeBox)

	out := drag(m, s, viewport.New(800, 600), 10, 10, 200, 200)
	assert.Equal(t, IntentNone, out.Intent)
	assert.Empty(t, img.Boxes)
}

func TestLandmarkToolHints(t *testing.T) {
	s := newTestStore(t)
	s.AddBox(entity.Rect{Left: 100, Top: 100, Width: 100, Height: 100})
	m := NewToolMachine(ModeLandmark)
	vp := viewport.New(800, 600)

	out := m.Handle(at(PointerDown, 10, 10), s, vp)
	assert.Equal(t, HintClickInsideBox, out.Hint)
	assert.False(t, out.Changed)

	out = m.Handle(at(PointerDown, 900, 10), s, vp)
	assert.Equal(t, HintClickInsideImage, out.Hint)

	out = m.Handle(at(PointerDown, 150, 150), s, vp)
	assert.Equal(t, IntentAddLandmark, out.Intent)
	assert.Equal(t, 1, out.LandmarkIndex)
	require.NotNil(t, out.Landmark)
	assert.Equal(t, 150.0, out.Landmark.X)
}

func TestLandmarkToolTargetsFirstContainingBox(t *testing.T) {
	s := newTestStore(t)
	first, _ := s.AddBox(entity.Rect{Left: 0, Top: 0, Width: 200, Height: 200})
	s.AddBox(entity.Rect{Left: 100, Top: 100, Width: 200, Height: 200})
	m := NewToolMachine(ModeLandmark)

	out := m.Handle(at(PointerDown, 150, 150), s, viewport.New(800, 600))

	assert.Equal(t, first.ID, out.BoxID)
	got, _ := s.Box(first.ID)
	assert.Len(t, got.Landmarks, 1)
}

func TestSelectToolMovesBoxWithLandmarks(t *testing.T) {
	s := newTestStore(t)
	box, _ := s.AddBox(entity.Rect{Left: 100, Top: 100, Width: 100, Height: 100})
	s.AddLandmark(box.ID, 120, 130)
	s.SkipLandmark(box.ID)
	s.SelectBox(nil)
	m := NewToolMachine(ModeSelect)
	vp := viewport.New(800, 600)

	down := m.Handle(at(PointerDown, 150, 150), s, vp)
	assert.Equal(t, IntentSelectBox, down.Intent)
	assert.True(t, down.Changed)

	move := m.Handle(at(PointerMove, 170, 180), s, vp)
	assert.Equal(t, IntentDragBox, move.Intent)
	historyBefore := len(s.img.History)

	up := m.Handle(at(PointerUp, 170, 180), s, vp)
	assert.Equal(t, IntentUpdateBox, up.Intent)
	assert.True(t, up.Changed)
	assert.Len(t, s.img.History, historyBefore+1, "a drag is one undo step")

	got, _ := s.Box(box.ID)
	assert.Equal(t, entity.Rect{Left: 120, Top: 130, Width: 100, Height: 100}, got.Rect())
	assert.Equal(t, 140.0, got.Landmarks[0].X)
	assert.Equal(t, 160.0, got.Landmarks[0].Y)
	assert.Equal(t, entity.SkippedCoordinate, got.Landmarks[1].X)
}

func TestSelectToolKeepsDraggedBoxOnImage(t *testing.T) {
	s := newTestStore(t)
	box, _ := s.AddBox(entity.Rect{Left: 650, Top: 450, Width: 100, Height: 100})
	m := NewToolMachine(ModeSelect)
	vp := viewport.New(800, 600)

	m.Handle(at(PointerDown, 700, 500), s, vp)
	m.Handle(at(PointerUp, 900, 900), s, vp)

	got, _ := s.Box(box.ID)
	assert.Equal(t, 700.0, got.Left)
	assert.Equal(t, 500.0, got.Top)
}

func TestSelectToolResizesFromCorner(t *testing.T) {
	s := newTestStore(t)
	box, _ := s.AddBox(entity.Rect{Left: 100, Top: 100, Width: 100, Height: 100})
	s.AddLandmark(box.ID, 150, 150)
	m := NewToolMachine(ModeSelect)
	vp := viewport.New(800, 600)

	down := m.Handle(at(PointerDown, 203, 198), s, vp)
	require.Equal(t, IntentResizeBox, down.Intent)

	m.Handle(at(PointerMove, 250, 260), s, vp)
	up := m.Handle(at(PointerUp, 250, 260), s, vp)
	require.True(t, up.Changed)

	got, _ := s.Box(box.ID)
	assert.Equal(t, entity.Rect{Left: 100, Top: 100, Width: 150, Height: 160}, got.Rect())
	assert.Equal(t, 150.0, got.Landmarks[0].X, "resize does not move landmarks")
}

func TestSelectToolResizeStopsAtMinimum(t *testing.T) {
	s := newTestStore(t)
	box, _ := s.AddBox(entity.Rect{Left: 100, Top: 100, Width: 100, Height: 100})
	m := NewToolMachine(ModeSelect)
	vp := viewport.New(800, 600)

	m.Handle(at(PointerDown, 200, 200), s, vp)
	m.Handle(at(PointerMove, 150, 150), s, vp)
	m.Handle(at(PointerMove, 102, 102), s, vp)
	m.Handle(at(PointerUp, 102, 102), s, vp)

	got, _ := s.Box(box.ID)
	assert.Equal(t, entity.Rect{Left: 100, Top: 100, Width: 50, Height: 50}, got.Rect())
}

func TestSelectToolClickOnEmptyAreaClearsSelection(t *testing.T) {
	s := newTestStore(t)
	s.AddBox(entity.Rect{Left: 100, Top: 100, Width: 100, Height: 100})
	m := NewToolMachine(ModeSelect)

	out := m.Handle(at(PointerDown, 500, 500), s, viewport.New(800, 600))

	assert.Equal(t, IntentClearSelection, out.Intent)
	assert.True(t, out.Changed)
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestSelectToolClickWithoutDragRecordsNothing(t *testing.T) {
	s := newTestStore(t)
	s.AddBox(entity.Rect{Left: 100, Top: 100, Width: 100, Height: 100})
	m := NewToolMachine(ModeSelect)
	vp := viewport.New(800, 600)
	historyBefore := len(s.img.History)

	m.Handle(at(PointerDown, 150, 150), s, vp)
	out := m.Handle(at(PointerUp, 150, 150), s, vp)

	assert.Equal(t, IntentNone, out.Intent)
	assert.Len(t, s.img.History, historyBefore)
}

func TestSetModeResetsGesture(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.New(800, 600)

	m.Handle(at(PointerDown, 10, 10), s, vp)
	require.True(t, m.Busy())

	assert.True(t, m.SetMode(ModeLandmark))
	assert.False(t, m.Busy())
	assert.False(t, m.SetMode(Mode("lasso")))
	assert.Equal(t, ModeLandmark, m.Mode())

	out := m.Handle(at(PointerUp, 300, 300), s, vp)
	assert.Equal(t, IntentNone, out.Intent)
	assert.Empty(t, s.Boxes())
}

func TestCancelDropsDraft(t *testing.T) {
	s := newTestStore(t)
	m := NewToolMachine(ModeBox)
	vp := viewport.New(800, 600)

	assert.Equal(t, IntentNone, m.Cancel().Intent)
	m.Handle(at(PointerDown, 10, 10), s, vp)
	assert.Equal(t, IntentCancel, m.Cancel().Intent)

	m.Handle(at(PointerUp, 300, 300), s, vp)
	assert.Empty(t, s.Boxes())
}
