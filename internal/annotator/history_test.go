package annotator

import (
	"math/rand"
	"testing"

	"BioVision/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mutate applies one random edit that is guaranteed to change the boxes.
func mutate(t *testing.T, s *Store, rng *rand.Rand) {
	t.Helper()
	boxes := s.Boxes()
	op := rng.Intn(5)
	if len(boxes) == 0 {
		op = 0
	}

	switch op {
	case 0:
		left := float64(rng.Intn(600))
		top := float64(rng.Intn(400))
		_, ok := s.AddBox(entity.Rect{Left: left, Top: top, Width: 20 + float64(rng.Intn(100)), Height: 20 + float64(rng.Intn(100))})
		require.True(t, ok)
	case 1:
		b := boxes[rng.Intn(len(boxes))]
		_, _, ok := s.AddLandmark(b.ID, b.Left+1, b.Top+1)
		require.True(t, ok)
	case 2:
		b := boxes[rng.Intn(len(boxes))]
		left := b.Left + 1
		require.True(t, s.UpdateBox(b.ID, BoxPatch{Left: &left, MoveLandmarks: true}))
	case 3:
		b := boxes[rng.Intn(len(boxes))]
		require.True(t, s.DeleteBox(b.ID))
	case 4:
		b := boxes[rng.Intn(len(boxes))]
		_, ok := s.SkipLandmark(b.ID)
		require.True(t, ok)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := newTestStore(t)

	const n = 40
	states := make([][]entity.BoundingBox, 0, n+1)
	states = append(states, s.Boxes())
	for i := 0; i < n; i++ {
		mutate(t, s, rng)
		states = append(states, s.Boxes())
	}

	for i := n - 1; i >= 0; i-- {
		require.True(t, s.Undo())
		assert.Equal(t, states[i], s.Boxes(), "undo step %d", i)
	}
	assert.Empty(t, s.Boxes())
	assert.False(t, s.Undo())

	for i := 1; i <= n; i++ {
		require.True(t, s.Redo())
		assert.Equal(t, states[i], s.Boxes(), "redo step %d", i)
	}
	assert.False(t, s.Redo())
}

func TestNewEditClearsRedo(t *testing.T) {
	s := newTestStore(t)
	s.AddBox(entity.Rect{Width: 20, Height: 20})
	s.AddBox(entity.Rect{Left: 50, Width: 20, Height: 20})

	require.True(t, s.Undo())
	require.True(t, s.CanRedo())

	s.AddBox(entity.Rect{Left: 100, Width: 20, Height: 20})
	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo())
}

func TestUndoReconcilesSelection(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.AddBox(entity.Rect{Width: 20, Height: 20})
	b, _ := s.AddBox(entity.Rect{Left: 50, Width: 20, Height: 20})

	require.True(t, s.Undo())
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, a.ID, sel.ID, "falls back to the first box")

	require.True(t, s.Undo())
	_, ok = s.Selected()
	assert.False(t, ok)

	require.True(t, s.Redo())
	require.True(t, s.Redo())
	require.True(t, s.SelectBox(&b.ID))
	require.True(t, s.DeleteBox(a.ID))
	require.True(t, s.Undo())
	sel, _ = s.Selected()
	assert.Equal(t, b.ID, sel.ID, "surviving selection is kept")
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.Clear(), "empty image")
	assert.False(t, s.CanUndo())

	box, _ := s.AddBox(entity.Rect{Width: 20, Height: 20})
	s.AddLandmark(box.ID, 5, 5)
	require.True(t, s.Clear())
	assert.Empty(t, s.Boxes())
	_, ok := s.Selected()
	assert.False(t, ok)

	require.True(t, s.Undo())
	restored := s.Boxes()
	require.Len(t, restored, 1)
	assert.Len(t, restored[0].Landmarks, 1)
}

func TestUndoRestoresProcessingStatus(t *testing.T) {
	s := newTestStore(t)
	s.img.ProcessingStatus = entity.StatusPending
	s.AddBox(entity.Rect{Width: 30, Height: 30})

	require.Equal(t, 1, s.SetBoxesFromDetection([]DetectedBox{{Left: 10, Top: 10, Width: 100, Height: 100, Confidence: 0.8}}))
	require.Equal(t, entity.StatusPredicted, s.img.ProcessingStatus)
	box := s.Boxes()[0]
	require.True(t, s.UpdateBox(box.ID, BoxPatch{Width: ptr(120.0)}))
	require.Equal(t, entity.StatusReview, s.img.ProcessingStatus)

	require.True(t, s.Undo())
	assert.Equal(t, entity.StatusPredicted, s.img.ProcessingStatus)
	require.True(t, s.Undo())
	assert.Equal(t, entity.StatusPending, s.img.ProcessingStatus)

	require.True(t, s.Redo())
	assert.Equal(t, entity.StatusPredicted, s.img.ProcessingStatus)
	require.True(t, s.Redo())
	assert.Equal(t, entity.StatusReview, s.img.ProcessingStatus)
}

func TestUndoEmptyHistoryIsNoop(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.NotNil(t, s.Boxes())
}

func TestHistoryEntriesAreIsolated(t *testing.T) {
	s := newTestStore(t)
	box, _ := s.AddBox(entity.Rect{Width: 50, Height: 50})
	s.AddLandmark(box.ID, 10, 10)

	x := 30.0
	require.True(t, s.UpdateLandmark(box.ID, s.Boxes()[0].Landmarks[0].ID, LandmarkPatch{X: &x}))
	require.True(t, s.Undo())
	assert.Equal(t, 10.0, s.Boxes()[0].Landmarks[0].X)
}
