package viewport

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToImage(t *testing.T) {
	tests := []struct {
		name         string
		vp           Viewport
		sx, sy       float64
		wantX, wantY float64
	}{
		{"identity", New(800, 600), 50, 60, 50, 60},
		{"scaled", Viewport{Scale: 2, ImageWidth: 800, ImageHeight: 600}, 100, 40, 50, 20},
		{"scaled and panned", Viewport{Scale: 0.5, OffsetX: 10, OffsetY: 20, ImageWidth: 800, ImageHeight: 600}, 60, 70, 100, 100},
		{"zero scale treated as one", Viewport{ImageWidth: 10, ImageHeight: 10}, 3, 4, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.vp.ToImage(tt.sx, tt.sy)
			assert.InDelta(t, tt.wantX, x, 1e-9)
			assert.InDelta(t, tt.wantY, y, 1e-9)

			bx, by := tt.vp.ToScreen(x, y)
			assert.InDelta(t, tt.sx, bx, 1e-9)
			assert.InDelta(t, tt.sy, by, 1e-9)
		})
	}
}

func TestZoomKeepsCursorPointFixed(t *testing.T) {
	vp := Viewport{Scale: 1.3, OffsetX: -40, OffsetY: 25, ImageWidth: 1000, ImageHeight: 700}
	cursorX, cursorY := 321.0, 144.0

	beforeX, beforeY := vp.ToImage(cursorX, cursorY)
	zoomed := vp.ZoomAt(cursorX, cursorY, 1.5)
	afterX, afterY := zoomed.ToImage(cursorX, cursorY)

	assert.InDelta(t, 1.95, zoomed.Scale, 1e-9)
	assert.InDelta(t, beforeX, afterX, 1e-9)
	assert.InDelta(t, beforeY, afterY, 1e-9)
}

func TestZoomClampsAndIgnoresBadFactors(t *testing.T) {
	vp := New(100, 100)

	assert.Equal(t, MaxScale, vp.ZoomAt(0, 0, 1000).Scale)
	assert.Equal(t, MinScale, vp.ZoomAt(0, 0, 0.00001).Scale)
	assert.Equal(t, vp, vp.ZoomAt(5, 5, 0))
	assert.Equal(t, vp, vp.ZoomAt(5, 5, -2))
}

func TestFit(t *testing.T) {
	vp := New(800, 600).Pan(30, 30).Fit(400, 600)

	assert.InDelta(t, 0.5, vp.Scale, 1e-9)
	assert.Zero(t, vp.OffsetX)
	assert.Zero(t, vp.OffsetY)

	unchanged := New(800, 600).Fit(0, 600)
	assert.Equal(t, 1.0, unchanged.Scale)
}

func TestInBounds(t *testing.T) {
	vp := New(800, 600)

	assert.True(t, vp.InBounds(0, 0))
	assert.True(t, vp.InBounds(800, 600))
	assert.False(t, vp.InBounds(-0.1, 10))
	assert.False(t, vp.InBounds(10, 600.5))
}

func TestDebouncerRunsLastOnly(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls, last int32

	for i := int32(1); i <= 5; i++ {
		v := i
		d.Schedule(func() {
			atomic.AddInt32(&calls, 1)
			atomic.StoreInt32(&last, v)
		})
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(5), atomic.LoadInt32(&last))
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls int32
	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
