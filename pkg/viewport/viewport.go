package viewport

import "math"

const (
	MinScale = 0.05
	MaxScale = 20.0
)

// Viewport maps screen coordinates onto the natural pixels of an image.
// screen = image*Scale + Offset.
type Viewport struct {
	Scale       float64 `json:"scale"`
	OffsetX     float64 `json:"offsetX"`
	OffsetY     float64 `json:"offsetY"`
	ImageWidth  float64 `json:"imageWidth"`
	ImageHeight float64 `json:"imageHeight"`
}

func New(imageWidth, imageHeight float64) Viewport {
	return Viewport{Scale: 1, ImageWidth: imageWidth, ImageHeight: imageHeight}
}

func (v Viewport) ToImage(screenX, screenY float64) (float64, float64) {
	s := v.scale()
	return (screenX - v.OffsetX) / s, (screenY - v.OffsetY) / s
}

func (v Viewport) ToScreen(x, y float64) (float64, float64) {
	s := v.scale()
	return x*s + v.OffsetX, y*s + v.OffsetY
}

// ScreenToImageDistance converts a length in screen pixels to image pixels.
func (v Viewport) ScreenToImageDistance(d float64) float64 {
	return d / v.scale()
}

// ZoomAt multiplies the scale by factor while keeping the image point under
// the cursor at the same screen position.
func (v Viewport) ZoomAt(cursorX, cursorY, factor float64) Viewport {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return v
	}
	contentX, contentY := v.ToImage(cursorX, cursorY)
	v.Scale = clamp(v.scale()*factor, MinScale, MaxScale)
	v.OffsetX = cursorX - contentX*v.Scale
	v.OffsetY = cursorY - contentY*v.Scale
	return v
}

func (v Viewport) Pan(dx, dy float64) Viewport {
	v.OffsetX += dx
	v.OffsetY += dy
	return v
}

// Fit scales the image to the largest size that fits the container and
// resets the pan offset.
func (v Viewport) Fit(containerWidth, containerHeight float64) Viewport {
	if containerWidth <= 0 || containerHeight <= 0 || v.ImageWidth <= 0 || v.ImageHeight <= 0 {
		return v
	}
	v.Scale = clamp(math.Min(containerWidth/v.ImageWidth, containerHeight/v.ImageHeight), MinScale, MaxScale)
	v.OffsetX = 0
	v.OffsetY = 0
	return v
}

// InBounds reports whether an image-space point lies on the image.
func (v Viewport) InBounds(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= v.ImageWidth && y <= v.ImageHeight
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

func clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}
