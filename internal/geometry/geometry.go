package geometry

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in canvas-absolute coordinates,
// described by its top-left corner and its extent.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Contains reports whether inner lies fully inside r, within eps tolerance
// on every edge.
func (r Rect) Contains(inner Rect, eps float64) bool {
	return inner.Left >= r.Left-eps &&
		inner.Top >= r.Top-eps &&
		inner.Right() <= r.Right()+eps &&
		inner.Bottom() <= r.Bottom()+eps
}

// Clamp restricts v to the interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Viewport is the externally measured area the image is laid out in.
// It is immutable for the duration of a layout pass; a size change
// invalidates all geometry derived from it.
type Viewport struct {
	Width  float64
	Height float64
}

// AspectRatio returns width over height, or 0 for a degenerate viewport.
func (v Viewport) AspectRatio() float64 {
	if v.Height <= 0 {
		return 0
	}
	return v.Width / v.Height
}
