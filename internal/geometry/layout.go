package geometry

// ComputeContainLayout returns the contain-fit rectangle of an image with
// the given aspect ratio inside the viewport: the image is scaled to the
// largest size that fits entirely, preserving aspect ratio, and centered
// along the axis that is not flush with the viewport.
//
// The result is only valid for the (viewport, image) pairing it was computed
// from; callers must recompute, never patch, when either changes.
func ComputeContainLayout(vp Viewport, imageAspectRatio float64) Rect {
	if imageAspectRatio > vp.AspectRatio() {
		// Image is wider than the viewport: fit width, letterbox vertically.
		width := vp.Width
		height := width / imageAspectRatio
		return Rect{
			Left:   0,
			Top:    (vp.Height - height) / 2,
			Width:  width,
			Height: height,
		}
	}
	// Image is taller (or equal): fit height, pillarbox horizontally.
	height := vp.Height
	width := height * imageAspectRatio
	return Rect{
		Left:   (vp.Width - width) / 2,
		Top:    0,
		Width:  width,
		Height: height,
	}
}
