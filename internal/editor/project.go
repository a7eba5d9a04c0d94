package editor

// Containment tolerance for the save precondition, in canvas units.
const containEps = 1e-6

// EditResult carries the normalized crop parameters for the downstream
// image processor. Offsets and sizes are in source pixel units against the
// original unflipped, unrotated pixel grid; the flags and zoom are echoed
// from the transform. The processor must apply flip, then rotate, then crop,
// in that order; the result is defined only for that order.
type EditResult struct {
	CropLeftOffset float64 `json:"crop_left_offset" yaml:"crop_left_offset"`
	CropTopOffset  float64 `json:"crop_top_offset" yaml:"crop_top_offset"`
	CropWidth      float64 `json:"crop_width" yaml:"crop_width"`
	CropHeight     float64 `json:"crop_height" yaml:"crop_height"`
	FlippedX       bool    `json:"flipped_x" yaml:"flipped_x"`
	FlippedY       bool    `json:"flipped_y" yaml:"flipped_y"`
	Rotation       int     `json:"rotation" yaml:"rotation"`
	Zoom           float64 `json:"zoom" yaml:"zoom"`
}

// Save projects the crop rectangle into source pixel space, compensating for
// axis-swapping rotations. It returns ok=false, never an error, when no
// valid source is installed or the crop rectangle is not fully contained in
// the transform's bounding box; callers must check the flag.
//
// Zoom is reported but deliberately not folded into the ratio math: crop
// coordinates are treated as already expressed in zoomed view space.
func (e *Editor) Save() (EditResult, bool) {
	e.mu.Lock()
	t := e.transform
	crop := e.crop
	src := e.source
	ready := e.ready
	e.mu.Unlock()

	if !ready || !src.Valid() {
		return EditResult{}, false
	}
	if !t.Rect.Contains(crop, containEps) {
		return EditResult{}, false
	}

	// A 90/270 degree rotation swaps which file dimension corresponds to
	// the on-screen horizontal axis, and likewise which box extent is the
	// visual width.
	swapped := t.Rotation%180 != 0
	sourceW := float64(src.PixelWidth)
	sourceH := float64(src.PixelHeight)
	viewW := t.Rect.Width
	viewH := t.Rect.Height
	if swapped {
		sourceW, sourceH = sourceH, sourceW
		viewW, viewH = viewH, viewW
	}

	// Re-express the canvas-absolute crop rectangle in the rendered image
	// box's own frame before taking ratios.
	leftRatio := (crop.Left - t.Rect.Left) / viewW
	topRatio := (crop.Top - t.Rect.Top) / viewH
	widthRatio := crop.Width / viewW
	heightRatio := crop.Height / viewH

	return EditResult{
		CropLeftOffset: leftRatio * sourceW,
		CropTopOffset:  topRatio * sourceH,
		CropWidth:      widthRatio * sourceW,
		CropHeight:     heightRatio * sourceH,
		FlippedX:       t.FlippedX,
		FlippedY:       t.FlippedY,
		Rotation:       t.Rotation,
		Zoom:           t.Zoom,
	}, true
}
