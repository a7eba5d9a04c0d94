package editor

import (
	"sync"

	"github.com/MeKo-Tech/cropkit/internal/geometry"
)

// SourceImage describes the native pixel grid of the image being edited.
// It is immutable once resolved by the loader.
type SourceImage struct {
	PixelWidth  int
	PixelHeight int
	AspectRatio float64
}

// Valid reports whether the descriptor carries usable dimensions.
func (s SourceImage) Valid() bool {
	return s.PixelWidth > 0 && s.PixelHeight > 0 && s.AspectRatio > 0
}

// TransformState is the authoritative description of the image's current
// on-screen rendering: its bounding box, flips, quarter-turn rotation and
// zoom level.
type TransformState struct {
	Rect     geometry.Rect
	FlippedX bool
	FlippedY bool
	Rotation int // degrees, one of 0, 90, 180, 270
	Zoom     float64
}

// Options holds the tunable geometry constants of an editor instance.
type Options struct {
	MinZoom float64
	MaxZoom float64
	// HitSlop is the distance from a crop edge within which a touch
	// activates edge-resize for that edge.
	HitSlop float64
}

// DefaultOptions returns the stock editor constants.
func DefaultOptions() Options {
	return Options{
		MinZoom: 1.0,
		MaxZoom: 4.0,
		HitSlop: 20.0,
	}
}

// MinCropSize is the smallest crop width/height. Twice the hit slop, so the
// slop regions of opposite edges can never overlap or cross.
func (o Options) MinCropSize() float64 { return 2 * o.HitSlop }

// Editor owns the live geometry state of one editing session: the image
// transform and the crop rectangle, both expressed in canvas-absolute
// coordinates with the contain-fit layout as the clamp boundary.
//
// All mutation is copy-modify-replace under a single mutex; readers always
// observe a fully committed snapshot, never a partially updated record.
type Editor struct {
	mu sync.Mutex

	opts   Options
	layout geometry.Rect
	source SourceImage
	ready  bool

	transform TransformState
	crop      geometry.Rect

	highlighted EdgeSet
}

// New creates an editor with the given constants. The editor produces no
// geometry until SetContent provides a viewport and image dimensions.
func New(opts Options) *Editor {
	return &Editor{opts: opts}
}

// Options returns the constants the editor was created with.
func (e *Editor) Options() Options { return e.opts }

// SetContent installs a (viewport, image) pairing. The contain-fit layout is
// recomputed from scratch and both geometry states are reinitialized from it;
// prior state is discarded, never patched.
func (e *Editor) SetContent(vp geometry.Viewport, src SourceImage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = geometry.ComputeContainLayout(vp, src.AspectRatio)
	e.source = src
	e.ready = src.Valid() && vp.Width > 0 && vp.Height > 0
	e.resetLocked()
}

// Ready reports whether a valid (viewport, image) pairing has been installed.
func (e *Editor) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Layout returns the contain-fit rectangle the current states were seeded from.
func (e *Editor) Layout() geometry.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout
}

// Source returns the installed image descriptor.
func (e *Editor) Source() SourceImage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Snapshot returns committed copies of both geometry states.
func (e *Editor) Snapshot() (TransformState, geometry.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transform, e.crop
}

// Reset restores the transform and the crop rectangle to their
// layout-derived initial values, discarding all gesture history.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Editor) resetLocked() {
	e.transform = TransformState{
		Rect:     e.layout,
		FlippedX: false,
		FlippedY: false,
		Rotation: 0,
		Zoom:     1.0,
	}
	e.crop = e.layout
	e.highlighted = 0
}

// FlipX requests a visually horizontal flip. Which flag it toggles depends
// on rotation parity: at 90 or 270 degrees the on-screen horizontal axis is
// the image's own vertical axis, so the request is cross-wired to keep the
// flip WYSIWYG.
func (e *Editor) FlipX() {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.transform
	if t.Rotation%180 == 0 {
		t.FlippedX = !t.FlippedX
	} else {
		t.FlippedY = !t.FlippedY
	}
	e.transform = t
}

// FlipY requests a visually vertical flip, cross-wired under 90/270 degree
// rotation for the same reason as FlipX.
func (e *Editor) FlipY() {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.transform
	if t.Rotation%180 == 0 {
		t.FlippedY = !t.FlippedY
	} else {
		t.FlippedX = !t.FlippedX
	}
	e.transform = t
}

// RotateRight advances the rotation by a quarter turn clockwise. Flips,
// zoom, position and the crop rectangle are untouched: rotation is a visual
// overlay on a static bounding box, so the box is not re-fit for non-square
// images.
func (e *Editor) RotateRight() {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.transform
	t.Rotation = (t.Rotation + 90) % 360
	e.transform = t
}

// SetZoom replaces the zoom level, clamped to the configured range. Zoom is
// center-anchored by the rendering transform; the bounding box is not moved.
func (e *Editor) SetZoom(zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.transform
	t.Zoom = geometry.Clamp(zoom, e.opts.MinZoom, e.opts.MaxZoom)
	e.transform = t
}

// SetCrop replaces the crop rectangle with a pre-clamped candidate computed
// by the gesture interpreter. The whole record is swapped at once.
func (e *Editor) SetCrop(r geometry.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.crop = r
}

// SetHighlightedEdges marks which crop edges an active resize gesture is
// holding, for overlay rendering only. It has no geometric effect.
func (e *Editor) SetHighlightedEdges(edges EdgeSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highlighted = edges
}

// HighlightedEdges returns the edges currently held by a resize gesture.
func (e *Editor) HighlightedEdges() EdgeSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlighted
}
