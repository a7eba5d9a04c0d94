package editor

// ImageLayerStyle is the continuously recomputed descriptor the rendering
// layer needs to place the image: position, size, flips, rotation and zoom.
// The engine does no drawing itself.
type ImageLayerStyle struct {
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FlippedX bool    `json:"flipped_x"`
	FlippedY bool    `json:"flipped_y"`
	Rotation int     `json:"rotation"`
	Zoom     float64 `json:"zoom"`
}

// CropOverlayStyle describes the crop selection box and which edges, if any,
// an active resize gesture is holding.
type CropOverlayStyle struct {
	Left        float64  `json:"left"`
	Top         float64  `json:"top"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	ActiveEdges []string `json:"active_edges,omitempty"`
}

// ImageLayerStyle returns the current rendering descriptor for the image layer.
func (e *Editor) ImageLayerStyle() ImageLayerStyle {
	e.mu.Lock()
	t := e.transform
	e.mu.Unlock()
	return ImageLayerStyle{
		Left:     t.Rect.Left,
		Top:      t.Rect.Top,
		Width:    t.Rect.Width,
		Height:   t.Rect.Height,
		FlippedX: t.FlippedX,
		FlippedY: t.FlippedY,
		Rotation: t.Rotation,
		Zoom:     t.Zoom,
	}
}

// CropOverlayStyle returns the current rendering descriptor for the crop overlay.
func (e *Editor) CropOverlayStyle() CropOverlayStyle {
	e.mu.Lock()
	crop := e.crop
	edges := e.highlighted
	e.mu.Unlock()
	return CropOverlayStyle{
		Left:        crop.Left,
		Top:         crop.Top,
		Width:       crop.Width,
		Height:      crop.Height,
		ActiveEdges: edges.Names(),
	}
}
