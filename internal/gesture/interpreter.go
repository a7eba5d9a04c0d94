package gesture

import (
	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/geometry"
)

// Kind identifies which recognizer won the exclusive crop-mutation race for
// the current gesture.
type Kind int

const (
	// KindNone means the initiating touch matched no hit-test region;
	// the gesture is ignored.
	KindNone Kind = iota
	// KindPan moves the crop rectangle.
	KindPan
	// KindResize drags one or two crop edges.
	KindResize
)

// String returns the stable name used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindPan:
		return "pan"
	case KindResize:
		return "resize"
	}
	return "none"
}

// Interpreter consumes the touch stream for one editor instance. It is the
// single writer of the crop rectangle: exactly one of pan and edge-resize
// owns a gesture, while pinch composes freely because it only touches the
// zoom level. All per-tick math is total; translations are clamped before
// they are applied, so no intermediate invalid rectangle is ever committed
// and re-crossing a bound never jitters.
//
// Not safe for concurrent use by multiple goroutines; feed it from a single
// input path, the way the host's gesture recognizer delivers events.
type Interpreter struct {
	ed Editor

	active   Kind
	edges    editor.EdgeSet
	pinching bool

	// Baselines captured at PhaseBegin.
	baseCrop geometry.Rect
	baseZoom float64
}

// Editor is the state surface the interpreter drives. *editor.Editor
// satisfies it; tests substitute recorders.
type Editor interface {
	Ready() bool
	Options() editor.Options
	Layout() geometry.Rect
	Snapshot() (editor.TransformState, geometry.Rect)
	SetZoom(zoom float64)
	SetCrop(r geometry.Rect)
	SetHighlightedEdges(edges editor.EdgeSet)
}

// New creates an interpreter bound to ed.
func New(ed Editor) *Interpreter {
	return &Interpreter{ed: ed}
}

// Active returns which recognizer owns the current gesture, if any.
func (in *Interpreter) Active() Kind { return in.active }

// Handle processes one event tick.
func (in *Interpreter) Handle(ev Event) {
	switch ev.Phase {
	case PhaseBegin:
		in.begin(ev)
	case PhaseMove:
		in.move(ev)
	case PhaseEnd:
		in.end()
	}
}

func (in *Interpreter) begin(ev Event) {
	if !in.ed.Ready() {
		in.active = KindNone
		return
	}
	t, crop := in.ed.Snapshot()
	in.baseCrop = crop
	in.baseZoom = t.Zoom
	in.pinching = ev.Touches >= 2

	// Edge-resize gets first refusal; pan only runs when no edge is hit.
	in.edges = hitTestEdges(ev.X, ev.Y, crop, in.ed.Options().HitSlop)
	switch {
	case !in.edges.Empty():
		in.active = KindResize
		in.ed.SetHighlightedEdges(in.edges)
	case pointInRect(ev.X, ev.Y, crop):
		in.active = KindPan
	default:
		in.active = KindNone
	}
}

func (in *Interpreter) move(ev Event) {
	if !in.ed.Ready() {
		return
	}
	if ev.Touches >= 2 {
		in.pinching = true
	}
	if in.pinching && ev.PinchScale > 0 {
		opts := in.ed.Options()
		in.ed.SetZoom(geometry.Clamp(in.baseZoom*ev.PinchScale, opts.MinZoom, opts.MaxZoom))
	}

	switch in.active {
	case KindPan:
		in.pan(ev)
	case KindResize:
		in.resize(ev)
	}
}

func (in *Interpreter) end() {
	if in.active == KindResize {
		in.ed.SetHighlightedEdges(0)
	}
	in.active = KindNone
	in.edges = 0
	in.pinching = false
}

// pan moves the crop window, clamped so it stays inside the layout at every
// intermediate tick.
func (in *Interpreter) pan(ev Event) {
	layout := in.ed.Layout()
	crop := in.baseCrop
	crop.Left = geometry.Clamp(in.baseCrop.Left+ev.DX,
		layout.Left, layout.Right()-in.baseCrop.Width)
	crop.Top = geometry.Clamp(in.baseCrop.Top+ev.DY,
		layout.Top, layout.Bottom()-in.baseCrop.Height)
	in.ed.SetCrop(crop)
}

// resize applies each active edge independently against the baseline
// rectangle. Diagonal drags run the horizontal and vertical formulas in the
// same tick with no coupling between axes.
func (in *Interpreter) resize(ev Event) {
	layout := in.ed.Layout()
	minSize := in.ed.Options().MinCropSize()
	base := in.baseCrop
	crop := base

	if in.edges.Has(editor.EdgeLeft) {
		tx := geometry.Clamp(ev.DX, -(base.Left - layout.Left), base.Width-minSize)
		crop.Left = base.Left + tx
		crop.Width = base.Width - tx
	}
	if in.edges.Has(editor.EdgeRight) {
		tx := geometry.Clamp(ev.DX, -base.Width+minSize, layout.Right()-base.Right())
		crop.Width = base.Width + tx
	}
	if in.edges.Has(editor.EdgeTop) {
		ty := geometry.Clamp(ev.DY, -(base.Top - layout.Top), base.Height-minSize)
		crop.Top = base.Top + ty
		crop.Height = base.Height - ty
	}
	if in.edges.Has(editor.EdgeBottom) {
		ty := geometry.Clamp(ev.DY, -base.Height+minSize, layout.Bottom()-base.Bottom())
		crop.Height = base.Height + ty
	}
	in.ed.SetCrop(crop)
}

// hitTestEdges checks each of the four crop edges independently: an edge
// activates when the touch is within slop of its line and alongside its
// extent. One vertical and one horizontal edge may activate together on a
// corner touch.
func hitTestEdges(x, y float64, crop geometry.Rect, slop float64) editor.EdgeSet {
	var edges editor.EdgeSet
	withinY := y >= crop.Top-slop && y <= crop.Bottom()+slop
	withinX := x >= crop.Left-slop && x <= crop.Right()+slop

	if withinY && abs(x-crop.Left) <= slop {
		edges |= editor.EdgeLeft
	}
	if withinY && abs(x-crop.Right()) <= slop {
		edges |= editor.EdgeRight
	}
	if withinX && abs(y-crop.Top) <= slop {
		edges |= editor.EdgeTop
	}
	if withinX && abs(y-crop.Bottom()) <= slop {
		edges |= editor.EdgeBottom
	}
	return edges
}

func pointInRect(x, y float64, r geometry.Rect) bool {
	return x >= r.Left && x <= r.Right() && y >= r.Top && y <= r.Bottom()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
