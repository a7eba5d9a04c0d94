package script

import (
	"fmt"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/gesture"
	"github.com/MeKo-Tech/cropkit/internal/geometry"
)

// Run replays the script's steps against ed and returns the results of its
// save steps, in order. Gestures are synthesized as begin/move/end event
// sequences through a real interpreter, so replay takes the same code path
// as live input, hit tests included. A rejected save is reported as an
// error carrying the step index.
func Run(sc *Script, ed *editor.Editor) ([]editor.EditResult, error) {
	in := gesture.New(ed)
	var results []editor.EditResult

	for i, st := range sc.Steps {
		switch st.Op {
		case OpFlipX:
			ed.FlipX()
		case OpFlipY:
			ed.FlipY()
		case OpRotateRight:
			ed.RotateRight()
		case OpReset:
			ed.Reset()
		case OpSave:
			res, ok := ed.Save()
			if !ok {
				return results, fmt.Errorf("step %d: save rejected, crop outside image bounds", i)
			}
			results = append(results, res)
		case OpPan:
			x, y := touchPoint(st, panPoint(ed))
			runDrag(in, x, y, st.DX, st.DY)
		case OpResize:
			var edges editor.EdgeSet
			for _, name := range st.Edges {
				edges |= editor.ParseEdge(name)
			}
			x, y := touchPoint(st, edgePoint(ed, edges))
			runDrag(in, x, y, st.DX, st.DY)
		case OpPinch:
			x, y := touchPoint(st, panPoint(ed))
			in.Handle(gesture.Event{Phase: gesture.PhaseBegin, X: x, Y: y, Touches: 2})
			in.Handle(gesture.Event{Phase: gesture.PhaseMove, Touches: 2, PinchScale: st.Scale})
			in.Handle(gesture.Event{Phase: gesture.PhaseEnd})
		}
	}
	return results, nil
}

// runDrag synthesizes a single-touch drag gesture with a cumulative delta.
func runDrag(in *gesture.Interpreter, x, y, dx, dy float64) {
	in.Handle(gesture.Event{Phase: gesture.PhaseBegin, X: x, Y: y, Touches: 1})
	in.Handle(gesture.Event{Phase: gesture.PhaseMove, DX: dx, DY: dy, Touches: 1})
	in.Handle(gesture.Event{Phase: gesture.PhaseEnd})
}

func touchPoint(st Step, fallback geometry.Point) (float64, float64) {
	p := fallback
	if st.X != nil {
		p.X = *st.X
	}
	if st.Y != nil {
		p.Y = *st.Y
	}
	return p.X, p.Y
}

// panPoint is the crop center: inside the rectangle, clear of every edge's
// hit slop for any crop at or above minimum size.
func panPoint(ed *editor.Editor) geometry.Point {
	_, crop := ed.Snapshot()
	return geometry.Point{X: crop.Left + crop.Width/2, Y: crop.Top + crop.Height/2}
}

// edgePoint derives the touch-down point that activates exactly the wanted
// edges: edge midpoints for single edges, the shared corner for pairs.
func edgePoint(ed *editor.Editor, edges editor.EdgeSet) geometry.Point {
	_, crop := ed.Snapshot()
	p := geometry.Point{X: crop.Left + crop.Width/2, Y: crop.Top + crop.Height/2}
	if edges.Has(editor.EdgeLeft) {
		p.X = crop.Left
	}
	if edges.Has(editor.EdgeRight) {
		p.X = crop.Right()
	}
	if edges.Has(editor.EdgeTop) {
		p.Y = crop.Top
	}
	if edges.Has(editor.EdgeBottom) {
		p.Y = crop.Bottom()
	}
	return p
}
