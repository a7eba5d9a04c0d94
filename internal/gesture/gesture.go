// Package gesture turns a raw multi-touch pointer stream into atomic
// updates of the editor's geometry state. Recognition follows a fixed
// composition: pinch runs simultaneously with whichever of pan and
// edge-resize wins a mutual-exclusion race, with edge-resize getting first
// refusal when the initiating touch lands near a crop edge.
package gesture

// Phase identifies where in its lifecycle a gesture event sits.
type Phase int

const (
	// PhaseBegin is the initial touch-down that runs the recognizer race.
	PhaseBegin Phase = iota
	// PhaseMove is a continuation tick carrying cumulative deltas.
	PhaseMove
	// PhaseEnd terminates the gesture and clears any edge highlight.
	PhaseEnd
)

// Event is one tick of the pointer stream, in canvas-absolute coordinates.
// DX, DY and PinchScale are cumulative relative to the PhaseBegin event of
// the same gesture, so every tick is computed from the captured baselines
// rather than accumulated incrementally.
type Event struct {
	Phase Phase

	// X, Y is the initiating touch position; meaningful on PhaseBegin,
	// where it drives the edge/pan hit test.
	X float64
	Y float64

	// DX, DY is the translation of the tracked touch since PhaseBegin.
	DX float64
	DY float64

	// Touches is the number of fingers currently down.
	Touches int

	// PinchScale is the cumulative two-finger scale factor since
	// PhaseBegin; zero when no pinch is in progress.
	PinchScale float64
}
