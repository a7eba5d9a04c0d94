// Package script defines a recorded edit session: a viewport plus an
// ordered list of operations and gestures, replayable against an editor.
// Scripts are YAML documents so sessions can be captured once and replayed
// deterministically from the CLI or from integration tests.
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/geometry"
)

// Step operation names.
const (
	OpFlipX       = "flip_x"
	OpFlipY       = "flip_y"
	OpRotateRight = "rotate_right"
	OpReset       = "reset"
	OpPan         = "pan"
	OpResize      = "resize"
	OpPinch       = "pinch"
	OpSave        = "save"
)

// Step is one operation of an edit script.
type Step struct {
	Op string `yaml:"op"`

	// Gesture deltas for pan and resize, cumulative over the gesture.
	DX float64 `yaml:"dx,omitempty"`
	DY float64 `yaml:"dy,omitempty"`

	// Edges dragged by a resize step: "left", "right", "top", "bottom";
	// one vertical plus one horizontal names a corner drag.
	Edges []string `yaml:"edges,omitempty"`

	// Scale is the cumulative pinch factor for a pinch step.
	Scale float64 `yaml:"scale,omitempty"`

	// X, Y optionally pin the touch-down point of a pan or resize. When
	// absent the runner derives it from the current crop rectangle.
	X *float64 `yaml:"x,omitempty"`
	Y *float64 `yaml:"y,omitempty"`
}

// Script is a replayable edit session.
type Script struct {
	Viewport geometry.Viewport `yaml:"viewport"`
	Steps    []Step            `yaml:"steps"`
}

// Parse decodes a YAML edit script and validates its steps.
func Parse(data []byte) (*Script, error) {
	var sc Script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: reading a user-provided script path is expected
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Validate checks step operations and their arguments.
func (sc *Script) Validate() error {
	for i, st := range sc.Steps {
		switch st.Op {
		case OpFlipX, OpFlipY, OpRotateRight, OpReset, OpSave, OpPan:
		case OpResize:
			if len(st.Edges) == 0 {
				return fmt.Errorf("step %d: resize needs at least one edge", i)
			}
			for _, name := range st.Edges {
				if editor.ParseEdge(name) == 0 {
					return fmt.Errorf("step %d: unknown edge %q", i, name)
				}
			}
		case OpPinch:
			if st.Scale <= 0 {
				return fmt.Errorf("step %d: pinch needs a positive scale", i)
			}
		default:
			return fmt.Errorf("step %d: unknown op %q", i, st.Op)
		}
	}
	return nil
}
