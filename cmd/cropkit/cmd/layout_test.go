package cmd

import (
	"encoding/json"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/cropkit/internal/testutil"
)

func TestLayoutCommand(t *testing.T) {
	assert.NotNil(t, layoutCmd)
	assert.Equal(t, "layout", layoutCmd.Use)
	assert.NotEmpty(t, layoutCmd.Short)
	assert.NotEmpty(t, layoutCmd.Long)
}

func TestLayoutCommandTextOutput(t *testing.T) {
	imagePath := testutil.WriteTempPNG(t, t.TempDir(), testutil.WideSize, color.White)

	output, err := executeCommand(t, "layout",
		"--image", imagePath, "--viewport", "300x300", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, output, "200x100 px (aspect 2.0000)")
	assert.Contains(t, output, "left=0.00 top=75.00 width=300.00 height=150.00")
}

func TestLayoutCommandJSONOutput(t *testing.T) {
	imagePath := testutil.WriteTempPNG(t, t.TempDir(), testutil.TallSize, color.White)

	output, err := executeCommand(t, "layout",
		"--image", imagePath, "--viewport", "300x300", "--format", "json")
	require.NoError(t, err)

	var rect struct {
		Left   float64 `json:"left"`
		Top    float64 `json:"top"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &rect))

	// The 100x200 image fits height; width centers.
	assert.InDelta(t, 75.0, rect.Left, 1e-9)
	assert.InDelta(t, 0.0, rect.Top, 1e-9)
	assert.InDelta(t, 150.0, rect.Width, 1e-9)
	assert.InDelta(t, 300.0, rect.Height, 1e-9)
}

func TestLayoutCommandMissingFlags(t *testing.T) {
	imagePath := testutil.WriteTempPNG(t, t.TempDir(), testutil.WideSize, color.White)

	_, err := executeCommand(t, "layout", "--image", "", "--viewport", "300x300")
	assert.ErrorContains(t, err, "no input image provided")

	_, err = executeCommand(t, "layout", "--image", imagePath, "--viewport", "")
	assert.ErrorContains(t, err, "no viewport provided")
}

func TestLayoutCommandInvalidViewport(t *testing.T) {
	imagePath := testutil.WriteTempPNG(t, t.TempDir(), testutil.WideSize, color.White)

	_, err := executeCommand(t, "layout", "--image", imagePath, "--viewport", "banana")
	assert.ErrorContains(t, err, "invalid viewport")
}

func TestLayoutCommandMissingImage(t *testing.T) {
	_, err := executeCommand(t, "layout",
		"--image", filepath.Join(t.TempDir(), "absent.png"), "--viewport", "300x300")
	assert.Error(t, err)
}
