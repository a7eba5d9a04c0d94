package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ImageSize represents common test image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test image sizes.
	WideSize   = ImageSize{200, 100}
	SquareSize = ImageSize{128, 128}
	TallSize   = ImageSize{100, 200}
)

// GenerateImage creates a uniformly filled RGBA image of the given size.
func GenerateImage(size ImageSize, fill color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{fill}, image.Point{}, draw.Src)
	return img
}

// GenerateQuadrantImage creates an RGBA image whose four quadrants carry
// distinct colors (red, green, blue, white clockwise from top-left), so
// flip/rotate/crop tests can assert which region survived.
func GenerateQuadrantImage(size ImageSize) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	colors := [4]color.Color{
		color.RGBA{R: 255, A: 255},                 // top-left
		color.RGBA{G: 255, A: 255},                 // top-right
		color.RGBA{B: 255, A: 255},                 // bottom-left
		color.RGBA{R: 255, G: 255, B: 255, A: 255}, // bottom-right
	}
	midX, midY := size.Width/2, size.Height/2
	rects := [4]image.Rectangle{
		image.Rect(0, 0, midX, midY),
		image.Rect(midX, 0, size.Width, midY),
		image.Rect(0, midY, midX, size.Height),
		image.Rect(midX, midY, size.Width, size.Height),
	}
	for i, r := range rects {
		draw.Draw(img, r, &image.Uniform{colors[i]}, image.Point{}, draw.Src)
	}
	return img
}

// WriteTempPNG writes a uniformly filled PNG into dir and returns its path.
func WriteTempPNG(t *testing.T, dir string, size ImageSize, fill color.Color) string {
	t.Helper()
	return WritePNG(t, filepath.Join(dir, "test.png"), GenerateImage(size, fill))
}

// WritePNG encodes img to path.
func WritePNG(t *testing.T, path string, img image.Image) string {
	t.Helper()
	f, err := os.Create(path) //nolint:gosec // G304: test fixture path
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()
	require.NoError(t, png.Encode(f, img))
	return path
}
