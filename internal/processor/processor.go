// Package processor applies a projected edit to real pixels. It is the
// downstream consumer of editor.EditResult and honors its contract: flip,
// then rotate, then crop, in that exact order. The crop offsets address the
// pixel grid as it exists after the rotation step, which is where the
// projector's axis swap places them.
package processor

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/cropkit/internal/editor"
)

// Apply transforms img according to res and returns the cropped result.
func Apply(img image.Image, res editor.EditResult) (image.Image, error) {
	out := img

	if res.FlippedX {
		out = imaging.FlipH(out)
	}
	if res.FlippedY {
		out = imaging.FlipV(out)
	}

	// imaging rotates counterclockwise; the editor reports clockwise
	// quarter turns.
	switch res.Rotation {
	case 0:
	case 90:
		out = imaging.Rotate270(out)
	case 180:
		out = imaging.Rotate180(out)
	case 270:
		out = imaging.Rotate90(out)
	default:
		return nil, fmt.Errorf("unsupported rotation: %d", res.Rotation)
	}

	rect := cropRect(res)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, fmt.Errorf("empty crop: %.2fx%.2f", res.CropWidth, res.CropHeight)
	}
	bounds := out.Bounds()
	if !rect.In(bounds) {
		rect = rect.Intersect(bounds)
		if rect.Empty() {
			return nil, fmt.Errorf("crop %v outside image bounds %v", rect, bounds)
		}
	}
	return imaging.Crop(out, rect), nil
}

// ApplyFile opens inPath, applies res and writes the result to outPath. The
// output format follows outPath's extension.
func ApplyFile(inPath, outPath string, res editor.EditResult) error {
	img, err := imaging.Open(inPath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	out, err := Apply(img, res)
	if err != nil {
		return err
	}
	if err := imaging.Save(out, outPath); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}

// cropRect rounds the fractional pixel offsets to the nearest integer grid.
func cropRect(res editor.EditResult) image.Rectangle {
	x := int(math.Round(res.CropLeftOffset))
	y := int(math.Round(res.CropTopOffset))
	w := int(math.Round(res.CropWidth))
	h := int(math.Round(res.CropHeight))
	return image.Rect(x, y, x+w, y+h)
}
