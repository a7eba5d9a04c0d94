package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/geometry"
	"github.com/MeKo-Tech/cropkit/internal/loader"
	"github.com/MeKo-Tech/cropkit/internal/processor"
	"github.com/MeKo-Tech/cropkit/internal/script"
)

const (
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
	outputFormatText = "text"
)

// editCmd represents the edit command.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replay an edit script against an image and emit crop parameters",
	Long: `Replay a recorded edit session (flips, rotations, pan, pinch and
edge-resize gestures) against an image and print the projected crop
parameters in source pixel space.

Supported image formats: JPEG, PNG, BMP

Examples:
  cropkit edit --image photo.jpg --script edits.yaml
  cropkit edit --image photo.jpg --script edits.yaml --format json
  cropkit edit --image photo.jpg --script edits.yaml --output cropped.png`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath, _ := cmd.Flags().GetString("image")
		scriptPath, _ := cmd.Flags().GetString("script")
		viewportFlag, _ := cmd.Flags().GetString("viewport")
		outputImage, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		if imagePath == "" {
			return errors.New("no input image provided")
		}
		if scriptPath == "" {
			return errors.New("no edit script provided")
		}
		if format != outputFormatText && format != outputFormatJSON && format != outputFormatYAML {
			return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml)", format)
		}

		sc, err := script.Load(scriptPath)
		if err != nil {
			return err
		}

		vp := sc.Viewport
		if viewportFlag != "" {
			vp, err = parseViewport(viewportFlag)
			if err != nil {
				return err
			}
		}
		if vp.Width <= 0 || vp.Height <= 0 {
			return errors.New("no viewport given; set one in the script or with --viewport WxH")
		}

		cfg := GetConfig()
		src, err := loader.New(cfg.ToLoaderConfig()).Load(context.Background(), imagePath)
		if err != nil {
			return err
		}

		ed := editor.New(cfg.ToEditorOptions())
		ed.SetContent(vp, src)

		results, err := script.Run(sc, ed)
		if err != nil {
			return err
		}
		// A script without explicit save steps saves once at the end.
		if len(results) == 0 {
			res, ok := ed.Save()
			if !ok {
				return errors.New("save rejected: crop rectangle outside image bounds")
			}
			results = append(results, res)
		}

		if err := writeResults(cmd, results, format); err != nil {
			return err
		}

		if outputImage != "" {
			last := results[len(results)-1]
			if err := processor.ApplyFile(imagePath, outputImage, last); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cropped image written to %s\n", outputImage)
		}
		return nil
	},
}

// parseViewport parses a "WxH" dimension string.
func parseViewport(s string) (geometry.Viewport, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return geometry.Viewport{}, fmt.Errorf("invalid viewport %q (expected WxH, e.g. 300x300)", s)
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return geometry.Viewport{}, fmt.Errorf("invalid viewport width %q", parts[0])
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return geometry.Viewport{}, fmt.Errorf("invalid viewport height %q", parts[1])
	}
	if w <= 0 || h <= 0 {
		return geometry.Viewport{}, fmt.Errorf("viewport dimensions must be positive, got %gx%g", w, h)
	}
	return geometry.Viewport{Width: w, Height: h}, nil
}

func writeResults(cmd *cobra.Command, results []editor.EditResult, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case outputFormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case outputFormatYAML:
		return yaml.NewEncoder(out).Encode(results)
	default:
		for i, r := range results {
			fmt.Fprintf(out, "Save %d:\n", i+1)
			fmt.Fprintf(out, "  Crop:     %.2f, %.2f  %.2f x %.2f (source pixels)\n",
				r.CropLeftOffset, r.CropTopOffset, r.CropWidth, r.CropHeight)
			fmt.Fprintf(out, "  Flips:    x=%v y=%v\n", r.FlippedX, r.FlippedY)
			fmt.Fprintf(out, "  Rotation: %d\n", r.Rotation)
			fmt.Fprintf(out, "  Zoom:     %.2f\n", r.Zoom)
		}
		return nil
	}
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringP("image", "i", "", "input image path")
	editCmd.Flags().StringP("script", "s", "", "edit script (YAML)")
	editCmd.Flags().String("viewport", "", "viewport dimensions WxH, overrides the script")
	editCmd.Flags().StringP("output", "o", "", "apply the final crop and write the image here")
	editCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json, yaml)")
}
