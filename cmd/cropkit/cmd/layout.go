package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/cropkit/internal/geometry"
	"github.com/MeKo-Tech/cropkit/internal/loader"
)

// layoutCmd represents the layout command.
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the contain-fit layout of an image inside a viewport",
	Long: `Compute the contain-fit rectangle of an image inside a viewport: the
largest aspect-preserving placement, centered on the non-fitted axis. This is
the rectangle the editor seeds its transform and crop states from.

Examples:
  cropkit layout --image photo.jpg --viewport 300x300
  cropkit layout --image photo.jpg --viewport 375x667 --format json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath, _ := cmd.Flags().GetString("image")
		viewportFlag, _ := cmd.Flags().GetString("viewport")
		format, _ := cmd.Flags().GetString("format")

		if imagePath == "" {
			return errors.New("no input image provided")
		}
		if viewportFlag == "" {
			return errors.New("no viewport provided")
		}
		vp, err := parseViewport(viewportFlag)
		if err != nil {
			return err
		}

		cfg := GetConfig()
		src, err := loader.New(cfg.ToLoaderConfig()).Load(context.Background(), imagePath)
		if err != nil {
			return err
		}

		rect := geometry.ComputeContainLayout(vp, src.AspectRatio)

		out := cmd.OutOrStdout()
		if format == outputFormatJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Left   float64 `json:"left"`
				Top    float64 `json:"top"`
				Width  float64 `json:"width"`
				Height float64 `json:"height"`
			}{rect.Left, rect.Top, rect.Width, rect.Height})
		}

		fmt.Fprintf(out, "Image:    %dx%d px (aspect %.4f)\n", src.PixelWidth, src.PixelHeight, src.AspectRatio)
		fmt.Fprintf(out, "Viewport: %gx%g\n", vp.Width, vp.Height)
		fmt.Fprintf(out, "Layout:   left=%.2f top=%.2f width=%.2f height=%.2f\n",
			rect.Left, rect.Top, rect.Width, rect.Height)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.Flags().StringP("image", "i", "", "input image path")
	layoutCmd.Flags().String("viewport", "", "viewport dimensions WxH")
	layoutCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
}
