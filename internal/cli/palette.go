package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridworks/mapgen/internal/extract"
	"github.com/gridworks/mapgen/internal/imaging"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Suggest a classification palette from an image",
	Long: `Analyze the source image's color distribution and print a palette
config snippet, darkest color first. Labels are placeholders to be
edited by hand.

Examples:
  # Suggest four colors using dominant-color analysis
  mapgen palette --image world.png --colors 4

  # Use k-means clustering instead
  mapgen palette --image world.png --colors 6 --method kmeans`,
	RunE: runPalette,
}

func init() {
	rootCmd.AddCommand(paletteCmd)

	paletteCmd.Flags().StringP("image", "i", "", "source image (required)")
	paletteCmd.Flags().IntP("colors", "k", 4, "number of palette colors")
	paletteCmd.Flags().String("method", "dominant", "analysis method (dominant|kmeans)")

	viper.BindPFlag("palette-image", paletteCmd.Flags().Lookup("image"))
	viper.BindPFlag("palette-colors", paletteCmd.Flags().Lookup("colors"))
	viper.BindPFlag("palette-method", paletteCmd.Flags().Lookup("method"))
}

func runPalette(cmd *cobra.Command, args []string) error {
	path := viper.GetString("palette-image")
	if path == "" {
		return fmt.Errorf("a source image is required (use --image)")
	}

	cache := imaging.NewImageCache()
	defer cache.Clear()

	img, err := cache.Load(path)
	if err != nil {
		return fmt.Errorf("loading %q: %w", path, err)
	}

	method := extract.Method(viper.GetString("palette-method"))
	colors, err := extract.Suggest(img, viper.GetInt("palette-colors"), method)
	if err != nil {
		return err
	}

	// Print a ready-to-edit config snippet.
	fmt.Fprintln(cmd.OutOrStdout(), "palette:")
	for i, c := range colors {
		fmt.Fprintf(cmd.OutOrStdout(), "  - color: %q\n    label: terrain%d\n", c.Hex(), i+1)
	}
	return nil
}
