package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridworks/mapgen/internal/classify"
	"github.com/gridworks/mapgen/internal/container"
	"github.com/gridworks/mapgen/internal/grid"
	"github.com/gridworks/mapgen/internal/imaging"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Classify an image into a tile grid and render it",
	Long: `Reduce the source image to a width x height grid by area averaging,
classify each cell against the palette, and render the resulting tile
map as a PNG.

Examples:
  # Default 50x50 grid with the built-in terrain palette
  mapgen generate --image world.png --out map.png

  # Finer grid, larger rendered cells
  mapgen generate --image world.png --grid-width 100 --grid-height 100 --cell-size 8`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("image", "i", "", "source image (required)")
	generateCmd.Flags().StringP("out", "o", "map.png", "output PNG path")
	generateCmd.Flags().Int("grid-width", 50, "grid width in cells")
	generateCmd.Flags().Int("grid-height", 50, "grid height in cells")
	generateCmd.Flags().Int("cell-size", 10, "rendered cell size in pixels")
	generateCmd.Flags().Bool("debug", false, "write the reduced image and die loudly on load failure")

	viper.BindPFlag("image", generateCmd.Flags().Lookup("image"))
	viper.BindPFlag("out", generateCmd.Flags().Lookup("out"))
	viper.BindPFlag("grid-width", generateCmd.Flags().Lookup("grid-width"))
	viper.BindPFlag("grid-height", generateCmd.Flags().Lookup("grid-height"))
	viper.BindPFlag("cell-size", generateCmd.Flags().Lookup("cell-size"))
	viper.BindPFlag("debug", generateCmd.Flags().Lookup("debug"))
}

// colorTable is the map factory bound into the generator: the chained
// hash table keyed by canonical color encoding.
func colorTable(capacity int) container.Map[imaging.ColorKey, string] {
	return container.NewHashTable[imaging.ColorKey, string](capacity, imaging.ColorKey.Hash)
}

// generateGrid runs the full pipeline for the image at path and
// returns the populated grid. Shared by generate and serve; serve
// passes a long-lived cache and evicts the path before each refresh.
func generateGrid(log *slog.Logger, cache *imaging.ImageCache, path string, width, height int, debug bool) (*grid.Grid, error) {
	var opts []classify.Option
	if debug {
		opts = append(opts, classify.Debug("reduced.png"))
	}

	gen, err := classify.New[grid.Location, grid.Tile](cache, path, width, height, opts...)
	if err != nil {
		return nil, err
	}

	colors, labels, _, err := loadPalette()
	if err != nil {
		return nil, err
	}
	if err := gen.BindPalette(colorTable, colors, labels); err != nil {
		return nil, err
	}

	g := grid.New(width, height)
	newPos := func(x, y int) grid.Location { return grid.Location{X: x, Y: y} }
	if err := gen.Generate(g.Put, newPos, grid.NewTile); err != nil {
		return nil, err
	}

	log.Debug("grid generated", "image", path, "width", width, "height", height)
	return g, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := viper.GetString("image")
	if path == "" {
		return fmt.Errorf("a source image is required (use --image)")
	}

	width := viper.GetInt("grid-width")
	height := viper.GetInt("grid-height")
	cell := viper.GetInt("cell-size")
	if cell <= 0 {
		return fmt.Errorf("cell size %d: must be positive", cell)
	}

	log := newLogger()

	cache := imaging.NewImageCache()
	defer cache.Clear()

	g, err := generateGrid(log, cache, path, width, height, viper.GetBool("debug"))
	if err != nil {
		return err
	}

	_, _, display, err := loadPalette()
	if err != nil {
		return err
	}

	out := viper.GetString("out")
	if err := g.SavePNG(out, cell, cell, display); err != nil {
		return fmt.Errorf("writing map to %q: %w", out, err)
	}

	log.Info("map written", "out", out, "cells", width*height)
	return nil
}
