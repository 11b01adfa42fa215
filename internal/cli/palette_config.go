package cli

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"

	"github.com/gridworks/mapgen/internal/grid"
	"github.com/gridworks/mapgen/internal/imaging"
)

// paletteEntry is one palette row from the config file: the source
// color to match against, its label, and an optional display color for
// rendering (defaults to the source color).
type paletteEntry struct {
	Color   string `mapstructure:"color"`
	Label   string `mapstructure:"label"`
	Display string `mapstructure:"display"`
}

// defaultPalette matches hand-painted terrain maps in pastel tones.
var defaultPalette = []paletteEntry{
	{Color: "#acdcf2", Label: "water", Display: "#3366cc"},
	{Color: "#c1a19c", Label: "road", Display: "#c0c0c0"},
	{Color: "#c7cfbe", Label: "grass", Display: "#339933"},
	{Color: "#95b591", Label: "mountain", Display: "#555555"},
}

// loadPalette resolves the palette from the config file, falling back
// to the built-in terrain palette. It returns the parallel color and
// label slices the generator binds, plus the display-color table the
// renderer uses.
func loadPalette() ([]imaging.RGBColor, []string, map[string]color.NRGBA, error) {
	entries := defaultPalette
	if viper.IsSet("palette") {
		entries = nil
		if err := viper.UnmarshalKey("palette", &entries); err != nil {
			return nil, nil, nil, fmt.Errorf("reading palette config: %w", err)
		}
	}

	colors := make([]imaging.RGBColor, 0, len(entries))
	labels := make([]string, 0, len(entries))
	display := make(map[string]color.NRGBA, len(entries))

	for i, e := range entries {
		if e.Label == "" {
			return nil, nil, nil, fmt.Errorf("palette entry %d: label is required", i)
		}
		c, err := parseRGB(e.Color)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("palette entry %q: %w", e.Label, err)
		}
		colors = append(colors, c)
		labels = append(labels, e.Label)

		hex := e.Display
		if hex == "" {
			hex = e.Color
		}
		d, err := grid.DisplayColor(hex)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("palette entry %q: %w", e.Label, err)
		}
		display[grid.NewTile(e.Label).Name] = d
	}
	return colors, labels, display, nil
}

// parseRGB parses a "#RRGGBB" string into a classification color.
func parseRGB(hex string) (imaging.RGBColor, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return imaging.RGBColor{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return imaging.RGBColor{R: r, G: g, B: b}, nil
}
