package grid

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gridworks/mapgen/internal/container"
)

// Location identifies a grid cell by its integer coordinates,
// 0 <= X < width and 0 <= Y < height. Equality is structural.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Index flattens the location into a single integer, x*height + y,
// which is collision-free across a grid of the given height and doubles
// as the location's hash identity.
func (l Location) Index(height int) int {
	return l.X*height + l.Y
}

// Tile is the classified content of one grid cell. The name is
// normalized to lower case so palette labels and display-color lookups
// are case-insensitive.
type Tile struct {
	Name string `json:"name"`
}

// NewTile creates a tile for the given label.
func NewTile(name string) Tile {
	return Tile{Name: strings.ToLower(name)}
}

// Grid is a width×height board of classified tiles. The tile store is
// any Map implementation keyed by Location; New wires in the
// from-scratch hash table, WithStore accepts whatever the caller built.
type Grid struct {
	Width  int
	Height int
	tiles  container.Map[Location, Tile]
}

// New creates a grid backed by a chained hash table sized for
// width×height entries, hashing locations by their flat index.
func New(width, height int) *Grid {
	store := container.NewHashTable[Location, Tile](width*height, func(l Location) uint64 {
		return uint64(int64(l.Index(height)))
	})
	return WithStore(width, height, store)
}

// WithStore creates a grid over a caller-supplied tile store.
func WithStore(width, height int, store container.Map[Location, Tile]) *Grid {
	return &Grid{Width: width, Height: height, tiles: store}
}

// Put records the tile at loc. It has the signature the generator's
// sink expects, so a Grid method value can be passed directly.
func (g *Grid) Put(loc Location, t Tile) {
	g.tiles.Put(loc, t)
}

// TileAt returns the tile at (x, y) and whether one has been placed.
func (g *Grid) TileAt(x, y int) (Tile, bool) {
	return g.tiles.Get(Location{X: x, Y: y})
}

// DisplayColor parses a "#RRGGBB" display color for rendering.
func DisplayColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid display color %q: %w", hex, err)
	}
	r, gr, b := c.RGB255()
	return color.NRGBA{R: r, G: gr, B: b, A: 255}, nil
}

// DefaultColors returns the display colors for the stock
// water/road/grass/mountain palette.
func DefaultColors() map[string]color.NRGBA {
	return map[string]color.NRGBA{
		"water":    {R: 0x33, G: 0x66, B: 0xcc, A: 255},
		"road":     {R: 0xc0, G: 0xc0, B: 0xc0, A: 255},
		"grass":    {R: 0x33, G: 0x99, B: 0x33, A: 255},
		"mountain": {R: 0x55, G: 0x55, B: 0x55, A: 255},
	}
}

// Render paints the grid as an image of cellW×cellH pixel rectangles,
// one per tile, colored by the tile name's entry in colors. Cells with
// no tile, or whose name has no display color, stay transparent.
func (g *Grid) Render(cellW, cellH int, colors map[string]color.NRGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width*cellW, g.Height*cellH))
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			tile, ok := g.TileAt(x, y)
			if !ok {
				continue
			}
			c, ok := colors[tile.Name]
			if !ok {
				continue
			}
			for dy := 0; dy < cellH; dy++ {
				for dx := 0; dx < cellW; dx++ {
					img.SetRGBA(x*cellW+dx, y*cellH+dy, color.RGBA{c.R, c.G, c.B, c.A})
				}
			}
		}
	}
	return img
}

// SavePNG renders the grid and writes it to path as a PNG.
func (g *Grid) SavePNG(path string, cellW, cellH int, colors map[string]color.NRGBA) error {
	return imgio.Save(path, g.Render(cellW, cellH, colors), imgio.PNGEncoder())
}
