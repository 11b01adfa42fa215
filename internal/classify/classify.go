package classify

import (
	"fmt"
	"image"
	"log"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/gridworks/mapgen/internal/container"
	"github.com/gridworks/mapgen/internal/imaging"
)

// Generator classifies a reduced source image into a grid of labeled
// cells. It is generic over the caller's position type K and value
// type V: the generator constructs neither. It calls the injected
// constructors and hands each (position, value) pair to the caller's
// sink, so the caller owns the output grid's representation entirely.
//
// Construction reduces the image once; BindPalette builds the color
// table once; both are read-only during Generate, so cells may be
// consumed concurrently by the sink if the sink allows it.
type Generator[K comparable, V any] struct {
	reduced *imaging.ReducedImage
	palette container.Map[imaging.ColorKey, string]
}

type options struct {
	debug        bool
	artifactPath string
}

// Option configures a Generator constructor.
type Option func(*options)

// Debug enables debug mode: a failed image load terminates the process
// instead of returning an error, and the reduced image is written to
// artifactPath as a PNG for inspection. An empty artifactPath defaults
// to "reduced.png".
func Debug(artifactPath string) Option {
	return func(o *options) {
		o.debug = true
		if artifactPath != "" {
			o.artifactPath = artifactPath
		}
	}
}

// New loads the image at path through cache and reduces it to a
// width×height cell buffer by area averaging.
//
// A load or decode failure returns a *LoadError, except in debug mode
// where it is fatal: the process exits rather than leaving behind a
// generator with no usable image.
func New[K comparable, V any](cache *imaging.ImageCache, path string, width, height int, opts ...Option) (*Generator[K, V], error) {
	o := options{artifactPath: "reduced.png"}
	for _, opt := range opts {
		opt(&o)
	}

	img, err := cache.Load(path)
	if err != nil {
		if o.debug {
			log.Fatalf("could not load map image %q: %v", path, err)
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	g, err := FromImage[K, V](img, width, height)
	if err != nil {
		return nil, err
	}

	if o.debug {
		if err := imgio.Save(o.artifactPath, g.reduced.Image(), imgio.PNGEncoder()); err != nil {
			log.Printf("debug: could not write reduced image to %q: %v", o.artifactPath, err)
		}
	}
	return g, nil
}

// FromImage builds a Generator from an already-decoded image. It is
// the construction path for callers that do not go through the disk
// loader, and the seam tests use.
func FromImage[K comparable, V any](img image.Image, width, height int) (*Generator[K, V], error) {
	reduced, err := imaging.Reduce(img, width, height)
	if err != nil {
		return nil, err
	}
	return &Generator[K, V]{reduced: reduced}, nil
}

// Width returns the grid width in cells.
func (g *Generator[K, V]) Width() int { return g.reduced.Width() }

// Height returns the grid height in cells.
func (g *Generator[K, V]) Height() int { return g.reduced.Height() }

// BindPalette builds the color table through the caller-supplied map
// factory and fills it with one entry per (color, label) pair. Colors
// are stored under their canonical ColorKey, so the table never sees a
// negative key identity whatever its hashing scheme.
//
// colors and labels correspond positionally and must be the same
// length; a mismatch returns ErrPaletteMismatch before the factory is
// invoked. Rebinding replaces the previous table wholesale.
func (g *Generator[K, V]) BindPalette(newTable container.Factory[imaging.ColorKey, string], colors []imaging.RGBColor, labels []string) error {
	if len(colors) != len(labels) {
		return fmt.Errorf("binding %d colors to %d labels: %w", len(colors), len(labels), ErrPaletteMismatch)
	}

	table := newTable(len(colors))
	for i, c := range colors {
		table.Put(c.Key(), labels[i])
	}
	g.palette = table
	return nil
}

// Generate classifies every grid cell exactly once and pushes the
// results outward: for each cell it reads the reduced-image color,
// finds the palette color at minimum distance, resolves its label, and
// calls put(newPos(x, y), newVal(label)).
//
// Generate fails with ErrUnboundPalette before any work if BindPalette
// has not run, and with ErrEmptyPalette if the bound table has no
// keys. Equal-distance candidates resolve to the smaller ColorKey
// encoding, so output is deterministic regardless of the table's key
// iteration order.
func (g *Generator[K, V]) Generate(put func(K, V), newPos func(x, y int) K, newVal func(label string) V) error {
	if g.palette == nil {
		return ErrUnboundPalette
	}

	empty := true
	for range g.palette.Keys() {
		empty = false
		break
	}
	if empty {
		return fmt.Errorf("generating %dx%d grid: %w", g.Width(), g.Height(), ErrEmptyPalette)
	}

	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			label := g.closestLabel(g.reduced.ColorAt(x, y))
			put(newPos(x, y), newVal(label))
		}
	}
	return nil
}

// closestLabel returns the label of the palette color at minimum
// distance from c.
//
// A bound key with no retrievable label means the caller-supplied Map
// broke its contract between Put and Get; that is an unrecoverable
// implementation fault, not a data error, so it panics.
func (g *Generator[K, V]) closestLabel(c imaging.RGBColor) string {
	var best imaging.ColorKey
	bestDist := -1
	for k := range g.palette.Keys() {
		d := imaging.Distance(c, k.Color())
		if bestDist < 0 || d < bestDist || (d == bestDist && k < best) {
			best, bestDist = k, d
		}
	}

	label, ok := g.palette.Get(best)
	if !ok {
		panic(fmt.Sprintf("classify: palette table returned no label for bound key %s; supplied Map implementation is broken", best.Color().Hex()))
	}
	return label
}
