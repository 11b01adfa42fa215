package classify

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/gridworks/mapgen/internal/container"
	"github.com/gridworks/mapgen/internal/imaging"
)

type cell struct{ X, Y int }

type marker struct{ Label string }

func newCell(x, y int) cell             { return cell{X: x, Y: y} }
func newMarker(label string) marker     { return marker{Label: label} }
func keyHash(k imaging.ColorKey) uint64 { return k.Hash() }

func builtinFactory(capacity int) container.Map[imaging.ColorKey, string] {
	return container.NewBuiltin[imaging.ColorKey, string](capacity)
}

func hashTableFactory(capacity int) container.Map[imaging.ColorKey, string] {
	return container.NewHashTable[imaging.ColorKey, string](capacity, keyHash)
}

var factories = map[string]container.Factory[imaging.ColorKey, string]{
	"builtin":   builtinFactory,
	"hashtable": hashTableFactory,
}

// blockImage builds an image whose (x, y) cell of size block×block is
// the solid color colors[y][x], so reducing it back to the cell grid
// reproduces the colors exactly.
func blockImage(colors [][]imaging.RGBColor, block int) *image.RGBA {
	h := len(colors)
	w := len(colors[0])
	img := image.NewRGBA(image.Rect(0, 0, w*block, h*block))
	for cy := 0; cy < h; cy++ {
		for cx := 0; cx < w; cx++ {
			c := colors[cy][cx]
			for dy := 0; dy < block; dy++ {
				for dx := 0; dx < block; dx++ {
					img.Set(cx*block+dx, cy*block+dy, color.RGBA{c.R, c.G, c.B, 255})
				}
			}
		}
	}
	return img
}

// writePNG encodes img to path, failing the test on error.
func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func TestBindPalette_Mismatch(t *testing.T) {
	g, err := FromImage[cell, marker](blockImage([][]imaging.RGBColor{{{R: 0, G: 0, B: 0}}}, 4), 1, 1)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	factoryCalls := 0
	countingFactory := func(capacity int) container.Map[imaging.ColorKey, string] {
		factoryCalls++
		return container.NewBuiltin[imaging.ColorKey, string](capacity)
	}

	colors := []imaging.RGBColor{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}, {R: 10, G: 10, B: 10}, {R: 20, G: 20, B: 20}}
	labels := []string{"a", "b", "c"}

	err = g.BindPalette(countingFactory, colors, labels)
	if !errors.Is(err, ErrPaletteMismatch) {
		t.Fatalf("BindPalette: got %v, want ErrPaletteMismatch", err)
	}
	if factoryCalls != 0 {
		t.Errorf("factory invoked %d times on mismatch, want 0", factoryCalls)
	}
}

func TestBindPalette_RoundTrip(t *testing.T) {
	colors := []imaging.RGBColor{
		{R: 172, G: 220, B: 242},
		{R: 193, G: 161, B: 156},
		{R: 199, G: 207, B: 190},
		{R: 149, G: 181, B: 145},
	}
	labels := []string{"water", "road", "grass", "mountain"}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			g, err := FromImage[cell, marker](blockImage([][]imaging.RGBColor{{{R: 0, G: 0, B: 0}}}, 4), 1, 1)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}
			if err := g.BindPalette(factory, colors, labels); err != nil {
				t.Fatalf("BindPalette failed: %v", err)
			}

			count := 0
			for range g.palette.Keys() {
				count++
			}
			if count != len(colors) {
				t.Errorf("bound key count: got %d, want %d", count, len(colors))
			}

			for i, c := range colors {
				label, ok := g.palette.Get(c.Key())
				if !ok || label != labels[i] {
					t.Errorf("Get(%v): got (%q,%v), want (%q,true)", c, label, ok, labels[i])
				}
			}
		})
	}
}

func TestGenerate_BeforeBind(t *testing.T) {
	src := blockImage([][]imaging.RGBColor{{{R: 50, G: 50, B: 50}}}, 8)

	for _, size := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%dx%d", size, size), func(t *testing.T) {
			g, err := FromImage[cell, marker](src, size, size)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}

			calls := 0
			err = g.Generate(func(cell, marker) { calls++ }, newCell, newMarker)
			if !errors.Is(err, ErrUnboundPalette) {
				t.Errorf("Generate: got %v, want ErrUnboundPalette", err)
			}
			if calls != 0 {
				t.Errorf("sink called %d times before binding, want 0", calls)
			}
		})
	}
}

func TestGenerate_EmptyPalette(t *testing.T) {
	g, err := FromImage[cell, marker](blockImage([][]imaging.RGBColor{{{R: 50, G: 50, B: 50}}}, 8), 2, 2)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if err := g.BindPalette(builtinFactory, nil, nil); err != nil {
		t.Fatalf("BindPalette failed: %v", err)
	}

	err = g.Generate(func(cell, marker) {}, newCell, newMarker)
	if !errors.Is(err, ErrEmptyPalette) {
		t.Errorf("Generate: got %v, want ErrEmptyPalette", err)
	}
}

func TestGenerate_ExactMatches(t *testing.T) {
	palette := []imaging.RGBColor{
		{R: 172, G: 220, B: 242},
		{R: 193, G: 161, B: 156},
		{R: 199, G: 207, B: 190},
	}
	labels := []string{"water", "road", "grass"}

	for _, size := range []int{1, 5, 50} {
		t.Run(fmt.Sprintf("%dx%d", size, size), func(t *testing.T) {
			// Every cell is exactly the second palette color.
			rows := make([][]imaging.RGBColor, size)
			for y := range rows {
				rows[y] = make([]imaging.RGBColor, size)
				for x := range rows[y] {
					rows[y][x] = palette[1]
				}
			}

			g, err := FromImage[cell, marker](blockImage(rows, 2), size, size)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}
			if err := g.BindPalette(builtinFactory, palette, labels); err != nil {
				t.Fatalf("BindPalette failed: %v", err)
			}

			got := make(map[cell]string, size*size)
			err = g.Generate(
				func(p cell, m marker) { got[p] = m.Label },
				newCell, newMarker,
			)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			if len(got) != size*size {
				t.Fatalf("emitted %d cells, want %d", len(got), size*size)
			}
			for p, label := range got {
				if label != "road" {
					t.Fatalf("cell %v: got %q, want road", p, label)
				}
			}
		})
	}
}

func TestGenerate_NearBlackPicksBlack(t *testing.T) {
	g, err := FromImage[cell, marker](blockImage([][]imaging.RGBColor{{{R: 10, G: 10, B: 10}}}, 8), 1, 1)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	colors := []imaging.RGBColor{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}}
	if err := g.BindPalette(builtinFactory, colors, []string{"black", "white"}); err != nil {
		t.Fatalf("BindPalette failed: %v", err)
	}

	var got string
	err = g.Generate(func(_ cell, m marker) { got = m.Label }, newCell, newMarker)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "black" {
		t.Errorf("pixel (10,10,10): classified as %q, want black", got)
	}
}

func TestGenerate_TwoByTwoScenario(t *testing.T) {
	src := blockImage([][]imaging.RGBColor{
		{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}},
		{{R: 1, G: 1, B: 1}, {R: 254, G: 254, B: 254}},
	}, 4)

	want := map[cell]string{
		{0, 0}: "black", {1, 0}: "white",
		{0, 1}: "black", {1, 1}: "white",
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			g, err := FromImage[cell, marker](src, 2, 2)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}
			colors := []imaging.RGBColor{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}}
			if err := g.BindPalette(factory, colors, []string{"black", "white"}); err != nil {
				t.Fatalf("BindPalette failed: %v", err)
			}

			got := make(map[cell]string)
			err = g.Generate(func(p cell, m marker) { got[p] = m.Label }, newCell, newMarker)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			for p, label := range want {
				if got[p] != label {
					t.Errorf("cell %v: got %q, want %q", p, got[p], label)
				}
			}
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	src := blockImage([][]imaging.RGBColor{
		{{R: 172, G: 220, B: 242}, {R: 193, G: 161, B: 156}},
		{{R: 199, G: 207, B: 190}, {R: 149, G: 181, B: 145}},
	}, 4)

	g, err := FromImage[cell, marker](src, 2, 2)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	colors := []imaging.RGBColor{
		{R: 172, G: 220, B: 242}, {R: 193, G: 161, B: 156}, {R: 199, G: 207, B: 190}, {R: 149, G: 181, B: 145},
	}
	labels := []string{"water", "road", "grass", "mountain"}
	if err := g.BindPalette(hashTableFactory, colors, labels); err != nil {
		t.Fatalf("BindPalette failed: %v", err)
	}

	run := func() []string {
		var out []string
		err := g.Generate(
			func(p cell, m marker) { out = append(out, fmt.Sprintf("%d,%d=%s", p.X, p.Y, m.Label)) },
			newCell, newMarker,
		)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		sort.Strings(out)
		return out
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestGenerate_TieBreakDeterministic(t *testing.T) {
	// (100,0,0) and (0,0,100) are equidistant from (50,0,50). The
	// smaller key encoding must win under either container: blue,
	// since red packs into higher bits.
	src := blockImage([][]imaging.RGBColor{{{R: 50, G: 0, B: 50}}}, 4)
	colors := []imaging.RGBColor{{R: 100, G: 0, B: 0}, {R: 0, G: 0, B: 100}}
	labels := []string{"red", "blue"}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			g, err := FromImage[cell, marker](src, 1, 1)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}
			if err := g.BindPalette(factory, colors, labels); err != nil {
				t.Fatalf("BindPalette failed: %v", err)
			}

			var got string
			err = g.Generate(func(_ cell, m marker) { got = m.Label }, newCell, newMarker)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if got != "blue" {
				t.Errorf("tie-break: got %q, want blue", got)
			}
		})
	}
}

// brokenMap loses every key between Put and Get.
type brokenMap struct{}

func (brokenMap) Get(imaging.ColorKey) (string, bool)         { return "", false }
func (brokenMap) Put(imaging.ColorKey, string) (string, bool) { return "", false }
func (brokenMap) Keys() container.Seq[imaging.ColorKey] {
	return func(yield func(imaging.ColorKey) bool) {
		yield(imaging.RGBColor{R: 1, G: 2, B: 3}.Key())
	}
}

func TestGenerate_BrokenTablePanics(t *testing.T) {
	g, err := FromImage[cell, marker](blockImage([][]imaging.RGBColor{{{R: 1, G: 2, B: 3}}}, 4), 1, 1)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	err = g.BindPalette(
		func(int) container.Map[imaging.ColorKey, string] { return brokenMap{} },
		[]imaging.RGBColor{{R: 1, G: 2, B: 3}},
		[]string{"x"},
	)
	if err != nil {
		t.Fatalf("BindPalette failed: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Generate should panic when the table loses a bound key")
		}
	}()
	_ = g.Generate(func(cell, marker) {}, newCell, newMarker)
}

func TestNew_MissingImage(t *testing.T) {
	cache := imaging.NewImageCache()

	_, err := New[cell, marker](cache, filepath.Join(t.TempDir(), "absent.png"), 4, 4)
	if err == nil {
		t.Fatal("New should fail for a missing image")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("error type: got %T, want *LoadError", err)
	}
}

func TestNew_DebugWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "map.png")
	artifact := filepath.Join(dir, "reduced.png")

	src := blockImage([][]imaging.RGBColor{
		{{R: 200, G: 0, B: 0}, {R: 0, G: 200, B: 0}},
		{{R: 0, G: 0, B: 200}, {R: 200, G: 200, B: 200}},
	}, 8)
	writePNG(t, srcPath, src)

	cache := imaging.NewImageCache()
	g, err := New[cell, marker](cache, srcPath, 2, 2, Debug(artifact))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.Width() != 2 || g.Height() != 2 {
		t.Errorf("grid size: got %dx%d, want 2x2", g.Width(), g.Height())
	}

	info, err := os.Stat(artifact)
	if err != nil {
		t.Fatalf("debug artifact missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("debug artifact is empty")
	}
}
