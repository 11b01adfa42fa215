// Package extract suggests classification palettes by analyzing the
// source image's color distribution. It is an authoring aid: the
// suggested colors seed a palette config that a human then labels.
package extract

import (
	"errors"
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/gridworks/mapgen/internal/imaging"
)

// Method selects the color analysis strategy.
type Method string

const (
	// MethodDominant finds dominant colors by histogram clustering and
	// picks a perceptually diverse subset.
	MethodDominant Method = "dominant"

	// MethodKMeans runs k-means over a pixel subsample in RGB space and
	// uses the cluster centers.
	MethodKMeans Method = "kmeans"
)

// ErrNoColors reports an image from which no palette candidates could
// be derived, such as a fully transparent one.
var ErrNoColors = errors.New("no palette candidates in image")

// kmeans on every pixel of a large image is pointless precision at
// real cost, so sampling stops around this many observations.
const maxSamples = 12000

// Suggest derives k palette colors from img using the given method,
// ordered darkest to brightest so labels can be assigned top-down.
func Suggest(img image.Image, k int, method Method) ([]imaging.RGBColor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("palette size %d: must be positive", k)
	}

	var (
		picked []colorful.Color
		err    error
	)
	switch method {
	case MethodKMeans:
		picked, err = kmeansPalette(img, k)
	case MethodDominant, "":
		picked, err = dominantPalette(img, k)
	default:
		return nil, fmt.Errorf("unknown palette method %q", method)
	}
	if err != nil {
		return nil, err
	}

	sortByLuminance(picked)

	out := make([]imaging.RGBColor, len(picked))
	for i, c := range picked {
		r, g, b := c.Clamped().RGB255()
		out[i] = imaging.RGBColor{R: r, G: g, B: b}
	}
	return out, nil
}

// dominantPalette asks the histogram clusterer for a generous candidate
// pool, then greedily keeps the k candidates that stay far apart in Lab
// space, weighted toward frequent colors.
func dominantPalette(img image.Image, k int) ([]colorful.Color, error) {
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		return nil, ErrNoColors
	}

	pool := make([]weighted, 0, len(candidates))
	for _, c := range candidates {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		pool = append(pool, weighted{color: col.Clamped(), weight: math.Max(c.Weight, 1e-6)})
	}
	if len(pool) == 0 {
		return nil, ErrNoColors
	}
	return selectDiverse(pool, k), nil
}

// kmeansPalette clusters a subsample of opaque pixels in RGB space and
// keeps diverse cluster centers weighted by population.
func kmeansPalette(img image.Image, k int) ([]colorful.Color, error) {
	b := img.Bounds()
	step := 1
	if n := b.Dx() * b.Dy(); n > maxSamples {
		step = int(math.Sqrt(float64(n)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, maxSamples)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(bl) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil, ErrNoColors
	}

	// Over-cluster, then pick diverse centers; straight k clusters
	// tends to merge small but semantically distinct regions.
	workK := min(max(k*4, k+2), len(dataset))
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil {
		return nil, fmt.Errorf("clustering %d samples: %w", len(dataset), err)
	}
	if len(cc) == 0 {
		return nil, ErrNoColors
	}

	pool := make([]weighted, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		pool = append(pool, weighted{color: col, weight: math.Max(float64(len(c.Observations)), 1e-6)})
	}
	if len(pool) == 0 {
		return nil, ErrNoColors
	}
	return selectDiverse(pool, k), nil
}

type weighted struct {
	color  colorful.Color
	weight float64
}

// selectDiverse seeds with the heaviest candidate, then repeatedly adds
// the candidate maximizing Lab distance to the selection, scaled by its
// normalized weight so rare outlier colors do not dominate the palette.
func selectDiverse(pool []weighted, k int) []colorful.Color {
	k = min(k, len(pool))

	maxW := 0.0
	labs := make([][3]float64, len(pool))
	for i, c := range pool {
		l, a, b := c.color.Lab()
		labs[i] = [3]float64{l, a, b}
		maxW = math.Max(maxW, c.weight)
	}

	seed := 0
	for i := range pool {
		if pool[i].weight > pool[seed].weight {
			seed = i
		}
	}
	chosen := []int{seed}
	taken := make([]bool, len(pool))
	taken[seed] = true

	for len(chosen) < k {
		bestIdx, bestScore := -1, -1.0
		for i := range pool {
			if taken[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range chosen {
				d0 := labs[i][0] - labs[s][0]
				d1 := labs[i][1] - labs[s][1]
				d2 := labs[i][2] - labs[s][2]
				minD2 = math.Min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(pool[i].weight/maxW))
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
		if bestIdx < 0 {
			break
		}
		taken[bestIdx] = true
		chosen = append(chosen, bestIdx)
	}

	out := make([]colorful.Color, len(chosen))
	for i, idx := range chosen {
		out[i] = pool[idx].color
	}
	return out
}

// sortByLuminance orders colors darkest first by linear-RGB relative
// luminance.
func sortByLuminance(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ra, ga, ba := a.LinearRgb()
		rb, gb, bb := b.LinearRgb()
		ya := 0.2126*ra + 0.7152*ga + 0.0722*ba
		yb := 0.2126*rb + 0.7152*gb + 0.0722*bb
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		default:
			return 0
		}
	})
}
