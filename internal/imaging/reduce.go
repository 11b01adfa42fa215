package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ReducedImage is a width×height buffer of cell colors derived once
// from a source image. It is read-only after construction.
type ReducedImage struct {
	width  int
	height int
	pix    []RGBColor
}

// Width returns the grid width in cells.
func (r *ReducedImage) Width() int { return r.width }

// Height returns the grid height in cells.
func (r *ReducedImage) Height() int { return r.height }

// ColorAt returns the cell color at (x, y). Coordinates are 0-based
// with origin at the top-left. Outside the valid range
// 0 <= x < Width(), 0 <= y < Height() the zero color is returned,
// matching the convention of the standard library image types.
func (r *ReducedImage) ColorAt(x, y int) RGBColor {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return RGBColor{}
	}
	return r.pix[y*r.width+x]
}

// Image re-materializes the buffer as a standard NRGBA image, one pixel
// per cell. Used for the debug artifact.
func (r *ReducedImage) Image() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := r.pix[y*r.width+x]
			i := out.PixOffset(x, y)
			out.Pix[i] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = 0xff
		}
	}
	return out
}

// Reduce downsamples img to exactly width×height cells using
// area-average (box filter) sampling: each cell color is the mean of
// the corresponding source-region pixels. Averaging, rather than point
// sampling, keeps single stray pixels from dominating the later
// nearest-color classification.
//
// Negative dimensions are an error. Zero dimensions produce an empty
// buffer.
func Reduce(img image.Image, width, height int) (*ReducedImage, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d: dimensions must be non-negative", width, height)
	}

	reduced := &ReducedImage{
		width:  width,
		height: height,
		pix:    make([]RGBColor, width*height),
	}
	if width == 0 || height == 0 {
		return reduced, nil
	}

	// imaging.Box is an area-averaging filter when downscaling.
	small := imaging.Resize(img, width, height, imaging.Box)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := small.PixOffset(x, y)
			reduced.pix[y*width+x] = RGBColor{
				R: small.Pix[i],
				G: small.Pix[i+1],
				B: small.Pix[i+2],
			}
		}
	}
	return reduced, nil
}
