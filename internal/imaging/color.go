package imaging

import (
	"fmt"
	"image/color"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// FromColor converts any color.Color to an RGBColor, scaling 16-bit
// components down to 8 bits and discarding alpha.
func FromColor(c color.Color) RGBColor {
	r, g, b, _ := c.RGBA()
	return RGBColor{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Hex returns the color in "#RRGGBB" form.
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ColorKey is the canonical map-key identity of an RGBColor: the three
// channels packed into the low 24 bits of an unsigned integer.
//
// Packing into an unsigned value guarantees a non-negative, structural
// identity regardless of how the underlying container hashes keys, so
// table implementations that cannot handle negative hash codes work
// unmodified.
type ColorKey uint32

// Key returns the canonical ColorKey for the color.
func (c RGBColor) Key() ColorKey {
	return ColorKey(uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}

// Color unpacks the key back into its RGBColor.
func (k ColorKey) Color() RGBColor {
	return RGBColor{
		R: uint8(k >> 16),
		G: uint8(k >> 8),
		B: uint8(k),
	}
}

// Hash is a ready-made hash function for ColorKey keys, suitable for
// container.NewHashTable. The key encoding is already a stable
// non-negative integer, so the identity hash suffices.
func (k ColorKey) Hash() uint64 {
	return uint64(k)
}

// Distance scores the dissimilarity of two colors as the sum of squared
// per-channel differences (squared Euclidean distance in RGB space).
// The square root is omitted since only relative ordering matters.
//
// Distance is symmetric, non-negative, and zero exactly when a == b.
// The maximum possible value is 3*255*255 = 195075.
func Distance(a, b RGBColor) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
