// Package imaging provides the pixel-level services the grid generator
// is built on: cached image loading, area-average reduction of a source
// image to grid resolution, and the RGB color type with its distance
// metric and canonical map-key encoding.
//
// # Coordinate System
//
// All coordinates are 0-based with origin at the top-left: X increases
// rightward, Y increases downward. A ReducedImage of size W×H exposes
// one color per grid cell for 0 <= x < W, 0 <= y < H.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. ReducedImage is immutable
// after construction and may be read from any number of goroutines.
//
// # Color Identity
//
// Colors used as map keys are canonicalized through ColorKey, an
// unsigned 24-bit packing of the three channels. The encoding is
// structural and never negative, so it is safe for hash-table
// implementations that reduce hashes with a plain modulo.
package imaging
