// Package classify turns a raster image into a coarse grid of
// categorical labels.
//
// The pipeline has two fixed stages. Construction reduces the source
// image to grid resolution by area averaging; BindPalette builds a
// color→label table through a caller-supplied map factory. Generate
// then walks every cell, picks the palette color nearest the cell's
// averaged color, and emits the (position, value) pair through
// caller-supplied constructors and sink. The package owns no container
// type and no output structure; both sides of the pipeline are
// injected.
//
// # Errors
//
// Misconfiguration (ErrPaletteMismatch, ErrEmptyPalette), calling out
// of order (ErrUnboundPalette), and an unreadable image (*LoadError)
// are surfaced to the caller. A caller-supplied map that loses a bound
// key is a broken contract and panics. Debug mode alone escalates a
// load failure to process exit and emits the reduced image artifact.
package classify
