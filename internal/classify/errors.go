package classify

import (
	"errors"
	"fmt"
)

// Configuration and state errors surfaced to the caller. The generator
// never retries; every error is synchronous.
var (
	// ErrPaletteMismatch reports color/label arrays of unequal length.
	// Detected before the map factory is invoked, so no table is ever
	// partially populated.
	ErrPaletteMismatch = errors.New("color and label arrays must be the same length")

	// ErrEmptyPalette reports generation against a palette bound with
	// zero entries, which leaves the nearest-color search with no
	// candidates.
	ErrEmptyPalette = errors.New("bound palette has no entries")

	// ErrUnboundPalette reports generation requested before
	// BindPalette.
	ErrUnboundPalette = errors.New("must bind a color table before generating")
)

// LoadError reports a source image that could not be opened or
// decoded. In normal mode it is returned to the caller; in debug mode
// the constructor terminates the process instead.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load map image %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
