package sampler

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	ErrEmptySampler     = errors.New("sampler has no values")
	ErrSourceNotSampled = errors.New("copy source has not been sampled")
)

// Parse errors.
var (
	ErrMixedSeparators = errors.New("spec mixes ',' and ':' separators")
	ErrMalformedRange  = errors.New("range spec must have exactly two fields")
	ErrEmptyRange      = errors.New("range end is below range start")
	ErrInvalidNumber   = errors.New("invalid number")
)

// Validation errors.
var (
	ErrDensityRange     = errors.New("density must lie in (0, 1]")
	ErrSizeNotPositive  = errors.New("size must be positive")
	ErrUniverseOverflow = errors.New("implied universe exceeds 2^32")
)

// FormatError reports a spec string that could not be turned into a sampler.
type FormatError struct {
	Spec  string
	Token string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("parse %q: token %q: %v", e.Spec, e.Token, e.Err)
	}
	return fmt.Sprintf("parse %q: %v", e.Spec, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports a size/density pair that cannot describe a
// realizable bitmap.
type ValidationError struct {
	Size    string
	Density string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("size %s with density %s: %v", e.Size, e.Density, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
