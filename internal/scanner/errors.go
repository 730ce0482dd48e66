package scanner

import "errors"

// Error kinds surfaced to callers. Use errors.Is to classify.
var (
	// ErrDecode means the input is not a decodable image.
	ErrDecode = errors.New("decode error")

	// ErrInvalidGeometry means the points given to Warp do not describe a
	// usable quadrilateral: not exactly four, non-finite, collinear or
	// coincident, or collapsing to nothing after an inset.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrParameter means a tuning parameter is outside its sane range.
	ErrParameter = errors.New("invalid parameter")
)
