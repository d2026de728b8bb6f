package geom

import "errors"

var (
	// ErrInvalidBox is returned when a span has max < min on some axis.
	ErrInvalidBox = errors.New("geom: invalid box")

	// ErrInvalidAxes is returned when an axes triple is not a permutation of (0, 1, 2).
	ErrInvalidAxes = errors.New("geom: invalid axes")
)
