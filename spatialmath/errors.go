package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrNoPoints is returned when an enclosing sphere is requested for an empty point set.
var ErrNoPoints = errors.New("cannot compute an enclosing sphere of zero points")

func newBadGeometryDimensionsError(radius float64) error {
	return errors.Errorf("invalid sphere radius %v, must be finite and non-negative", radius)
}

func newNonFinitePointError(index int, p r3.Vector) error {
	return errors.Errorf("point %d (%v, %v, %v) has a non-finite coordinate", index, p.X, p.Y, p.Z)
}
