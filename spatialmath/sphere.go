package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Sphere is a ball in 3D space described by its center and radius.
type Sphere struct {
	Center r3.Vector `json:"center"`
	Radius float64   `json:"radius"`
}

// NewSphere returns a sphere centered at center. Negative or non-finite radii are rejected.
func NewSphere(center r3.Vector, radius float64) (Sphere, error) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return Sphere{}, newBadGeometryDimensionsError(radius)
	}
	return Sphere{Center: center, Radius: radius}, nil
}

// Diameter returns twice the radius.
func (s Sphere) Diameter() float64 {
	return 2 * s.Radius
}

// Contains reports whether p lies on or inside the sphere, allowing epsilon of slack on the radius.
func (s Sphere) Contains(p r3.Vector, epsilon float64) bool {
	return p.Sub(s.Center).Norm() <= s.Radius+epsilon
}

// Transform returns the sphere moved by the given pose. Rigid motions leave the radius alone.
func (s Sphere) Transform(p Pose) Sphere {
	return Sphere{Center: TransformPoint(p, s.Center), Radius: s.Radius}
}

// AlmostEqual compares the center and radius of two spheres within epsilon.
func (s Sphere) AlmostEqual(other Sphere, epsilon float64) bool {
	return R3VectorAlmostEqual(s.Center, other.Center, epsilon) && math.Abs(s.Radius-other.Radius) < epsilon
}

// String returns a human readable representation of the sphere.
func (s Sphere) String() string {
	return fmt.Sprintf("Sphere{center: (%.4g, %.4g, %.4g), radius: %.4g}", s.Center.X, s.Center.Y, s.Center.Z, s.Radius)
}
