package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is an orientation in quaternion representation.
type Quaternion quat.Number

// NewQuaternion returns the unit quaternion w + xi + yj + zk. A zero quaternion, which
// cannot be normalized, is treated as no rotation.
func NewQuaternion(w, x, y, z float64) *Quaternion {
	q := Normalize(quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z})
	return (*Quaternion)(&q)
}

// Quaternion returns orientation in quaternion representation.
func (q *Quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// AxisAngles returns the orientation in axis angle representation.
func (q *Quaternion) AxisAngles() *R4AA {
	return QuatToR4AA(q.Quaternion())
}

// Normalize a quaternion, returning its versor (unit quaternion).
func Normalize(q quat.Number) quat.Number {
	length := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if length == 0 || math.IsNaN(length) {
		return quat.Number{Real: 1}
	}
	if math.Abs(length-1.0) < 1e-10 {
		return q
	}
	length = 1.0 / length
	return quat.Number{Real: q.Real * length, Imag: q.Imag * length, Jmag: q.Jmag * length, Kmag: q.Kmag * length}
}

// QuatToR4AA converts a quat to an R4 axis angle in the same way the C++ Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) *R4AA {
	denom := Norm(q)

	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		angle *= -1
	}

	if denom < 1e-6 {
		return NewR4AA()
	}
	return &R4AA{angle, q.Imag / denom, q.Jmag / denom, q.Kmag / denom}
}

// Norm returns the norm of the quaternion, i.e. the sqrt of the sum of the squares of the imaginary parts.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Quaternions have double coverage,
// q and -q describe the same rotation, so both are checked.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
	if same {
		return true
	}
	return math.Abs(a.Real+b.Real) < tol &&
		math.Abs(a.Imag+b.Imag) < tol &&
		math.Abs(a.Jmag+b.Jmag) < tol &&
		math.Abs(a.Kmag+b.Kmag) < tol
}
