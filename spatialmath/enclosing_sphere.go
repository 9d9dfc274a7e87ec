package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

const (
	// a point is inside the current ball if its squared distance to the center exceeds the
	// squared radius by no more than this fraction of max(r^2, extent^2), where extent is the
	// diagonal of the bounding box of the input.
	containmentTolerance = 1e-12

	// supports whose Gram matrix is worse conditioned than this are treated as affinely dependent.
	maxSupportCondition = 1e12

	// at most D+1 points determine a ball in D dimensions.
	maxSupportSize = 4

	maxPivotIterations = 32
)

// MinimumEnclosingSphere computes the smallest sphere containing every given point.
//
// It runs the move-to-front variant of Welzl's algorithm as described by Gaertner in
// "Fast and Robust Smallest Enclosing Balls", followed by a few pivoting rounds that absorb
// floating point drift. Expected running time is linear in the number of points.
// The input slice is not modified.
func MinimumEnclosingSphere(points []r3.Vector) (Sphere, error) {
	if len(points) == 0 {
		return Sphere{}, ErrNoPoints
	}
	for i, p := range points {
		if !vectorIsFinite(p) {
			return Sphere{}, newNonFinitePointError(i, p)
		}
	}

	mb := newMiniball(points)
	mb.pivot()
	return Sphere{Center: mb.center, Radius: math.Sqrt(math.Max(mb.sqRadius, 0))}, nil
}

// miniball holds the state of one enclosing ball computation. points is a private copy whose
// order is permuted by move-to-front; support is the stack of points forced onto the boundary.
type miniball struct {
	points   []r3.Vector
	support  []r3.Vector
	center   r3.Vector
	sqRadius float64
	sqExtent float64
}

func newMiniball(points []r3.Vector) *miniball {
	working := make([]r3.Vector, len(points))
	copy(working, points)
	lo, hi := working[0], working[0]
	for _, p := range working[1:] {
		lo = r3.Vector{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vector{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return &miniball{
		points:   working,
		support:  make([]r3.Vector, 0, maxSupportSize),
		sqRadius: -1, // empty ball, everything is outside
		sqExtent: hi.Sub(lo).Norm2(),
	}
}

func (mb *miniball) excess(p r3.Vector) float64 {
	return p.Sub(mb.center).Norm2() - mb.sqRadius
}

func (mb *miniball) outside(p r3.Vector) bool {
	if mb.sqRadius < 0 {
		return true
	}
	return mb.excess(p) > containmentTolerance*math.Max(mb.sqRadius, mb.sqExtent)
}

// mtf makes the current ball the smallest ball enclosing points[:end] with the support
// stack on its boundary.
func (mb *miniball) mtf(end int) {
	if len(mb.support) == maxSupportSize {
		return
	}
	for i := 0; i < end; i++ {
		p := mb.points[i]
		if !mb.outside(p) {
			continue
		}
		if !mb.push(p) {
			continue
		}
		mb.mtf(i)
		mb.pop()
		mb.moveToFront(i)
	}
}

func (mb *miniball) moveToFront(i int) {
	p := mb.points[i]
	copy(mb.points[1:i+1], mb.points[:i])
	mb.points[0] = p
}

// pivot runs a full move-to-front pass and then repeatedly restarts from the point that is
// farthest outside, as long as that keeps growing the ball.
func (mb *miniball) pivot() {
	mb.mtf(len(mb.points))
	for iter := 0; iter < maxPivotIterations; iter++ {
		idx := mb.farthest()
		p := mb.points[idx]
		if !mb.outside(p) {
			return
		}
		prevCenter, prevSqRadius := mb.center, mb.sqRadius
		if !mb.push(p) {
			return
		}
		mb.mtf(idx)
		mb.pop()
		if mb.sqRadius <= prevSqRadius {
			mb.center, mb.sqRadius = prevCenter, prevSqRadius
			return
		}
		mb.moveToFront(idx)
	}
}

func (mb *miniball) farthest() int {
	best, bestExcess := 0, math.Inf(-1)
	for i, p := range mb.points {
		if e := mb.excess(p); e > bestExcess {
			best, bestExcess = i, e
		}
	}
	return best
}

// push adds p to the support and makes the ball through the support the current ball.
// It refuses points that would make the support affinely dependent.
func (mb *miniball) push(p r3.Vector) bool {
	if len(mb.support) == maxSupportSize {
		return false
	}
	candidate := make([]r3.Vector, len(mb.support), len(mb.support)+1)
	copy(candidate, mb.support)
	candidate = append(candidate, p)

	center, sqRadius, ok := circumsphere(candidate)
	if !ok {
		return false
	}
	mb.support = append(mb.support, p)
	mb.center, mb.sqRadius = center, sqRadius
	return true
}

func (mb *miniball) pop() {
	mb.support = mb.support[:len(mb.support)-1]
}

// circumsphere returns the smallest ball having every given point on its boundary, i.e. the
// ball centered in the affine hull of the points. With q0 as origin and v_i = q_i - q0, the center
// is q0 + sum(lambda_i v_i) where 2 (v_i . v_j) lambda = |v_i|^2.
func circumsphere(pts []r3.Vector) (r3.Vector, float64, bool) {
	origin := pts[0]
	n := len(pts) - 1
	if n == 0 {
		return origin, 0, true
	}
	rel := make([]r3.Vector, n)
	for i := range rel {
		rel[i] = pts[i+1].Sub(origin)
	}

	gram := mat.NewSymDense(n, nil)
	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			gram.SetSym(i, j, 2*rel[i].Dot(rel[j]))
		}
		rhs.SetVec(i, rel[i].Norm2())
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return r3.Vector{}, 0, false
	}
	if chol.Cond() > maxSupportCondition {
		return r3.Vector{}, 0, false
	}
	var lambda mat.VecDense
	if err := chol.SolveVecTo(&lambda, rhs); err != nil {
		return r3.Vector{}, 0, false
	}

	center := origin
	for i, v := range rel {
		center = center.Add(v.Mul(lambda.AtVec(i)))
	}
	return center, center.Sub(origin).Norm2(), true
}
