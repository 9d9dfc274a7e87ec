package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

const mebEps = 1e-9

func randomPoints(rng *rand.Rand, n int, spread float64) []r3.Vector {
	pts := make([]r3.Vector, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, r3.Vector{
			X: rng.Float64()*2*spread - spread,
			Y: rng.Float64()*2*spread - spread,
			Z: rng.Float64()*2*spread - spread,
		})
	}
	return pts
}

// bruteForceSphere tries every support of up to four points and keeps the smallest ball that
// contains all of them.
func bruteForceSphere(pts []r3.Vector) Sphere {
	best := Sphere{Radius: math.Inf(1)}
	n := len(pts)
	consider := func(subset ...r3.Vector) {
		center, sqRadius, ok := circumsphere(subset)
		if !ok {
			return
		}
		candidate := Sphere{Center: center, Radius: math.Sqrt(sqRadius)}
		if candidate.Radius >= best.Radius {
			return
		}
		for _, p := range pts {
			if !candidate.Contains(p, 1e-9) {
				return
			}
		}
		best = candidate
	}
	for i := 0; i < n; i++ {
		consider(pts[i])
		for j := i + 1; j < n; j++ {
			consider(pts[i], pts[j])
			for k := j + 1; k < n; k++ {
				consider(pts[i], pts[j], pts[k])
				for l := k + 1; l < n; l++ {
					consider(pts[i], pts[j], pts[k], pts[l])
				}
			}
		}
	}
	return best
}

func TestEnclosingSphereEmpty(t *testing.T) {
	_, err := MinimumEnclosingSphere(nil)
	test.That(t, err, test.ShouldBeError, ErrNoPoints)

	_, err = MinimumEnclosingSphere([]r3.Vector{})
	test.That(t, err, test.ShouldBeError, ErrNoPoints)
}

func TestEnclosingSphereNonFinite(t *testing.T) {
	_, err := MinimumEnclosingSphere([]r3.Vector{{X: 1, Y: 2, Z: 3}, {X: math.NaN(), Y: 0, Z: 0}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "point 1")

	_, err = MinimumEnclosingSphere([]r3.Vector{{X: math.Inf(1), Y: 0, Z: 0}})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestEnclosingSphereSinglePoint(t *testing.T) {
	p := r3.Vector{X: 3.5, Y: -2, Z: 7}
	s, err := MinimumEnclosingSphere([]r3.Vector{p})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Radius, test.ShouldEqual, 0)
	test.That(t, s.Center, test.ShouldResemble, p)
}

func TestEnclosingSphereTwoPoints(t *testing.T) {
	a := r3.Vector{X: -1, Y: 2, Z: 3}
	b := r3.Vector{X: 5, Y: -2, Z: 1}
	s, err := MinimumEnclosingSphere([]r3.Vector{a, b})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, R3VectorAlmostEqual(s.Center, a.Add(b).Mul(0.5), mebEps), test.ShouldBeTrue)
	test.That(t, s.Radius, test.ShouldAlmostEqual, a.Distance(b)/2, mebEps)
}

func TestEnclosingSphereCollinear(t *testing.T) {
	orders := [][]r3.Vector{
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}},
		{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}},
		{{X: 2, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}},
	}
	for _, pts := range orders {
		s, err := MinimumEnclosingSphere(pts)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, R3VectorAlmostEqual(s.Center, r3.Vector{X: 1}, mebEps), test.ShouldBeTrue)
		test.That(t, s.Radius, test.ShouldAlmostEqual, 1, mebEps)
	}
}

func TestEnclosingSphereTetrahedron(t *testing.T) {
	// alternating cube corners have edge 2*sqrt(2); scale them down to edge 2
	scale := 1 / math.Sqrt2
	pts := []r3.Vector{
		r3.Vector{X: 1, Y: 1, Z: 1}.Mul(scale),
		r3.Vector{X: 1, Y: -1, Z: -1}.Mul(scale),
		r3.Vector{X: -1, Y: 1, Z: -1}.Mul(scale),
		r3.Vector{X: -1, Y: -1, Z: 1}.Mul(scale),
	}
	test.That(t, pts[0].Distance(pts[1]), test.ShouldAlmostEqual, 2, mebEps)

	s, err := MinimumEnclosingSphere(pts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, R3VectorAlmostEqual(s.Center, r3.Vector{}, mebEps), test.ShouldBeTrue)
	test.That(t, s.Radius, test.ShouldAlmostEqual, math.Sqrt(6)/2, mebEps)
	test.That(t, s.Radius, test.ShouldAlmostEqual, 1.2247, 1e-4)

	// interior points do not change anything
	s2, err := MinimumEnclosingSphere(append([]r3.Vector{{}, {X: 0.1, Y: 0.1, Z: 0.1}}, pts...))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s2.AlmostEqual(s, mebEps), test.ShouldBeTrue)
}

func TestEnclosingSphereDegenerate(t *testing.T) {
	t.Run("identical points", func(t *testing.T) {
		p := r3.Vector{X: 4, Y: 4, Z: 4}
		s, err := MinimumEnclosingSphere([]r3.Vector{p, p, p, p, p})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.Radius, test.ShouldEqual, 0)
		test.That(t, s.Center, test.ShouldResemble, p)
	})
	t.Run("duplicated pair", func(t *testing.T) {
		a, b := r3.Vector{}, r3.Vector{X: 0, Y: 4, Z: 0}
		s, err := MinimumEnclosingSphere([]r3.Vector{a, b, a, b, b, a})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, R3VectorAlmostEqual(s.Center, r3.Vector{Y: 2}, mebEps), test.ShouldBeTrue)
		test.That(t, s.Radius, test.ShouldAlmostEqual, 2, mebEps)
	})
	t.Run("coplanar square", func(t *testing.T) {
		pts := []r3.Vector{{X: 1, Y: 1, Z: 0}, {X: -1, Y: 1, Z: 0}, {X: -1, Y: -1, Z: 0}, {X: 1, Y: -1, Z: 0}, {X: 0, Y: 0, Z: 0}}
		s, err := MinimumEnclosingSphere(pts)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, R3VectorAlmostEqual(s.Center, r3.Vector{}, mebEps), test.ShouldBeTrue)
		test.That(t, s.Radius, test.ShouldAlmostEqual, math.Sqrt2, mebEps)
	})
	t.Run("many collinear", func(t *testing.T) {
		var pts []r3.Vector
		for i := 0; i <= 50; i++ {
			pts = append(pts, r3.Vector{X: float64(i), Y: 2 * float64(i), Z: -float64(i)})
		}
		s, err := MinimumEnclosingSphere(pts)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, R3VectorAlmostEqual(s.Center, r3.Vector{X: 25, Y: 50, Z: -25}, 1e-7), test.ShouldBeTrue)
		test.That(t, s.Radius, test.ShouldAlmostEqual, pts[0].Distance(pts[50])/2, 1e-7)
	})
	t.Run("obtuse triangle", func(t *testing.T) {
		// the longest side is a diameter, the third vertex is not on the boundary
		pts := []r3.Vector{{X: -2, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 0.5, Y: 0.5, Z: 0}}
		s, err := MinimumEnclosingSphere(pts)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, R3VectorAlmostEqual(s.Center, r3.Vector{}, mebEps), test.ShouldBeTrue)
		test.That(t, s.Radius, test.ShouldAlmostEqual, 2, mebEps)
	})
}

func TestEnclosingSphereTinyScale(t *testing.T) {
	t.Run("two close points", func(t *testing.T) {
		s, err := MinimumEnclosingSphere([]r3.Vector{{}, {X: 1e-7}})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.Center.X, test.ShouldAlmostEqual, 5e-8, 1e-20)
		test.That(t, s.Radius, test.ShouldAlmostEqual, 5e-8, 1e-20)
	})
	t.Run("small cloud", func(t *testing.T) {
		unit := randomPoints(rand.New(rand.NewSource(5)), 50, 1)
		tiny := make([]r3.Vector, 0, len(unit))
		for _, p := range unit {
			tiny = append(tiny, p.Mul(1e-6))
		}

		s, err := MinimumEnclosingSphere(tiny)
		test.That(t, err, test.ShouldBeNil)
		for _, p := range tiny {
			test.That(t, p.Distance(s.Center), test.ShouldBeLessThanOrEqualTo, s.Radius*(1+1e-9))
		}

		// the answer scales with the input
		reference, err := MinimumEnclosingSphere(unit)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.Radius/1e-6, test.ShouldAlmostEqual, reference.Radius, 1e-9)
		test.That(t, R3VectorAlmostEqual(s.Center.Mul(1e6), reference.Center, 1e-9), test.ShouldBeTrue)
	})
	t.Run("far from the origin", func(t *testing.T) {
		offset := r3.Vector{X: 1e6, Y: -1e6, Z: 1e6}
		s, err := MinimumEnclosingSphere([]r3.Vector{offset, offset.Add(r3.Vector{X: 2})})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, R3VectorAlmostEqual(s.Center, offset.Add(r3.Vector{X: 1}), 1e-6), test.ShouldBeTrue)
		test.That(t, s.Radius, test.ShouldAlmostEqual, 1, 1e-6)
	})
}

func TestCircumsphereSinglePoint(t *testing.T) {
	p := r3.Vector{X: 1, Y: 2, Z: 3}
	center, sqRadius, ok := circumsphere([]r3.Vector{p})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, center, test.ShouldResemble, p)
	test.That(t, sqRadius, test.ShouldEqual, 0)
}

func TestEnclosingSphereDoesNotReorderInput(t *testing.T) {
	pts := randomPoints(rand.New(rand.NewSource(3)), 40, 10)
	original := make([]r3.Vector, len(pts))
	copy(original, pts)
	_, err := MinimumEnclosingSphere(pts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pts, test.ShouldResemble, original)
}

func TestEnclosingSphereRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		pts := randomPoints(rng, 1+rng.Intn(14), 10)
		s, err := MinimumEnclosingSphere(pts)
		test.That(t, err, test.ShouldBeNil)

		for _, p := range pts {
			test.That(t, s.Contains(p, 1e-9), test.ShouldBeTrue)
		}

		expected := bruteForceSphere(pts)
		test.That(t, s.Radius, test.ShouldAlmostEqual, expected.Radius, 1e-7)
		test.That(t, R3VectorAlmostEqual(s.Center, expected.Center, 1e-6), test.ShouldBeTrue)
	}
}

func TestEnclosingSphereOrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := randomPoints(rng, 200, 10)
	reference, err := MinimumEnclosingSphere(pts)
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < 10; i++ {
		shuffled := make([]r3.Vector, len(pts))
		copy(shuffled, pts)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		s, err := MinimumEnclosingSphere(shuffled)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.AlmostEqual(reference, 1e-7), test.ShouldBeTrue)
	}
}

func TestEnclosingSphereRigidTransform(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pts := randomPoints(rng, 100, 5)
	reference, err := MinimumEnclosingSphere(pts)
	test.That(t, err, test.ShouldBeNil)

	pose := NewPose(r3.Vector{X: 5, Y: -3, Z: 2}, &R4AA{Theta: 0.7, RX: 1, RY: 2, RZ: 3})
	moved := make([]r3.Vector, 0, len(pts))
	for _, p := range pts {
		moved = append(moved, TransformPoint(pose, p))
	}

	s, err := MinimumEnclosingSphere(moved)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.AlmostEqual(reference.Transform(pose), 1e-7), test.ShouldBeTrue)
}

func TestEnclosingSphereAdversarialOrder(t *testing.T) {
	// points sorted by distance from the center are the worst case for move-to-front
	var pts []r3.Vector
	for i := 1; i <= 300; i++ {
		th := float64(i) * 0.37
		r := float64(i) / 300
		pts = append(pts, r3.Vector{X: r * math.Cos(th), Y: r * math.Sin(th), Z: r * math.Sin(3*th)})
	}
	s, err := MinimumEnclosingSphere(pts)
	test.That(t, err, test.ShouldBeNil)
	for _, p := range pts {
		test.That(t, s.Contains(p, 1e-9), test.ShouldBeTrue)
	}
}

func BenchmarkEnclosingSphere(b *testing.B) {
	pts := randomPoints(rand.New(rand.NewSource(1)), 100, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := MinimumEnclosingSphere(pts); err != nil {
			b.Fatal(err)
		}
	}
}
