package cluster

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/clusterviz/scene"
	"go.viam.com/clusterviz/spatialmath"
)

// PointSet is one cluster: a sphere per point and, once computed, an envelope sphere, all
// attached to an anchor of their own.
type PointSet struct {
	name     string
	anchor   *scene.Anchor
	radius   float64
	color    scene.Color
	points   []*scene.Shape
	envelope *scene.Shape
	bounds   spatialmath.Sphere
}

// newPointSet creates an empty set anchored below parent.
func newPointSet(parent *scene.Anchor, name string, radius float64, color scene.Color) (*PointSet, error) {
	anchor, err := parent.CreateChild(name)
	if err != nil {
		return nil, err
	}
	return &PointSet{name: name, anchor: anchor, radius: radius, color: color}, nil
}

// Name returns the name of the cluster.
func (ps *PointSet) Name() string {
	return ps.name
}

// Anchor returns the anchor the points and envelope are attached to.
func (ps *PointSet) Anchor() *scene.Anchor {
	return ps.anchor
}

// Len returns the number of points in the set.
func (ps *PointSet) Len() int {
	return len(ps.points)
}

// AddPoint draws a point at p, relative to the set anchor. The envelope is left alone until
// ComputeEnvelope is called.
func (ps *PointSet) AddPoint(p r3.Vector) error {
	s, err := ps.anchor.NewShape(scene.ShapeSphere)
	if err != nil {
		return errors.Wrapf(err, "cannot add point to %q", ps.name)
	}
	s.SetScale(r3.Vector{X: ps.radius, Y: ps.radius, Z: ps.radius})
	s.SetPosition(p)
	s.SetColor(ps.color)
	ps.points = append(ps.points, s)
	return nil
}

// Points returns the positions of the drawn points in insertion order.
func (ps *PointSet) Points() []r3.Vector {
	return lo.Map(ps.points, func(s *scene.Shape, _ int) r3.Vector {
		return s.Position()
	})
}

// ComputeEnvelope fits the minimum enclosing sphere around the drawn points. The positions are
// read back from the point shapes, so the envelope always matches what is displayed.
// A set without points has no envelope.
func (ps *PointSet) ComputeEnvelope() error {
	if len(ps.points) == 0 {
		ps.clearEnvelope()
		return nil
	}

	bounds, err := spatialmath.MinimumEnclosingSphere(ps.Points())
	if err != nil {
		ps.clearEnvelope()
		return errors.Wrapf(err, "cannot compute envelope of %q", ps.name)
	}

	if ps.envelope == nil {
		envelope, err := ps.anchor.NewShape(scene.ShapeSphere)
		if err != nil {
			return errors.Wrapf(err, "cannot draw envelope of %q", ps.name)
		}
		envelope.SetColor(ps.color)
		ps.envelope = envelope
	}
	d := bounds.Diameter()
	ps.envelope.SetScale(r3.Vector{X: d, Y: d, Z: d})
	ps.envelope.SetPosition(bounds.Center)
	ps.bounds = bounds
	return nil
}

func (ps *PointSet) clearEnvelope() {
	ps.envelope.Destroy()
	ps.envelope = nil
	ps.bounds = spatialmath.Sphere{}
}

// Envelope returns the last computed envelope, relative to the set anchor.
func (ps *PointSet) Envelope() (spatialmath.Sphere, bool) {
	if ps.envelope == nil {
		return spatialmath.Sphere{}, false
	}
	return ps.bounds, true
}

// EnvelopeShape returns the drawn envelope, or nil if there is none.
func (ps *PointSet) EnvelopeShape() *scene.Shape {
	return ps.envelope
}

// SetColor recolors every point and the envelope. Points added later use the same color.
func (ps *PointSet) SetColor(c scene.Color) {
	ps.color = c
	for _, s := range ps.points {
		s.SetColor(c)
	}
	if ps.envelope != nil {
		ps.envelope.SetColor(c)
	}
}

// Close releases the anchor of the set along with every shape on it. Closing twice, or after
// the parent anchor went away, is fine.
func (ps *PointSet) Close() error {
	ps.points = nil
	ps.envelope = nil
	ps.bounds = spatialmath.Sphere{}
	return ps.anchor.Destroy()
}
