package scene

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/clusterviz/spatialmath"
)

// ShapeType is the kind of geometry a Shape is drawn as.
type ShapeType string

// The shapes a host is expected to draw.
const (
	ShapeSphere   ShapeType = "sphere"
	ShapeCylinder ShapeType = "cylinder"
)

// Shape is a primitive attached to an anchor. Its position is relative to the anchor and its
// scale is the extent along each axis, so a sphere of scale (d, d, d) has diameter d.
//
// Setters on a shape whose anchor is gone do nothing.
type Shape struct {
	graph      *Graph
	index      int
	generation uint64

	kind     ShapeType
	position r3.Vector
	scale    r3.Vector
	color    Color
	released bool
}

// NewShape attaches a new shape of the given kind to the anchor, at the anchor origin with unit
// scale and opaque white color.
func (a *Anchor) NewShape(kind ShapeType) (*Shape, error) {
	switch kind {
	case ShapeSphere, ShapeCylinder:
	default:
		return nil, errors.Errorf("unsupported shape type %q", kind)
	}
	g := a.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.lookup(a.index, a.generation)
	if n == nil {
		return nil, errors.Wrapf(ErrAnchorReleased, "cannot attach %s", kind)
	}
	s := &Shape{
		graph:      g,
		index:      a.index,
		generation: a.generation,
		kind:       kind,
		scale:      r3.Vector{X: 1, Y: 1, Z: 1},
		color:      Color{R: 1, G: 1, B: 1, A: 1},
	}
	n.shapes = append(n.shapes, s)
	return s, nil
}

// Type returns the kind of the shape.
func (s *Shape) Type() ShapeType {
	return s.kind
}

// SetPosition moves the shape relative to its anchor.
func (s *Shape) SetPosition(p r3.Vector) {
	s.graph.mu.Lock()
	defer s.graph.mu.Unlock()
	if !s.released {
		s.position = p
	}
}

// Position returns the position of the shape relative to its anchor.
func (s *Shape) Position() r3.Vector {
	s.graph.mu.RLock()
	defer s.graph.mu.RUnlock()
	return s.position
}

// SetScale sets the extent of the shape along each axis.
func (s *Shape) SetScale(scale r3.Vector) {
	s.graph.mu.Lock()
	defer s.graph.mu.Unlock()
	if !s.released {
		s.scale = scale
	}
}

// Scale returns the extent of the shape along each axis.
func (s *Shape) Scale() r3.Vector {
	s.graph.mu.RLock()
	defer s.graph.mu.RUnlock()
	return s.scale
}

// SetColor sets the color of the shape.
func (s *Shape) SetColor(c Color) {
	s.graph.mu.Lock()
	defer s.graph.mu.Unlock()
	if !s.released {
		s.color = c
	}
}

// Color returns the color of the shape.
func (s *Shape) Color() Color {
	s.graph.mu.RLock()
	defer s.graph.mu.RUnlock()
	return s.color
}

// Released reports whether the shape has been destroyed, directly or with its anchor.
func (s *Shape) Released() bool {
	s.graph.mu.RLock()
	defer s.graph.mu.RUnlock()
	return s.released
}

// Destroy detaches the shape from its anchor. Destroying a released shape does nothing.
func (s *Shape) Destroy() {
	if s == nil {
		return
	}
	g := s.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	n := g.lookup(s.index, s.generation)
	if n == nil {
		return
	}
	for i, other := range n.shapes {
		if other == s {
			n.shapes = append(n.shapes[:i], n.shapes[i+1:]...)
			break
		}
	}
}

// Primitive is what a host needs to draw one shape.
type Primitive struct {
	Shape            ShapeType         `json:"shape"`
	Anchor           string            `json:"anchor"`
	Position         r3.Vector         `json:"position"`
	Scale            r3.Vector         `json:"scale"`
	Color            Color             `json:"color"`
	WorldPosition    r3.Vector         `json:"world_position"`
	WorldOrientation *spatialmath.R4AA `json:"world_orientation"`
}

func (s *Shape) primitive(anchor string, anchorWorld spatialmath.Pose) Primitive {
	return Primitive{
		Shape:            s.kind,
		Anchor:           anchor,
		Position:         s.position,
		Scale:            s.scale,
		Color:            s.color,
		WorldPosition:    spatialmath.TransformPoint(anchorWorld, s.position),
		WorldOrientation: anchorWorld.Orientation().AxisAngles(),
	}
}
