// Package scene implements the transform hierarchy that rendered primitives hang from.
//
// A Graph is a strict tree of anchors rooted at World. Every anchor stores its pose relative
// to its parent; the pose of anything attached below an anchor is the composition of all
// ancestor poses, so moving an anchor moves its whole subtree as a rigid unit.
//
// Anchors live in an arena. Handles carry the generation of the slot they were issued for,
// which makes releasing an anchor twice a no-op and keeps stale handles from ever touching a
// slot that has since been reused.
package scene

import (
	"fmt"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/clusterviz/logging"
	"go.viam.com/clusterviz/spatialmath"
)

// World is the name of the root anchor of every Graph.
const World = "world"

const worldIndex = 0

type node struct {
	name       string
	parent     int
	generation uint64
	live       bool
	pose       spatialmath.Pose
	children   []int
	shapes     []*Shape
}

// Graph is a tree of anchors and the shapes attached to them.
type Graph struct {
	mu     sync.RWMutex
	nodes  []node
	free   []int
	logger logging.Logger
}

// NewGraph returns a graph containing only the World anchor.
func NewGraph(logger logging.Logger) *Graph {
	return &Graph{
		nodes:  []node{{name: World, parent: -1, generation: 1, live: true, pose: spatialmath.NewZeroPose()}},
		logger: logger,
	}
}

// World returns the root anchor. It can never be destroyed.
func (g *Graph) World() *Anchor {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return &Anchor{graph: g, index: worldIndex, generation: g.nodes[worldIndex].generation}
}

// AnchorCount returns the number of live anchors, World included.
func (g *Graph) AnchorCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes) - len(g.free)
}

// ShapeCount returns the number of live shapes in the graph.
func (g *Graph) ShapeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for i := range g.nodes {
		if g.nodes[i].live {
			count += len(g.nodes[i].shapes)
		}
	}
	return count
}

// Primitives returns every live shape in depth first order, parents before children and shapes
// in creation order, together with its world pose.
func (g *Graph) Primitives() []Primitive {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var prims []Primitive
	g.collectPrimitives(worldIndex, spatialmath.NewZeroPose(), &prims)
	return prims
}

func (g *Graph) collectPrimitives(idx int, parentWorld spatialmath.Pose, out *[]Primitive) {
	n := &g.nodes[idx]
	world := spatialmath.Compose(parentWorld, n.pose)
	for _, s := range n.shapes {
		*out = append(*out, s.primitive(n.name, world))
	}
	for _, child := range n.children {
		g.collectPrimitives(child, world, out)
	}
}

// lookup returns the node behind a handle, or nil if the handle is stale. Callers hold g.mu.
func (g *Graph) lookup(index int, generation uint64) *node {
	if index < 0 || index >= len(g.nodes) {
		return nil
	}
	n := &g.nodes[index]
	if !n.live || n.generation != generation {
		return nil
	}
	return n
}

func (g *Graph) allocate(name string, parent int) int {
	var idx int
	if len(g.free) > 0 {
		idx = g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
	} else {
		g.nodes = append(g.nodes, node{})
		idx = len(g.nodes) - 1
	}
	n := &g.nodes[idx]
	n.name = name
	n.parent = parent
	n.generation++
	n.live = true
	n.pose = spatialmath.NewZeroPose()
	n.children = nil
	n.shapes = nil
	return idx
}

// release frees idx and its whole subtree, children first in reverse creation order.
// Callers hold g.mu.
func (g *Graph) release(idx int) {
	n := &g.nodes[idx]
	for i := len(n.children) - 1; i >= 0; i-- {
		g.release(n.children[i])
		n = &g.nodes[idx]
	}
	for _, s := range n.shapes {
		s.released = true
	}

	if parent := n.parent; parent >= 0 {
		p := &g.nodes[parent]
		for i, c := range p.children {
			if c == idx {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}

	n.live = false
	n.children = nil
	n.shapes = nil
	n.pose = nil
	// bump again so a handle from this lifetime can never match a later reuse of the slot.
	n.generation++
	g.free = append(g.free, idx)
}

// Anchor is a handle to a node of a Graph.
type Anchor struct {
	graph      *Graph
	index      int
	generation uint64
}

// CreateChild registers a new anchor below this one. The parent of an anchor never changes.
func (a *Anchor) CreateChild(name string) (*Anchor, error) {
	g := a.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lookup(a.index, a.generation) == nil {
		return nil, errors.Wrapf(ErrAnchorReleased, "cannot create %q", name)
	}
	idx := g.allocate(name, a.index)
	parent := &g.nodes[a.index]
	parent.children = append(parent.children, idx)
	g.logger.Debugw("created anchor", "name", name, "parent", parent.name)
	return &Anchor{graph: g, index: idx, generation: g.nodes[idx].generation}, nil
}

// Destroy releases the anchor, every anchor below it and every shape attached to any of them.
// Destroying an already released anchor does nothing.
func (a *Anchor) Destroy() error {
	if a == nil {
		return nil
	}
	g := a.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if a.index == worldIndex {
		return errors.New("the world anchor cannot be destroyed")
	}
	n := g.lookup(a.index, a.generation)
	if n == nil {
		return nil
	}
	g.logger.Debugw("destroying anchor", "name", n.name, "children", len(n.children), "shapes", len(n.shapes))
	g.release(a.index)
	return nil
}

// Released reports whether the anchor has been destroyed, directly or through an ancestor.
func (a *Anchor) Released() bool {
	a.graph.mu.RLock()
	defer a.graph.mu.RUnlock()
	return a.graph.lookup(a.index, a.generation) == nil
}

// Name returns the name the anchor was created with.
func (a *Anchor) Name() (string, error) {
	a.graph.mu.RLock()
	defer a.graph.mu.RUnlock()
	n := a.graph.lookup(a.index, a.generation)
	if n == nil {
		return "", ErrAnchorReleased
	}
	return n.name, nil
}

// SetPosition sets the position of the anchor relative to its parent.
func (a *Anchor) SetPosition(position r3.Vector) error {
	return a.updatePose(func(p spatialmath.Pose) spatialmath.Pose {
		return spatialmath.NewPose(position, p.Orientation())
	})
}

// SetOrientation sets the orientation of the anchor relative to its parent.
func (a *Anchor) SetOrientation(orientation spatialmath.Orientation) error {
	return a.updatePose(func(p spatialmath.Pose) spatialmath.Pose {
		return spatialmath.NewPose(p.Point(), orientation)
	})
}

// SetPose sets both position and orientation relative to the parent.
func (a *Anchor) SetPose(pose spatialmath.Pose) error {
	if pose == nil {
		pose = spatialmath.NewZeroPose()
	}
	return a.updatePose(func(spatialmath.Pose) spatialmath.Pose { return pose })
}

func (a *Anchor) updatePose(update func(spatialmath.Pose) spatialmath.Pose) error {
	g := a.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if a.index == worldIndex {
		return errors.New("the world anchor cannot be moved")
	}
	n := g.lookup(a.index, a.generation)
	if n == nil {
		return ErrAnchorReleased
	}
	n.pose = update(n.pose)
	return nil
}

// LocalPose returns the pose of the anchor relative to its parent.
func (a *Anchor) LocalPose() (spatialmath.Pose, error) {
	a.graph.mu.RLock()
	defer a.graph.mu.RUnlock()
	n := a.graph.lookup(a.index, a.generation)
	if n == nil {
		return nil, ErrAnchorReleased
	}
	return n.pose, nil
}

// WorldPose returns the pose of the anchor relative to World.
func (a *Anchor) WorldPose() (spatialmath.Pose, error) {
	a.graph.mu.RLock()
	defer a.graph.mu.RUnlock()
	return a.graph.worldPose(a.index, a.generation)
}

func (g *Graph) worldPose(index int, generation uint64) (spatialmath.Pose, error) {
	n := g.lookup(index, generation)
	if n == nil {
		return nil, ErrAnchorReleased
	}
	pose := n.pose
	for idx := n.parent; idx >= 0; idx = g.nodes[idx].parent {
		pose = spatialmath.Compose(g.nodes[idx].pose, pose)
	}
	return pose, nil
}

// Traceback returns the names of the anchors from this one up to and including World.
func (a *Anchor) Traceback() ([]string, error) {
	a.graph.mu.RLock()
	defer a.graph.mu.RUnlock()
	n := a.graph.lookup(a.index, a.generation)
	if n == nil {
		return nil, ErrAnchorReleased
	}
	names := []string{n.name}
	for idx := n.parent; idx >= 0; idx = a.graph.nodes[idx].parent {
		names = append(names, a.graph.nodes[idx].name)
	}
	return names, nil
}

// String returns the anchor name, or a marker if it has been released.
func (a *Anchor) String() string {
	name, err := a.Name()
	if err != nil {
		return fmt.Sprintf("released anchor #%d", a.index)
	}
	return name
}
