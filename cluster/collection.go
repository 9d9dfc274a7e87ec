package cluster

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/clusterviz/logging"
	"go.viam.com/clusterviz/ros"
	"go.viam.com/clusterviz/scene"
	"go.viam.com/clusterviz/spatialmath"
)

var errCollectionClosed = errors.New("cluster collection is closed")

// Cluster is one group of points of an incoming message.
type Cluster struct {
	Name   string
	Points []r3.Vector
}

// ClustersFromMessage converts a ROS cluster message, keeping cluster and point order.
func ClustersFromMessage(msg *ros.ClusterMessage) []Cluster {
	if msg == nil {
		return nil
	}
	return lo.Map(msg.Clusters, func(field ros.ClusterField, _ int) Cluster {
		return Cluster{
			Name:   field.Name,
			Points: lo.Map(field.Points, func(p ros.Point, _ int) r3.Vector { return p.Vector() }),
		}
	})
}

// Collection holds the clusters of the latest message under a single frame anchor.
//
// Every message replaces all clusters at once: point sets are torn down and rebuilt rather
// than diffed, because cluster count and membership change arbitrarily between messages.
type Collection struct {
	mu         sync.RWMutex
	anchor     *scene.Anchor
	frameID    string
	radius     float64
	color      scene.Color
	sets       []*PointSet
	generation uint64
	closed     bool
	logger     logging.Logger
}

// NewCollection creates a collection whose frame anchor hangs below parent.
func NewCollection(parent *scene.Anchor, cfg *Config, logger logging.Logger) (*Collection, error) {
	if cfg != nil {
		if err := cfg.Validate("cluster"); err != nil {
			return nil, err
		}
	}
	name := fmt.Sprintf("%s/%s", cfg.frameID(), uuid.NewString())
	anchor, err := parent.CreateChild(name)
	if err != nil {
		return nil, err
	}
	return &Collection{
		anchor:  anchor,
		frameID: cfg.frameID(),
		radius:  cfg.radius(),
		color:   cfg.color(),
		logger:  logger,
	}, nil
}

// Anchor returns the frame anchor of the collection.
func (c *Collection) Anchor() *scene.Anchor {
	return c.anchor
}

// FrameID returns the frame the collection was configured for.
func (c *Collection) FrameID() string {
	return c.frameID
}

// SetMessage replaces every cluster with the given ones. Each cluster gets a new PointSet with
// all of its points and then a single envelope computation. A cluster whose envelope fails
// keeps its points; its error is returned combined with the others after every cluster has
// been built.
func (c *Collection) SetMessage(clusters []Cluster) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errCollectionClosed
	}

	errs := c.clearLocked()
	sets := make([]*PointSet, 0, len(clusters))
	for i, cl := range clusters {
		name := cl.Name
		if name == "" {
			name = fmt.Sprintf("cluster %d", i)
		}
		ps, err := newPointSet(c.anchor, name, c.radius, c.color)
		if err != nil {
			// the frame anchor is gone, nothing else can be built either
			for _, built := range sets {
				errs = multierr.Combine(errs, built.Close())
			}
			return multierr.Combine(errs, err)
		}
		for _, p := range cl.Points {
			errs = multierr.Combine(errs, ps.AddPoint(p))
		}
		if err := ps.ComputeEnvelope(); err != nil {
			c.logger.Warnw("cluster has no envelope", "cluster", name, "points", ps.Len(), "error", err)
			errs = multierr.Combine(errs, err)
		}
		sets = append(sets, ps)
	}
	c.sets = sets
	c.generation++
	c.logger.Debugw("applied cluster message", "clusters", len(sets), "generation", c.generation)
	return errs
}

// SetMessageFromROS applies a ROS cluster message.
func (c *Collection) SetMessageFromROS(msg *ros.ClusterMessage) error {
	if msg == nil {
		return errors.New("nil cluster message")
	}
	if id := msg.Header.FrameID; id != "" && id != c.frameID {
		c.logger.Debugw("cluster message frame differs from display frame", "message", id, "display", c.frameID)
	}
	return c.SetMessage(ClustersFromMessage(msg))
}

func (c *Collection) clearLocked() error {
	var errs error
	for i := len(c.sets) - 1; i >= 0; i-- {
		errs = multierr.Combine(errs, c.sets[i].Close())
	}
	c.sets = nil
	return errs
}

// SetFramePosition moves the frame anchor relative to its parent.
func (c *Collection) SetFramePosition(position r3.Vector) error {
	return c.anchor.SetPosition(position)
}

// SetFrameOrientation rotates the frame anchor relative to its parent.
func (c *Collection) SetFrameOrientation(orientation spatialmath.Orientation) error {
	return c.anchor.SetOrientation(orientation)
}

// SetFramePose sets position and orientation of the frame anchor at once.
func (c *Collection) SetFramePose(pose spatialmath.Pose) error {
	return c.anchor.SetPose(pose)
}

// SetColor recolors every cluster; later messages are drawn in the same color.
func (c *Collection) SetColor(color scene.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = color
	for _, ps := range c.sets {
		ps.SetColor(color)
	}
}

// SetRadius changes the radius of points drawn from the next message on.
func (c *Collection) SetRadius(r float64) error {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return errors.Errorf("point radius must be positive, got %v", r)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = r
	return nil
}

// Radius returns the radius used for new points.
func (c *Collection) Radius() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.radius
}

// Clusters returns the point sets of the latest message in message order. The sets are owned by
// the collection and are closed by the next SetMessage, so they may only be used by the goroutine
// that applies messages. Other goroutines should use Snapshot.
func (c *Collection) Clusters() []*PointSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sets := make([]*PointSet, len(c.sets))
	copy(sets, c.sets)
	return sets
}

// ClusterSnapshot is a copy of one cluster's state, safe to keep after the collection moves on.
type ClusterSnapshot struct {
	Name        string             `json:"name"`
	Points      []r3.Vector        `json:"points"`
	Envelope    spatialmath.Sphere `json:"envelope"`
	HasEnvelope bool               `json:"has_envelope"`
}

// Snapshot copies the clusters of the latest message under the read lock, so the result always
// belongs to a single message.
func (c *Collection) Snapshot() []ClusterSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Map(c.sets, func(ps *PointSet, _ int) ClusterSnapshot {
		bounds, ok := ps.Envelope()
		return ClusterSnapshot{Name: ps.Name(), Points: ps.Points(), Envelope: bounds, HasEnvelope: ok}
	})
}

// Len returns the number of clusters of the latest message.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets)
}

// Envelopes returns the envelopes of the clusters that have one, in message order.
func (c *Collection) Envelopes() []spatialmath.Sphere {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []spatialmath.Sphere
	for _, ps := range c.sets {
		if s, ok := ps.Envelope(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Generation returns how many messages have been applied.
func (c *Collection) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Close releases every cluster and then the frame anchor.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return multierr.Combine(c.clearLocked(), c.anchor.Destroy())
}
