package ros

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/golang/geo/r3"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/pkg/errors"
)

const (
	maxRandomClusters       = 20
	maxRandomClusterPoints  = 100
	randomClusterHalfExtent = 10.0
)

// RandomClusterMessage builds a message with 1 to 20 clusters of 1 to 100 points each, spread
// uniformly over a 20m cube centered on the frame origin.
func RandomClusterMessage(rng *rand.Rand, frameID string, seq int, now time.Time) *ClusterMessage {
	msg := &ClusterMessage{
		Header: Header{
			Seq:     seq,
			Stamp:   Stamp{Secs: int(now.Unix()), Nsecs: now.Nanosecond()},
			FrameID: frameID,
		},
	}
	numClusters := 1 + rng.Intn(maxRandomClusters)
	for i := 0; i < numClusters; i++ {
		field := ClusterField{Name: fmt.Sprintf("Cluster %d", i)}
		numPoints := 1 + rng.Intn(maxRandomClusterPoints)
		for j := 0; j < numPoints; j++ {
			field.Points = append(field.Points, Point{
				X: uniform(rng, -randomClusterHalfExtent, randomClusterHalfExtent),
				Y: uniform(rng, -randomClusterHalfExtent, randomClusterHalfExtent),
				Z: uniform(rng, -randomClusterHalfExtent, randomClusterHalfExtent),
			})
		}
		msg.Clusters = append(msg.Clusters, field)
	}
	return msg
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

type cloudObservation struct {
	p r3.Vector
}

func (o cloudObservation) Coordinates() clusters.Coordinates {
	return clusters.Coordinates{o.p.X, o.p.Y, o.p.Z}
}

func (o cloudObservation) Distance(point clusters.Coordinates) float64 {
	return o.Coordinates().Distance(point)
}

// PartitionCloud groups an unlabelled point cloud into k clusters with k-means and returns them
// as a ClusterMessage. Clusters that end up empty are dropped.
func PartitionCloud(points []r3.Vector, k int, frameID string) (*ClusterMessage, error) {
	if k <= 0 {
		return nil, errors.Errorf("number of clusters must be positive, got %d", k)
	}
	if len(points) < k {
		return nil, errors.Errorf("cannot split %d points into %d clusters", len(points), k)
	}

	all := make(clusters.Observations, 0, len(points))
	for _, p := range points {
		all = append(all, cloudObservation{p})
	}

	km := kmeans.New()
	partitioned, err := km.Partition(all, k)
	if err != nil {
		return nil, errors.Wrap(err, "k-means partitioning failed")
	}

	msg := &ClusterMessage{Header: Header{FrameID: frameID}}
	for _, c := range partitioned {
		if len(c.Observations) == 0 {
			continue
		}
		field := ClusterField{Name: fmt.Sprintf("Cluster %d", len(msg.Clusters))}
		for _, o := range c.Observations {
			coords := o.Coordinates()
			field.Points = append(field.Points, Point{X: coords[0], Y: coords[1], Z: coords[2]})
		}
		msg.Clusters = append(msg.Clusters, field)
	}
	return msg, nil
}
