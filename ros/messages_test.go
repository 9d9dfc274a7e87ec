package ros

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

const clusterJSON = `{
	"header": {"seq": 4, "stamp": {"secs": 10, "nsecs": 20}, "frame_id": "/base_link"},
	"clusters": [
		{"name": "Cluster 0", "points": [{"x": 1, "y": 2, "z": 3}, {"x": -1, "y": 0, "z": 0.5}]},
		{"name": "Cluster 1", "points": []}
	]
}`

func TestDecodeClusterMessage(t *testing.T) {
	msg, err := DecodeClusterMessage(strings.NewReader(clusterJSON))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, msg.Header.FrameID, test.ShouldEqual, "/base_link")
	test.That(t, msg.Header.Stamp, test.ShouldResemble, Stamp{Secs: 10, Nsecs: 20})
	test.That(t, msg.Clusters, test.ShouldHaveLength, 2)
	test.That(t, msg.Clusters[0].Points[1].Vector(), test.ShouldResemble, r3.Vector{X: -1, Z: 0.5})
	test.That(t, msg.Clusters[1].Points, test.ShouldBeEmpty)

	_, err = DecodeClusterMessage(strings.NewReader("{"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cluster message")
}

func TestDecodeLaserScan(t *testing.T) {
	scan, err := DecodeLaserScan(strings.NewReader(`{
		"header": {"frame_id": "laser"},
		"angle_min": -1.5, "angle_max": 1.5, "angle_increment": 0.01,
		"range_min": 0.1, "range_max": 30, "ranges": [1, 2, 3]
	}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scan.AngleIncrement, test.ShouldEqual, 0.01)
	test.That(t, scan.Ranges, test.ShouldResemble, []float64{1, 2, 3})

	_, err = DecodeLaserScan(strings.NewReader("[]"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDecodeBagMessages(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"meta": {"secs": 1, "nsecs": 2}, "data": ` + clusterJSON + `}`),
	}
	msgs, err := DecodeBagMessages[ClusterMessage](raw)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, msgs, test.ShouldHaveLength, 1)
	test.That(t, msgs[0].Meta, test.ShouldResemble, Stamp{Secs: 1, Nsecs: 2})
	test.That(t, msgs[0].Data.Clusters[0].Name, test.ShouldEqual, "Cluster 0")

	_, err = DecodeBagMessages[ClusterMessage]([]json.RawMessage{json.RawMessage(`nope`)})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "message 0")
}

func TestPointConversion(t *testing.T) {
	v := r3.Vector{X: 1, Y: -2, Z: 3}
	test.That(t, PointFromVector(v).Vector(), test.ShouldResemble, v)
}

func TestRandomClusterMessage(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	now := time.Unix(100, 5)
	for i := 0; i < 20; i++ {
		msg := RandomClusterMessage(rng, "/base_link", i, now)
		test.That(t, msg.Header.Seq, test.ShouldEqual, i)
		test.That(t, msg.Header.Stamp, test.ShouldResemble, Stamp{Secs: 100, Nsecs: 5})
		test.That(t, len(msg.Clusters), test.ShouldBeGreaterThanOrEqualTo, 1)
		test.That(t, len(msg.Clusters), test.ShouldBeLessThanOrEqualTo, maxRandomClusters)
		for _, c := range msg.Clusters {
			test.That(t, len(c.Points), test.ShouldBeGreaterThanOrEqualTo, 1)
			test.That(t, len(c.Points), test.ShouldBeLessThanOrEqualTo, maxRandomClusterPoints)
			for _, p := range c.Points {
				test.That(t, p.X, test.ShouldBeGreaterThanOrEqualTo, -randomClusterHalfExtent)
				test.That(t, p.X, test.ShouldBeLessThanOrEqualTo, randomClusterHalfExtent)
				test.That(t, p.Y, test.ShouldBeGreaterThanOrEqualTo, -randomClusterHalfExtent)
				test.That(t, p.Y, test.ShouldBeLessThanOrEqualTo, randomClusterHalfExtent)
				test.That(t, p.Z, test.ShouldBeGreaterThanOrEqualTo, -randomClusterHalfExtent)
				test.That(t, p.Z, test.ShouldBeLessThanOrEqualTo, randomClusterHalfExtent)
			}
		}
		test.That(t, msg.Clusters[0].Name, test.ShouldEqual, "Cluster 0")
	}
}

func TestPartitionCloud(t *testing.T) {
	var cloud []r3.Vector
	for _, center := range []r3.Vector{{X: -50}, {X: 50}} {
		for i := 0; i < 10; i++ {
			cloud = append(cloud, center.Add(r3.Vector{X: float64(i) * 0.1, Y: float64(i%3) * 0.1}))
		}
	}

	msg, err := PartitionCloud(cloud, 2, "map")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, msg.Header.FrameID, test.ShouldEqual, "map")

	total := 0
	for _, c := range msg.Clusters {
		total += len(c.Points)
		// the two blobs are far apart, a cluster never straddles both
		sign := c.Points[0].X > 0
		for _, p := range c.Points {
			test.That(t, p.X > 0, test.ShouldEqual, sign)
		}
	}
	test.That(t, total, test.ShouldEqual, len(cloud))

	_, err = PartitionCloud(cloud, 0, "map")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = PartitionCloud(cloud[:1], 2, "map")
	test.That(t, err, test.ShouldNotBeNil)
}
