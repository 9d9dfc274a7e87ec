package ros

import (
	"encoding/json"
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Stamp is a ROS time.
type Stamp struct {
	Secs  int `json:"secs"`
	Nsecs int `json:"nsecs"`
}

// Header is std_msgs/Header.
type Header struct {
	Seq     int    `json:"seq"`
	Stamp   Stamp  `json:"stamp"`
	FrameID string `json:"frame_id"`
}

// Point is geometry_msgs/Point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector returns the point as an r3.Vector.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// PointFromVector converts an r3.Vector to a Point.
func PointFromVector(v r3.Vector) Point {
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Quaternion is geometry_msgs/Quaternion.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Pose is geometry_msgs/Pose.
type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// ClusterField is a single named cluster of points.
type ClusterField struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// ClusterMessage is the Cluster2 message: every cluster found in one frame.
type ClusterMessage struct {
	Header   Header         `json:"header"`
	Clusters []ClusterField `json:"clusters"`
}

// LaserScan is sensor_msgs/LaserScan.
type LaserScan struct {
	Header         Header    `json:"header"`
	AngleMin       float64   `json:"angle_min"`
	AngleMax       float64   `json:"angle_max"`
	AngleIncrement float64   `json:"angle_increment"`
	TimeIncrement  float64   `json:"time_increment"`
	ScanTime       float64   `json:"scan_time"`
	RangeMin       float64   `json:"range_min"`
	RangeMax       float64   `json:"range_max"`
	Ranges         []float64 `json:"ranges"`
	Intensities    []float64 `json:"intensities"`
}

// ColorRGBA is std_msgs/ColorRGBA.
type ColorRGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Marker types and actions used by visualization_msgs/Marker.
const (
	MarkerCylinder = 3
	MarkerAdd      = 0
)

// Marker is the subset of visualization_msgs/Marker that the laser node fills in.
type Marker struct {
	Header    Header    `json:"header"`
	Namespace string    `json:"ns"`
	ID        int       `json:"id"`
	Type      int       `json:"type"`
	Action    int       `json:"action"`
	Pose      Pose      `json:"pose"`
	Scale     Point     `json:"scale"`
	Color     ColorRGBA `json:"color"`
}

// MarkerArray is visualization_msgs/MarkerArray.
type MarkerArray struct {
	Markers []Marker `json:"markers"`
}

// BagMessage is one message of a topic as exported from a rosbag: the recording time plus the
// message itself.
type BagMessage[T any] struct {
	Meta Stamp `json:"meta"`
	Data T     `json:"data"`
}

// DecodeClusterMessage reads a single JSON encoded ClusterMessage.
func DecodeClusterMessage(r io.Reader) (*ClusterMessage, error) {
	var msg ClusterMessage
	if err := json.NewDecoder(r).Decode(&msg); err != nil {
		return nil, errors.Wrap(err, "failed to decode cluster message")
	}
	return &msg, nil
}

// DecodeLaserScan reads a single JSON encoded LaserScan.
func DecodeLaserScan(r io.Reader) (*LaserScan, error) {
	var scan LaserScan
	if err := json.NewDecoder(r).Decode(&scan); err != nil {
		return nil, errors.Wrap(err, "failed to decode laser scan")
	}
	return &scan, nil
}
