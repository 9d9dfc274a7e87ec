package laserviz

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/clusterviz/ros"
)

// Defaults for Options fields left empty.
const (
	DefaultStride    = 10
	DefaultFrameID   = "/laser"
	DefaultNamespace = "laser_viz_obstacles"

	// markers are drawn with a diameter of range/sizeDivisor
	sizeDivisor  = 14.0
	markerHeight = 0.01
)

// Options controls how a scan is turned into markers.
type Options struct {
	Stride    int            `json:"stride,omitempty"`
	FrameID   string         `json:"frame_id,omitempty"`
	Namespace string         `json:"ns,omitempty"`
	Color     *ros.ColorRGBA `json:"color,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.Stride == 0 {
		o.Stride = DefaultStride
	}
	if o.FrameID == "" {
		o.FrameID = DefaultFrameID
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.Color == nil {
		o.Color = &ros.ColorRGBA{G: 1, A: 1}
	}
	return o
}

// ObstacleMarkers draws one flat disk per sampled ray of scan, at the point the ray hit.
// Farther hits get bigger disks so they stay visible. Marker ids count up from zero in ray order.
func ObstacleMarkers(scan *ros.LaserScan, opts Options) (*ros.MarkerArray, error) {
	if scan == nil {
		return nil, errors.New("nil laser scan")
	}
	if opts.Stride < 0 {
		return nil, errors.Errorf("stride must be positive, got %d", opts.Stride)
	}
	if scan.AngleIncrement <= 0 {
		return nil, errors.Errorf("angle_increment must be positive, got %v", scan.AngleIncrement)
	}
	opts = opts.withDefaults()

	header := ros.Header{Seq: scan.Header.Seq, Stamp: scan.Header.Stamp, FrameID: opts.FrameID}
	markers := lo.Map(ScanMeasurements(scan, opts.Stride), func(m *Measurement, id int) ros.Marker {
		x, y := m.Coords()
		size := m.Distance() / sizeDivisor
		return ros.Marker{
			Header:    header,
			Namespace: opts.Namespace,
			ID:        id,
			Type:      ros.MarkerCylinder,
			Action:    ros.MarkerAdd,
			Pose: ros.Pose{
				Position:    ros.Point{X: x, Y: y},
				Orientation: ros.Quaternion{W: 1},
			},
			Scale: ros.Point{X: size, Y: size, Z: markerHeight},
			Color: *opts.Color,
		}
	})
	return &ros.MarkerArray{Markers: markers}, nil
}
