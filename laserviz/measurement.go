// Package laserviz turns laser scans into obstacle markers.
package laserviz

import (
	"math"

	"go.viam.com/clusterviz/ros"
	"go.viam.com/clusterviz/spatialmath"
)

// Measurement is a single ray of a scan, in the scan frame.
type Measurement struct {
	angle    float64
	distance float64
	x        float64
	y        float64
}

// NewMeasurement returns the ray at angle with the given range. Angles follow the ROS
// convention: 0 points along +x and angles grow counter clockwise towards +y.
func NewMeasurement(angle, distance float64) *Measurement {
	return &Measurement{
		angle:    angle,
		distance: distance,
		x:        distance * math.Cos(angle),
		y:        distance * math.Sin(angle),
	}
}

// Angle is in radians.
func (m *Measurement) Angle() float64 {
	return m.angle
}

// AngleDeg is the angle in degrees.
func (m *Measurement) AngleDeg() float64 {
	return spatialmath.RadToDeg(m.angle)
}

func (m *Measurement) Distance() float64 {
	return m.distance
}

func (m *Measurement) Coords() (float64, float64) {
	return m.x, m.y
}

// ScanMeasurements samples every stride-th ray of scan, starting at the first one. Rays whose
// range is not finite or falls outside [RangeMin, RangeMax] are dropped. A RangeMax of zero
// means the scan does not bound its ranges from above.
func ScanMeasurements(scan *ros.LaserScan, stride int) []*Measurement {
	if scan == nil || stride <= 0 || scan.AngleIncrement <= 0 {
		return nil
	}
	var out []*Measurement
	i := 0
	for theta := scan.AngleMin; theta < scan.AngleMax && i < len(scan.Ranges); theta += float64(stride) * scan.AngleIncrement {
		r := scan.Ranges[i]
		i += stride
		if math.IsNaN(r) || math.IsInf(r, 0) || r < scan.RangeMin {
			continue
		}
		if scan.RangeMax > 0 && r > scan.RangeMax {
			continue
		}
		out = append(out, NewMeasurement(theta, r))
	}
	return out
}
