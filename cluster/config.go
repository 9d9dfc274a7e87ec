// Package cluster renders clusters of points together with their minimum enclosing spheres.
//
// A Collection owns one anchor for the frame its messages are expressed in and rebuilds one
// PointSet per cluster every time a new message arrives. Moving the collection anchor moves
// every point and envelope with it; nothing is recomputed on pose updates.
package cluster

import (
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/clusterviz/scene"
)

// Defaults used when a Config leaves a field empty.
const (
	DefaultPointRadius = 0.2
	DefaultColor       = "#cc33cc"
	DefaultAlpha       = 1.0
	DefaultFrameID     = "base_link"
)

// Config describes how a Collection draws its clusters.
type Config struct {
	PointRadius float64  `json:"point_radius,omitempty"`
	Color       string   `json:"color,omitempty"`
	Alpha       *float64 `json:"alpha,omitempty"`
	FrameID     string   `json:"frame_id,omitempty"`
}

// NewConfigFromAttributes decodes a loosely typed attribute map, as found in JSON config files,
// into a Config.
func NewConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "invalid cluster display attributes")
	}
	return &conf, nil
}

// Validate ensures all parts of the config are valid. path is used to prefix error messages.
func (cfg *Config) Validate(path string) error {
	if cfg.PointRadius < 0 || math.IsNaN(cfg.PointRadius) || math.IsInf(cfg.PointRadius, 0) {
		return errors.Errorf("%s: point_radius must be a non-negative number, got %v", path, cfg.PointRadius)
	}
	if cfg.Alpha != nil && (*cfg.Alpha < 0 || *cfg.Alpha > 1 || math.IsNaN(*cfg.Alpha)) {
		return errors.Errorf("%s: alpha must be within [0, 1], got %v", path, *cfg.Alpha)
	}
	if cfg.Color != "" {
		if _, err := scene.ColorFromHex(cfg.Color, DefaultAlpha); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

// radius returns the configured point radius or the default.
func (cfg *Config) radius() float64 {
	if cfg == nil || cfg.PointRadius == 0 {
		return DefaultPointRadius
	}
	return cfg.PointRadius
}

// color returns the configured color or the default. The config must already be valid.
func (cfg *Config) color() scene.Color {
	hex, alpha := DefaultColor, DefaultAlpha
	if cfg != nil {
		if cfg.Color != "" {
			hex = cfg.Color
		}
		if cfg.Alpha != nil {
			alpha = *cfg.Alpha
		}
	}
	c, err := scene.ColorFromHex(hex, alpha)
	if err != nil {
		c, _ = scene.ColorFromHex(DefaultColor, alpha)
	}
	return c
}

func (cfg *Config) frameID() string {
	if cfg == nil || cfg.FrameID == "" {
		return DefaultFrameID
	}
	return cfg.FrameID
}
