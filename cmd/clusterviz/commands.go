package main

import (
	"encoding/json"
	"math/rand"
	"os"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/clusterviz/cluster"
	"go.viam.com/clusterviz/laserviz"
	"go.viam.com/clusterviz/ros"
	"go.viam.com/clusterviz/scene"
	"go.viam.com/clusterviz/spatialmath"
)

// renderOutput is what render prints.
type renderOutput struct {
	Frame      string               `json:"frame"`
	Clusters   int                  `json:"clusters"`
	Envelopes  []spatialmath.Sphere `json:"envelopes"`
	Primitives []scene.Primitive    `json:"primitives"`
}

func (r *runner) renderAction(c *cli.Context) (err error) {
	msg, err := r.loadClusterMessage(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c.Path(flagConfig))
	if err != nil {
		return err
	}

	graph := scene.NewGraph(r.logger.Sublogger("scene"))
	coll, err := cluster.NewCollection(graph.World(), cfg, r.logger.Sublogger("cluster"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, coll.Close())
	}()

	pose := spatialmath.NewPose(
		r3.Vector{X: c.Float64(flagX), Y: c.Float64(flagY), Z: c.Float64(flagZ)},
		spatialmath.NewQuaternion(c.Float64(flagQW), c.Float64(flagQX), c.Float64(flagQY), c.Float64(flagQZ)),
	)
	if err := coll.SetFramePose(pose); err != nil {
		return err
	}
	if err := coll.SetMessageFromROS(msg); err != nil {
		// clusters that could not be enclosed are still drawn
		r.logger.Warnw("some clusters were rendered without an envelope", "error", err)
	}

	r.logger.Infow("rendered clusters", "frame", coll.FrameID(), "clusters", coll.Len(), "primitives", len(graph.Primitives()))
	return writeJSON(c, renderOutput{
		Frame:      coll.FrameID(),
		Clusters:   coll.Len(),
		Envelopes:  coll.Envelopes(),
		Primitives: graph.Primitives(),
	})
}

func (r *runner) loadClusterMessage(c *cli.Context) (*ros.ClusterMessage, error) {
	switch {
	case c.Path(flagMessage) != "" && c.Path(flagBag) != "":
		return nil, errors.Errorf("only one of --%s and --%s may be given", flagMessage, flagBag)
	case c.Path(flagMessage) != "":
		//nolint:gosec
		f, err := os.Open(c.Path(flagMessage))
		if err != nil {
			return nil, err
		}
		defer func() {
			//nolint:errcheck
			f.Close()
		}()
		return ros.DecodeClusterMessage(f)
	case c.Path(flagBag) != "":
		bag, err := ros.ReadBag(c.Path(flagBag))
		if err != nil {
			return nil, err
		}
		msgs, err := ros.TopicMessages[ros.ClusterMessage](bag, c.String(flagTopic))
		if err != nil {
			return nil, err
		}
		if len(msgs) == 0 {
			return nil, errors.Errorf("no messages on topic %s", c.String(flagTopic))
		}
		r.logger.Debugw("read cluster messages from bag", "topic", c.String(flagTopic), "count", len(msgs))
		return &msgs[len(msgs)-1].Data, nil
	default:
		return nil, errors.Errorf("one of --%s or --%s is required", flagMessage, flagBag)
	}
}

// loadConfig reads a display config file. An empty path gives the defaults.
func loadConfig(path string) (*cluster.Config, error) {
	if path == "" {
		return nil, nil
	}
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var attrs map[string]interface{}
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %s", path)
	}
	cfg, err := cluster.NewConfigFromAttributes(attrs)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate(path)
}

func (r *runner) generateAction(c *cli.Context) error {
	count := c.Int(flagCount)
	if count < 0 {
		return errors.Errorf("--%s must not be negative", flagCount)
	}
	//nolint:gosec
	rng := rand.New(rand.NewSource(c.Int64(flagSeed)))
	enc := json.NewEncoder(c.App.Writer)
	now := time.Now()
	for i := 0; i < count; i++ {
		msg := ros.RandomClusterMessage(rng, c.String(flagFrameID), i, now.Add(time.Duration(i)*time.Second))
		if err := enc.Encode(msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) partitionAction(c *cli.Context) error {
	//nolint:gosec
	data, err := os.ReadFile(c.Path(flagCloud))
	if err != nil {
		return err
	}
	var points []ros.Point
	if err := json.Unmarshal(data, &points); err != nil {
		return errors.Wrapf(err, "cannot parse cloud %s", c.Path(flagCloud))
	}
	msg, err := ros.PartitionCloud(
		lo.Map(points, func(p ros.Point, _ int) r3.Vector { return p.Vector() }),
		c.Int(flagK),
		c.String(flagFrameID),
	)
	if err != nil {
		return err
	}
	r.logger.Debugw("partitioned cloud", "points", len(points), "clusters", len(msg.Clusters))
	return writeJSON(c, msg)
}

func (r *runner) laserAction(c *cli.Context) error {
	//nolint:gosec
	f, err := os.Open(c.Path(flagScan))
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck
		f.Close()
	}()
	scan, err := ros.DecodeLaserScan(f)
	if err != nil {
		return err
	}
	markers, err := laserviz.ObstacleMarkers(scan, laserviz.Options{Stride: c.Int(flagStride)})
	if err != nil {
		return err
	}
	return writeJSON(c, markers)
}

func writeJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
