// Package main is the clusterviz command line tool. It renders cluster messages into scene
// primitives and produces the messages it consumes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"go.viam.com/clusterviz/logging"
)

const (
	// Flags.
	flagDebug   = "debug"
	flagMessage = "message"
	flagBag     = "bag"
	flagTopic   = "topic"
	flagConfig  = "config"
	flagX       = "x"
	flagY       = "y"
	flagZ       = "z"
	flagQW      = "qw"
	flagQX      = "qx"
	flagQY      = "qy"
	flagQZ      = "qz"
	flagSeed    = "seed"
	flagCount   = "count"
	flagFrameID = "frame-id"
	flagCloud   = "cloud"
	flagK       = "k"
	flagScan    = "scan"
	flagStride  = "stride"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runner carries state shared by every subcommand.
type runner struct {
	logger logging.Logger
}

func newApp(out io.Writer) *cli.App {
	r := &runner{logger: logging.NewBlankLogger("clusterviz")}
	poseFlags := []cli.Flag{
		&cli.Float64Flag{Name: flagX, Usage: "frame position x in meters"},
		&cli.Float64Flag{Name: flagY, Usage: "frame position y in meters"},
		&cli.Float64Flag{Name: flagZ, Usage: "frame position z in meters"},
		&cli.Float64Flag{Name: flagQW, Value: 1, Usage: "frame orientation quaternion w"},
		&cli.Float64Flag{Name: flagQX, Usage: "frame orientation quaternion x"},
		&cli.Float64Flag{Name: flagQY, Usage: "frame orientation quaternion y"},
		&cli.Float64Flag{Name: flagQZ, Usage: "frame orientation quaternion z"},
	}

	return &cli.App{
		Name:      "clusterviz",
		Usage:     "render point clusters and their enclosing spheres",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			r.logger = logging.NewLogger("clusterviz")
			if c.Bool(flagDebug) {
				r.logger.SetLevel(zapcore.DebugLevel)
			}
			logging.ReplaceGlobal(r.logger)
			r.logger.Debugw("starting", "command", c.Args().First(), "level", r.logger.GetLevel())
			return nil
		},
		After: func(c *cli.Context) error {
			//nolint:errcheck
			r.logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "render a cluster message into scene primitives",
				UsageText: "clusterviz render (--message FILE | --bag FILE --topic TOPIC) [pose flags] [--config FILE]",
				Flags: append([]cli.Flag{
					&cli.PathFlag{Name: flagMessage, Usage: "cluster message `FILE` (JSON)"},
					&cli.PathFlag{Name: flagBag, Usage: "rosbag `FILE`; the last message of --topic is rendered"},
					&cli.StringFlag{Name: flagTopic, Value: "clusters", Usage: "topic to read from --bag"},
					&cli.PathFlag{Name: flagConfig, Usage: "display config `FILE` (JSON)"},
				}, poseFlags...),
				Action: r.renderAction,
			},
			{
				Name:  "generate",
				Usage: "emit random cluster messages, one JSON document per line",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: flagSeed, Value: 1, Usage: "random seed"},
					&cli.IntFlag{Name: flagCount, Value: 1, Usage: "number of messages"},
					&cli.StringFlag{Name: flagFrameID, Value: "/base_link", Usage: "frame of the messages"},
				},
				Action: r.generateAction,
			},
			{
				Name:  "partition",
				Usage: "group a raw point cloud into a cluster message with k-means",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: flagCloud, Required: true, Usage: "JSON array of points `FILE`"},
					&cli.IntFlag{Name: flagK, Value: 3, Usage: "number of clusters"},
					&cli.StringFlag{Name: flagFrameID, Value: "/base_link", Usage: "frame of the message"},
				},
				Action: r.partitionAction,
			},
			{
				Name:  "laser",
				Usage: "turn a laser scan into obstacle markers",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: flagScan, Required: true, Usage: "laser scan `FILE` (JSON)"},
					&cli.IntFlag{Name: flagStride, Value: 10, Usage: "use every Nth ray"},
				},
				Action: r.laserAction,
			},
		},
	}
}
