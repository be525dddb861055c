// Package main is the quinticwalk command line tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/legged-robots/quinticwalk/config"
	"github.com/legged-robots/quinticwalk/kinematics"
	"github.com/legged-robots/quinticwalk/simulator"
	"github.com/legged-robots/quinticwalk/trajectory"
	"github.com/legged-robots/quinticwalk/walknode"
)

const (
	flagConfig      = "config"
	flagDebug       = "debug"
	flagQuiet       = "quiet"
	flagDuration    = "duration"
	flagDt          = "dt"
	flagVX          = "vx"
	flagVY          = "vy"
	flagVYaw        = "vyaw"
	flagStopAt      = "stop-at"
	flagKickLeftAt  = "kick-left-at"
	flagKickRightAt = "kick-right-at"
	flagPauseAt     = "pause-at"
	flagOut         = "out"
	flagSegments    = "segments"
	flagPlot        = "plot"
	flagChannels    = "channels"
	flagRecord      = "record"
	flagWatch       = "watch"
)

func main() {
	var logger golog.Logger

	velocityFlags := []cli.Flag{
		&cli.Float64Flag{Name: flagVX, Usage: "forward velocity order, m/s"},
		&cli.Float64Flag{Name: flagVY, Usage: "lateral velocity order, m/s"},
		&cli.Float64Flag{Name: flagVYaw, Usage: "turn velocity order, rad/s"},
	}
	configFlag := &cli.StringFlag{
		Name:    flagConfig,
		Aliases: []string{"c"},
		Usage:   "load configuration from `FILE` (.json, .yaml); defaults are used when omitted",
	}

	app := &cli.App{
		Name:  "quinticwalk",
		Usage: "generate and run quintic spline walking gaits",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  flagQuiet,
				Usage: "disable logging",
			},
		},
		Before: func(c *cli.Context) error {
			switch {
			case c.Bool(flagQuiet):
				logger = zap.NewNop().Sugar()
			case c.Bool(flagDebug):
				logger = golog.NewDebugLogger("quinticwalk")
			default:
				logger = golog.NewLogger("quinticwalk")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "check a configuration file",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					path := c.String(flagConfig)
					if path == "" {
						return errors.New("--config is required")
					}
					if _, err := config.Read(path); err != nil {
						for _, e := range multierr.Errors(errors.Cause(err)) {
							fmt.Fprintln(c.App.ErrWriter, "  -", e)
						}
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s is valid\n", path)
					return nil
				},
			},
			{
				Name:  "simulate",
				Usage: "run the engine offline and export its trajectories",
				Flags: append([]cli.Flag{
					configFlag,
					&cli.DurationFlag{Name: flagDuration, Value: 5 * time.Second, Usage: "simulated time"},
					&cli.DurationFlag{Name: flagDt, Value: 10 * time.Millisecond, Usage: "engine time step"},
					&cli.DurationFlag{Name: flagStopAt, Usage: "drop the velocity orders to zero at this time"},
					&cli.DurationFlag{Name: flagKickLeftAt, Usage: "request a left kick at this time"},
					&cli.DurationFlag{Name: flagKickRightAt, Usage: "request a right kick at this time"},
					&cli.DurationFlag{Name: flagPauseAt, Usage: "request a pause at this time"},
					&cli.StringFlag{Name: flagOut, Usage: "write one csv row per tick to `FILE`"},
					&cli.StringFlag{Name: flagSegments, Usage: "write the final polynomials as json to `FILE`"},
					&cli.StringFlag{Name: flagPlot, Usage: "plot channels to `FILE` (.png, .svg)"},
					&cli.StringFlag{
						Name:  flagChannels,
						Value: "foot_pos_z,trunk_pos_y",
						Usage: "comma separated channels to plot",
					},
				}, velocityFlags...),
				Action: func(c *cli.Context) error {
					return simulateAction(c, logger)
				},
			},
			{
				Name:  "run",
				Usage: "run the walk node in real time",
				Flags: append([]cli.Flag{
					configFlag,
					&cli.DurationFlag{Name: flagDuration, Usage: "stop after this long; runs until interrupted when zero"},
					&cli.StringFlag{Name: flagRecord, Usage: "record every output as msgpack to `FILE`"},
					&cli.BoolFlag{Name: flagWatch, Value: true, Usage: "reload the config file when it changes"},
				}, velocityFlags...),
				Action: func(c *cli.Context) error {
					return runAction(c, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func readConfig(c *cli.Context) (*config.Config, error) {
	path := c.String(flagConfig)
	if path == "" {
		return config.Default(), nil
	}
	return config.Read(path)
}

func velocity(c *cli.Context) r3.Vector {
	return r3.Vector{X: c.Float64(flagVX), Y: c.Float64(flagVY), Z: c.Float64(flagVYaw)}
}

func simulateAction(c *cli.Context, logger golog.Logger) error {
	cfg, err := readConfig(c)
	if err != nil {
		return err
	}

	var channels []trajectory.Channel
	if c.String(flagPlot) != "" {
		for _, name := range strings.Split(c.String(flagChannels), ",") {
			ch, err := trajectory.ParseChannel(strings.TrimSpace(name))
			if err != nil {
				return err
			}
			channels = append(channels, ch)
		}
	}

	samples, engine, err := simulator.Run(logger.Named("engine"), simulator.Options{
		Params:      cfg.Walking,
		Duration:    c.Duration(flagDuration),
		Dt:          c.Duration(flagDt),
		Velocity:    velocity(c),
		StopAt:      c.Duration(flagStopAt),
		KickLeftAt:  c.Duration(flagKickLeftAt),
		KickRightAt: c.Duration(flagKickRightAt),
		PauseAt:     c.Duration(flagPauseAt),
	})
	if err != nil {
		return err
	}

	if path := c.String(flagOut); path != "" {
		if err := writeFile(path, func(f *os.File) error { return simulator.WriteCSV(f, samples) }); err != nil {
			return err
		}
	}
	if path := c.String(flagSegments); path != "" {
		if err := writeFile(path, func(f *os.File) error { return simulator.WriteSegments(f, engine.Trajectories()) }); err != nil {
			return err
		}
	}
	if path := c.String(flagPlot); path != "" {
		if err := simulator.Plot(samples, channels, path); err != nil {
			return err
		}
	}

	summary, err := simulator.Summarize(samples)
	if err != nil {
		return err
	}
	return summary.Write(c.App.Writer)
}

func writeFile(path string, write func(f *os.File) error) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return write(f)
}

func runAction(c *cli.Context, logger golog.Logger) (err error) {
	cfg, err := readConfig(c)
	if err != nil {
		return err
	}
	solver, err := kinematics.NewLegSolver(cfg.Legs)
	if err != nil {
		return err
	}

	var sink walknode.Sink = walknode.LogSink{Logger: logger.Named("output")}
	if path := c.String(flagRecord); path != "" {
		//nolint:gosec
		f, createErr := os.Create(path)
		if createErr != nil {
			return errors.Wrapf(createErr, "cannot create %q", path)
		}
		recorder := walknode.NewRecorderSink(f)
		defer func() {
			err = multierr.Combine(err, recorder.Close())
		}()
		sink = recorder
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := c.Duration(flagDuration); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	node, err := walknode.NewNode(logger.Named("node"), cfg, solver, sink, nil)
	if err != nil {
		return err
	}
	node.SetVelocity(velocity(c))

	if path := c.String(flagConfig); path != "" && c.Bool(flagWatch) {
		watcher, watchErr := config.Watch(ctx, logger.Named("config"), path, func(newCfg *config.Config) {
			if err := node.Reconfigure(newCfg); err != nil {
				logger.Errorw("cannot reconfigure node", "error", err)
			}
		})
		if watchErr != nil {
			return watchErr
		}
		defer func() {
			err = multierr.Combine(err, watcher.Close())
		}()
	}

	if err := node.Start(ctx); err != nil {
		return err
	}
	logger.Infow("walking", "velocity", node.Velocity())
	<-ctx.Done()
	node.Stop()
	logger.Info("stopped")
	return nil
}
