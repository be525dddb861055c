// Package walknode hosts a walk engine in a fixed rate control loop, feeding
// its cartesian targets to a kinematics solver and publishing the result.
package walknode

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/legged-robots/quinticwalk/config"
	"github.com/legged-robots/quinticwalk/kinematics"
	"github.com/legged-robots/quinticwalk/walkengine"
)

// commands holds everything requested since the last tick.
type commands struct {
	kick        *bool
	pause       bool
	fallen      bool
	contactLeft *bool
	cfg         *config.Config
}

// Node drives a walkengine.Engine. Commands may be sent from any goroutine
// and are applied at the next tick.
type Node struct {
	logger golog.Logger
	clk    clock.Clock
	engine *walkengine.Engine
	solver kinematics.Solver
	sink   Sink

	mu       sync.Mutex
	cfg      *config.Config
	velocity r3.Vector
	pending  commands
	// walkable goes false for one tick after the solver fails
	walkable bool
	seq      uint64
	running  bool
	ticker   *clock.Ticker

	activeBackgroundWorkers sync.WaitGroup
	cancel                  context.CancelFunc
}

// NewNode returns a stopped node. clk may be nil for the wall clock.
func NewNode(logger golog.Logger, cfg *config.Config, solver kinematics.Solver, sink Sink, clk clock.Clock) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid node config")
	}
	if clk == nil {
		clk = clock.New()
	}
	if sink == nil {
		sink = LogSink{Logger: logger}
	}
	return &Node{
		logger:   logger,
		clk:      clk,
		engine:   walkengine.NewEngine(logger.Named("engine"), cfg.Walking),
		solver:   solver,
		sink:     sink,
		cfg:      cfg,
		walkable: true,
	}, nil
}

// Start ticks the engine at the configured rate until Stop is called or ctx
// is done.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return errors.New("node already started")
	}
	n.running = true
	cancelCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.ticker = n.clk.Ticker(period(n.cfg))

	n.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		last := n.clk.Now()
		for {
			select {
			case <-cancelCtx.Done():
				return
			case now := <-n.ticker.C:
				dt := now.Sub(last).Seconds()
				last = now
				if _, err := n.Tick(cancelCtx, dt); err != nil && cancelCtx.Err() == nil {
					n.logger.Errorw("walk tick failed", "error", err)
				}
			}
		}
	}, n.activeBackgroundWorkers.Done)
	return nil
}

// Stop halts the control loop and waits for it to exit.
func (n *Node) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	n.cancel()
	n.ticker.Stop()
	n.mu.Unlock()
	n.activeBackgroundWorkers.Wait()
}

// SetVelocity sets the velocity orders (x, y forward and lateral m/s, z yaw
// rad/s), clamped to the configured limits.
func (n *Node) SetVelocity(v r3.Vector) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.velocity = clampVelocity(v, n.cfg.MaxVelocity)
}

// Velocity returns the current, clamped, velocity orders.
func (n *Node) Velocity() r3.Vector {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.velocity
}

// Kick requests a kick with the left or right foot.
func (n *Node) Kick(left bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending.kick = &left
}

// Pause requests a pause at the next half-cycle boundary.
func (n *Node) Pause() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending.pause = true
}

// FootContact reports that a foot touched the ground.
func (n *Node) FootContact(left bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending.contactLeft = &left
}

// Fallen resets the engine to its resting stance.
func (n *Node) Fallen() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending.fallen = true
}

// Reconfigure validates cfg and hands it to the engine between ticks. The
// walking parameters only take effect at the next half-cycle boundary.
func (n *Node) Reconfigure(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid node config")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if cfg.Legs != n.cfg.Legs {
		n.logger.Warn("leg dimension changes are ignored until restart")
	}
	n.pending.cfg = cfg
	return nil
}

// Engine exposes the hosted engine. It must not be used while the node runs.
func (n *Node) Engine() *walkengine.Engine {
	return n.engine
}

// Tick advances the engine by dt seconds and publishes its output.
func (n *Node) Tick(ctx context.Context, dt float64) (Output, error) {
	n.mu.Lock()
	cmds := n.pending
	n.pending = commands{}
	if cmds.cfg != nil {
		if n.ticker != nil && cmds.cfg.EngineFrequency != n.cfg.EngineFrequency {
			n.ticker.Reset(period(cmds.cfg))
		}
		n.cfg = cmds.cfg
		n.velocity = clampVelocity(n.velocity, n.cfg.MaxVelocity)
	}
	cfg := n.cfg
	orders := n.velocity
	walkable := n.walkable
	n.seq++
	seq := n.seq
	n.mu.Unlock()

	if cmds.fallen {
		n.logger.Info("fall detected, resetting engine")
		n.engine.Reset()
	}
	if cmds.cfg != nil {
		n.engine.SetParameters(cfg.Walking)
	}
	if cmds.kick != nil {
		n.engine.RequestKick(*cmds.kick)
	}
	if cmds.pause {
		n.engine.RequestPause()
	}
	if cmds.contactLeft != nil && cfg.PhaseReset {
		flyingIsLeft := !n.engine.IsLeftSupport()
		if *cmds.contactLeft == flyingIsLeft && n.engine.GetPhase() > cfg.PhaseResetPhase {
			n.logger.Debugw("phase reset", "phase", n.engine.GetPhase())
			n.engine.EndStep()
		}
	}

	moving := n.engine.UpdateState(dt, orders, walkable)
	target := n.engine.ComputeCartesianPosition()
	out := Output{
		Seq:             seq,
		Stamp:           n.clk.Now(),
		State:           n.engine.State().String(),
		Phase:           n.engine.GetPhase(),
		TrajsTime:       n.engine.GetTrajsTime(),
		Moving:          moving,
		IsLeftSupport:   target.IsLeftSupport,
		IsDoubleSupport: n.engine.IsDoubleSupport(),
		TrunkPos:        target.TrunkPos,
		TrunkAxis:       target.TrunkAxis,
		FootPos:         target.FootPos,
		FootAxis:        target.FootAxis,
	}

	joints, err := n.solver.Solve(ctx, kinematics.Goal{
		TrunkPos:         target.TrunkPos,
		TrunkOrientation: target.TrunkOrientation(),
		FootPos:          target.FootPos,
		FootOrientation:  target.FootOrientation(),
		IsLeftSupport:    target.IsLeftSupport,
	})
	switch {
	case err == nil:
		out.Joints = joints
	case errors.Is(err, kinematics.ErrUnreachable):
		n.logger.Debugw("walk target unreachable", "state", out.State, "error", err)
		out.Unreachable = true
	default:
		return out, errors.Wrap(err, "cannot solve walk target")
	}
	n.mu.Lock()
	n.walkable = !out.Unreachable
	n.mu.Unlock()

	if err := n.sink.Publish(ctx, out); err != nil {
		return out, errors.Wrap(err, "cannot publish walk output")
	}
	return out, nil
}

func period(cfg *config.Config) time.Duration {
	return time.Duration(float64(time.Second) / cfg.EngineFrequency)
}

func clampVelocity(v r3.Vector, limits config.VelocityLimits) r3.Vector {
	clamp := func(x, limit float64) float64 {
		return math.Max(-limit, math.Min(limit, x))
	}
	return r3.Vector{X: clamp(v.X, limits.X), Y: clamp(v.Y, limits.Y), Z: clamp(v.Z, limits.Yaw)}
}
