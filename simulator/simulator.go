// Package simulator drives a walk engine offline under a scripted sequence of
// orders and exports what it produced.
package simulator

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/legged-robots/quinticwalk/trajectory"
	"github.com/legged-robots/quinticwalk/walkengine"
)

// Options describes one simulation. Event times of zero never fire.
type Options struct {
	Params   walkengine.WalkingParameter
	Duration time.Duration
	Dt       time.Duration
	Velocity r3.Vector
	// velocity orders drop to zero from StopAt on
	StopAt      time.Duration
	KickLeftAt  time.Duration
	KickRightAt time.Duration
	PauseAt     time.Duration
}

// Sample is the engine output after one tick.
type Sample struct {
	Time          float64
	State         walkengine.State
	Phase         float64
	IsLeftSupport bool
	Pos           [trajectory.NumChannels]float64
	Vel           [trajectory.NumChannels]float64
	Acc           [trajectory.NumChannels]float64
	// set when the tick started a new half-cycle
	Rebuilt    bool
	TrunkJumps [walkengine.NumTrunkChannels]walkengine.Jump
}

// Run ticks a fresh engine for opts.Duration and returns one sample per tick.
// The engine is returned too so its final trajectories can be exported.
func Run(logger golog.Logger, opts Options) ([]Sample, *walkengine.Engine, error) {
	if opts.Dt <= 0 {
		return nil, nil, errors.Errorf("time step must be > 0, got %v", opts.Dt)
	}
	if opts.Duration < opts.Dt {
		return nil, nil, errors.Errorf("duration %v is shorter than one time step", opts.Duration)
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid walking parameters")
	}

	engine := walkengine.NewEngine(logger, opts.Params)
	dt := opts.Dt.Seconds()
	ticks := int(opts.Duration / opts.Dt)
	samples := make([]Sample, 0, ticks)
	for i := 1; i <= ticks; i++ {
		now := time.Duration(i) * opts.Dt
		prev := now - opts.Dt
		crossed := func(at time.Duration) bool {
			return at > 0 && prev < at && at <= now
		}
		if crossed(opts.KickLeftAt) {
			engine.RequestKick(true)
		}
		if crossed(opts.KickRightAt) {
			engine.RequestKick(false)
		}
		if crossed(opts.PauseAt) {
			engine.RequestPause()
		}
		orders := opts.Velocity
		if opts.StopAt > 0 && now >= opts.StopAt {
			orders = r3.Vector{}
		}

		rebuilds := engine.Rebuilds()
		engine.UpdateState(dt, orders, true)
		s := sample(engine, now.Seconds())
		if engine.Rebuilds() != rebuilds {
			s.Rebuilt = true
			s.TrunkJumps = engine.TrunkJumps()
		}
		samples = append(samples, s)
	}
	return samples, engine, nil
}

func sample(engine *walkengine.Engine, now float64) Sample {
	s := Sample{
		Time:          now,
		State:         engine.State(),
		Phase:         engine.GetPhase(),
		IsLeftSupport: engine.IsLeftSupport(),
	}
	t := engine.GetTrajsTime()
	trajs := engine.Trajectories()
	for _, ch := range trajectory.Channels() {
		s.Pos[ch], s.Vel[ch], s.Acc[ch] = trajs.Evaluate(ch, t)
	}
	return s
}
