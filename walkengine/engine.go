// Package walkengine generates the trunk and flying foot trajectories of an
// open loop holonomic walk. Every half-cycle is a set of quintic splines
// expressed in the support foot frame and stitched to the previous half-cycle
// with continuous position, velocity and acceleration.
//
// An Engine is not safe for concurrent use. It is meant to be driven from a
// single control loop calling UpdateState then ComputeCartesianPosition once
// per tick.
package walkengine

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/legged-robots/quinticwalk/footstep"
	"github.com/legged-robots/quinticwalk/spatialmath"
	"github.com/legged-robots/quinticwalk/trajectory"
)

const (
	// zero time steps advance by this much instead
	minTimeStep = 1e-4
	// longest accepted tick, in full cycles
	maxTickCycles = 0.25
)

// Engine is the quintic walk engine.
type Engine struct {
	logger golog.Logger

	params  WalkingParameter
	pending *WalkingParameter

	state    State
	footstep *footstep.Footstep

	phase      float64
	lastPhase  float64
	timePaused float64
	// trajectory time at which the last half-cycle ended, held while paused
	boundaryTime float64

	leftKickRequested  bool
	rightKickRequested bool
	pauseRequested     bool
	endStepRequested   bool

	// trunk state at the start of the current half-cycle
	trunkPosAtLast     r3.Vector
	trunkVelAtLast     r3.Vector
	trunkAccAtLast     r3.Vector
	trunkAxisPosAtLast r3.Vector
	trunkAxisVelAtLast r3.Vector
	trunkAxisAccAtLast r3.Vector

	trajs               trajectory.Set
	doubleSupportLength float64

	rebuilds   uint64
	trunkJumps [NumTrunkChannels]Jump
}

// NumTrunkChannels is the number of trunk channels, TrunkPosX to TrunkAxisZ.
const NumTrunkChannels = 6

// Jump is the absolute gap between the trunk state a half-cycle was built
// from and the start of its trajectories, per channel.
type Jump struct {
	Pos float64
	Vel float64
}

// NewEngine returns an idle engine. It panics if params are invalid.
func NewEngine(logger golog.Logger, params WalkingParameter) *Engine {
	if err := params.Validate(); err != nil {
		panic(errors.Wrap(err, "invalid walking parameters"))
	}
	e := &Engine{
		logger:   logger,
		params:   params,
		footstep: footstep.New(params.FootDistance, true),
	}
	e.Reset()
	return e
}

// CartesianTarget is the trunk and flying foot pose wanted at one instant, in
// the support foot frame. Orientations are axis-angle vectors.
type CartesianTarget struct {
	TrunkPos      r3.Vector
	TrunkAxis     r3.Vector
	FootPos       r3.Vector
	FootAxis      r3.Vector
	IsLeftSupport bool
}

// TrunkOrientation returns the trunk orientation as a unit quaternion.
func (c CartesianTarget) TrunkOrientation() quat.Number {
	return spatialmath.AxisToQuat(c.TrunkAxis)
}

// FootOrientation returns the flying foot orientation as a unit quaternion.
func (c CartesianTarget) FootOrientation() quat.Number {
	return spatialmath.AxisToQuat(c.FootAxis)
}

// State returns the current engine state.
func (e *Engine) State() State {
	return e.state
}

// GetPhase returns the progress through the current half-cycle, in [0, 1).
func (e *Engine) GetPhase() float64 {
	return e.phase
}

// LastPhase returns the phase before the last half-cycle advance. A phase
// lower than LastPhase means a new half-cycle started.
func (e *Engine) LastPhase() float64 {
	return e.lastPhase
}

// GetTrajsTime returns the time at which the current trajectories are
// evaluated, between 0 and a half period. While paused it stays at the end of
// the half-cycle the pause interrupted.
func (e *Engine) GetTrajsTime() float64 {
	if e.state == StatePaused {
		return e.boundaryTime
	}
	return e.phase * e.params.HalfPeriod()
}

// IsLeftSupport is true when the trajectories are expressed in the left foot frame.
func (e *Engine) IsLeftSupport() bool {
	return e.footstep.IsLeftSupport()
}

// IsDoubleSupport is true while both feet are on the ground.
func (e *Engine) IsDoubleSupport() bool {
	if !e.state.stepping() {
		return true
	}
	return e.GetTrajsTime() < e.doubleSupportLength
}

// Footstep returns a copy of the current footstep bookkeeping.
func (e *Engine) Footstep() footstep.Footstep {
	return *e.footstep
}

// Parameters returns the parameters the current half-cycle was built with.
func (e *Engine) Parameters() WalkingParameter {
	return e.params
}

// Trajectories returns the current half-cycle. The set is rebuilt in place on
// the next half-cycle boundary and must not be modified by callers.
func (e *Engine) Trajectories() *trajectory.Set {
	return &e.trajs
}

// Rebuilds counts the half-cycles built since the engine was created.
func (e *Engine) Rebuilds() uint64 {
	return e.rebuilds
}

// TrunkJumps returns the gaps measured by the last rebuild, in channel order
// from TrunkPosX.
func (e *Engine) TrunkJumps() [NumTrunkChannels]Jump {
	return e.trunkJumps
}

// SetParameters queues params to be used from the next half-cycle boundary or
// reset on. It panics if params are invalid.
func (e *Engine) SetParameters(params WalkingParameter) {
	if err := params.Validate(); err != nil {
		panic(errors.Wrap(err, "invalid walking parameters"))
	}
	e.pending = &params
}

// RequestKick asks for the next step of the given foot to be a kick. The
// request stays pending until that foot flies out of a walking step or the
// engine stops.
func (e *Engine) RequestKick(left bool) {
	if left {
		e.leftKickRequested = true
	} else {
		e.rightKickRequested = true
	}
}

// RequestPause asks for a pause at the next walking half-cycle boundary.
// Requesting again before it is taken has no further effect; requesting while
// paused extends the pause by one more pause duration.
func (e *Engine) RequestPause() {
	e.pauseRequested = true
}

// EndStep ends the current half-cycle on the next UpdateState call, e.g. when
// the flying foot touches the ground early. It is ignored while idle or paused.
func (e *Engine) EndStep() {
	if e.state == StateIdle || e.state == StatePaused {
		return
	}
	e.endStepRequested = true
}

// Reset stops the walk immediately, whatever the engine is doing, and returns
// to the neutral stance on the left foot.
func (e *Engine) Reset() {
	e.applyPendingParameters()
	e.transition(StateIdle)
	e.phase = 0
	e.lastPhase = 0
	e.timePaused = 0
	e.boundaryTime = 0
	e.leftKickRequested = false
	e.rightKickRequested = false
	e.pauseRequested = false
	e.endStepRequested = false
	e.footstep.Reset(true)
	e.resetTrunkLastState()
	e.buildStance(e.restingFootState())
}

// UpdateState advances the walk by dt seconds under the given velocity orders
// (x forward, y lateral in m/s, z turn in rad/s) and rebuilds the trajectories
// when a half-cycle ends. walkable is false when the last target could not be
// reached, in which case no new step is started. It returns false while the
// engine is idle or paused, and for ticks it ignores.
func (e *Engine) UpdateState(dt float64, orders r3.Vector, walkable bool) bool {
	if dt == 0 {
		dt = minTimeStep
	}
	if dt < 0 || dt > maxTickCycles/e.params.Freq {
		e.logger.Warnw("ignoring tick with out of range time step", "dt", dt, "max", maxTickCycles/e.params.Freq)
		return false
	}

	switch e.state {
	case StateIdle:
		e.endStepRequested = false
		if !walkable || isZero(orders) {
			return false
		}
		e.boundaryTime = e.GetTrajsTime()
		e.buildStartTrajectories()
		e.phase = 0
		e.transition(StateStartMovement)
	case StatePaused:
		e.timePaused += dt
		if e.timePaused <= e.params.PauseDuration {
			return false
		}
		e.timePaused = 0
		if e.pauseRequested {
			e.pauseRequested = false
			return false
		}
		e.transition(StateWalking)
		e.endHalfCycle(orders, walkable)
		return e.state != StatePaused
	case StateStartMovement, StateStartStep, StateWalking, StateKick, StateStopStep, StateStopMovement:
	default:
		panic(errors.Errorf("unknown walk engine state %d", int(e.state)))
	}

	if !e.advancePhase(dt) {
		return true
	}
	e.endHalfCycle(orders, walkable)
	return e.state != StateIdle && e.state != StatePaused
}

// advancePhase integrates the phase and reports whether the half-cycle ended.
func (e *Engine) advancePhase(dt float64) bool {
	e.lastPhase = e.phase
	hp := e.params.HalfPeriod()
	next := e.phase + dt*2*e.params.Freq
	if e.endStepRequested {
		e.endStepRequested = false
		e.boundaryTime = math.Min(next, 1) * hp
		e.phase = 0
		return true
	}
	if next < 1 {
		e.phase = next
		return false
	}
	e.boundaryTime = hp
	e.phase = math.Mod(next, 1)
	return true
}

// endHalfCycle picks and builds the next half-cycle.
func (e *Engine) endHalfCycle(orders r3.Vector, walkable bool) {
	switch e.state {
	case StateStartMovement:
		if !walkable || isZero(orders) {
			e.buildStopMovementTrajectories()
			e.transition(StateStopMovement)
			return
		}
		e.buildStartStepTrajectories(orders)
		e.transition(StateStartStep)
	case StateStartStep, StateWalking, StateKick, StateStopStep:
		switch {
		case !walkable:
			e.buildWalkDisableTrajectories()
			e.transition(StateStopMovement)
		case e.pauseRequested && (e.state == StateWalking || e.state == StateKick):
			e.pauseRequested = false
			e.timePaused = 0
			e.phase = 0
			e.transition(StatePaused)
		case e.state == StateWalking && e.takeKickRequest():
			e.buildKickTrajectories(orders)
			e.transition(StateKick)
		case isZero(orders) && e.state == StateStopStep:
			e.buildStopMovementTrajectories()
			e.transition(StateStopMovement)
		case isZero(orders):
			e.buildStopStepTrajectories()
			e.transition(StateStopStep)
		default:
			e.buildNormalTrajectories(orders)
			e.transition(StateWalking)
		}
	case StateStopMovement:
		e.buildWalkDisableTrajectories()
		e.phase = 0
		e.leftKickRequested = false
		e.rightKickRequested = false
		e.pauseRequested = false
		e.transition(StateIdle)
	case StateIdle, StatePaused:
		panic(errors.Errorf("no half-cycle to end in state %s", e.state))
	default:
		panic(errors.Errorf("unknown walk engine state %d", int(e.state)))
	}
}

// takeKickRequest consumes the kick request of the foot that flies next, if any.
func (e *Engine) takeKickRequest() bool {
	// the current support foot flies in the next half-cycle
	if e.footstep.IsLeftSupport() && e.leftKickRequested {
		e.leftKickRequested = false
		return true
	}
	if !e.footstep.IsLeftSupport() && e.rightKickRequested {
		e.rightKickRequested = false
		return true
	}
	return false
}

func (e *Engine) transition(to State) {
	if e.state == to {
		return
	}
	e.logger.Debugw("state transition", "from", e.state, "to", to)
	e.state = to
}

func (e *Engine) applyPendingParameters() {
	if e.pending == nil {
		return
	}
	e.params = *e.pending
	e.pending = nil
	e.footstep.SetFootDistance(e.params.FootDistance)
	e.logger.Infow("walking parameters applied", "freq", e.params.Freq, "double_support_ratio", e.params.DoubleSupportRatio)
}

// ComputeCartesianPosition evaluates the current trajectories at GetTrajsTime.
func (e *Engine) ComputeCartesianPosition() CartesianTarget {
	return e.ComputeCartesianPositionAtTime(e.GetTrajsTime())
}

// ComputeCartesianPositionAtTime evaluates the current trajectories at t.
func (e *Engine) ComputeCartesianPositionAtTime(t float64) CartesianTarget {
	v := e.trajs.Sample(t)
	return CartesianTarget{
		TrunkPos:      r3.Vector{X: v[trajectory.TrunkPosX], Y: v[trajectory.TrunkPosY], Z: v[trajectory.TrunkPosZ]},
		TrunkAxis:     r3.Vector{X: v[trajectory.TrunkAxisX], Y: v[trajectory.TrunkAxisY], Z: v[trajectory.TrunkAxisZ]},
		FootPos:       r3.Vector{X: v[trajectory.FootPosX], Y: v[trajectory.FootPosY], Z: v[trajectory.FootPosZ]},
		FootAxis:      r3.Vector{X: v[trajectory.FootAxisX], Y: v[trajectory.FootAxisY], Z: v[trajectory.FootAxisZ]},
		IsLeftSupport: e.footstep.IsLeftSupport(),
	}
}

// saveCurrentTrunkState stores the trunk state at the end of the current
// half-cycle, expressed in frame, the support foot of the next half-cycle
// given in the current support foot frame.
func (e *Engine) saveCurrentTrunkState(frame spatialmath.Pose2D) {
	t := e.boundaryTime
	pos, vel, acc := e.evaluateVector(trajectory.TrunkPosX, t)
	axisPos, axisVel, axisAcc := e.evaluateVector(trajectory.TrunkAxisX, t)

	x, y := frame.Transform(pos.X, pos.Y)
	rot := spatialmath.YawQuat(-frame.Theta)
	e.trunkPosAtLast = r3.Vector{X: x, Y: y, Z: pos.Z}
	e.trunkVelAtLast = spatialmath.RotateVector(rot, vel)
	e.trunkAccAtLast = spatialmath.RotateVector(rot, acc)
	e.trunkAxisPosAtLast = spatialmath.QuatToAxis(quat.Mul(rot, spatialmath.AxisToQuat(axisPos)))
	e.trunkAxisVelAtLast = spatialmath.RotateVector(rot, axisVel)
	e.trunkAxisAccAtLast = spatialmath.RotateVector(rot, axisAcc)
}

// resetTrunkLastState puts the trunk at rest between both feet.
func (e *Engine) resetTrunkLastState() {
	next := e.footstep.Next()
	e.trunkPosAtLast = r3.Vector{
		X: e.params.TrunkXOffset,
		Y: 0.5*next.Y + e.params.TrunkYOffset,
		Z: e.params.TrunkHeight,
	}
	e.trunkVelAtLast = r3.Vector{}
	e.trunkAccAtLast = r3.Vector{}
	e.trunkAxisPosAtLast = spatialmath.EulerYawPitchRollToAxis(0, e.params.TrunkPitch, 0)
	e.trunkAxisVelAtLast = r3.Vector{}
	e.trunkAxisAccAtLast = r3.Vector{}
}

// evaluateVector evaluates three consecutive channels starting at first.
func (e *Engine) evaluateVector(first trajectory.Channel, t float64) (pos, vel, acc r3.Vector) {
	pos.X, vel.X, acc.X = e.trajs.Evaluate(first, t)
	pos.Y, vel.Y, acc.Y = e.trajs.Evaluate(first+1, t)
	pos.Z, vel.Z, acc.Z = e.trajs.Evaluate(first+2, t)
	return pos, vel, acc
}

func isZero(orders r3.Vector) bool {
	return orders == r3.Vector{}
}
