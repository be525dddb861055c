package walkengine

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/legged-robots/quinticwalk/spatialmath"
	"github.com/legged-robots/quinticwalk/splines"
	"github.com/legged-robots/quinticwalk/trajectory"
)

// footChannels lists the flying foot channels in r3 order, position first.
var footChannels = [6]trajectory.Channel{
	trajectory.FootPosX, trajectory.FootPosY, trajectory.FootPosZ,
	trajectory.FootAxisX, trajectory.FootAxisY, trajectory.FootAxisZ,
}

func (e *Engine) buildNormalTrajectories(orders r3.Vector) {
	e.buildTrajectories(orders, false, false, false)
}

func (e *Engine) buildKickTrajectories(orders r3.Vector) {
	e.buildTrajectories(orders, false, false, true)
}

// buildStartTrajectories only moves the trunk over the foot that supports the
// first step. Both feet stay where they are.
func (e *Engine) buildStartTrajectories() {
	e.buildTrajectories(r3.Vector{}, true, false, false)
}

func (e *Engine) buildStartStepTrajectories(orders r3.Vector) {
	e.buildTrajectories(orders, false, true, false)
}

// buildStopStepTrajectories brings the flying foot back to the neutral stance.
func (e *Engine) buildStopStepTrajectories() {
	e.buildTrajectories(r3.Vector{}, false, false, false)
}

// buildStopMovementTrajectories centers the trunk between both feet.
func (e *Engine) buildStopMovementTrajectories() {
	e.buildWalkDisableTrajectories()
}

// buildTrajectories builds a half-cycle moving the current support foot to the
// pose given by orders, relative to the current flying foot, which becomes
// the new support foot.
func (e *Engine) buildTrajectories(orders r3.Vector, startMovement, startStep, kickStep bool) {
	e.saveCurrentTrunkState(e.footstep.Next())
	e.applyPendingParameters()

	p := e.params
	halfPeriod := p.HalfPeriod()
	period := 2 * halfPeriod
	if startMovement {
		// the flying foot stays where it is
		e.footstep.StepFromSupport(e.footstep.Next().Inverse())
	} else {
		e.footstep.StepFromVelocity(orders, halfPeriod)
	}
	last, next := e.footstep.Last(), e.footstep.Next()

	doubleSupportLength := p.DoubleSupportRatio * halfPeriod
	singleSupportLength := halfPeriod - doubleSupportLength
	// the trunk oscillation is timed from the regular support lengths even
	// when the start movement stretches double support over the half-cycle
	timeShift := -0.5*halfPeriod + 0.5*doubleSupportLength + p.TrunkPhase*halfPeriod
	if startMovement {
		doubleSupportLength = halfPeriod
		singleSupportLength = 0
	}
	e.doubleSupportLength = doubleSupportLength

	s := &e.trajs
	s.Reset()

	putDownTime := doubleSupportLength + singleSupportLength*p.FootPutDownPhase
	overshootTime := doubleSupportLength + singleSupportLength*p.FootPutDownPhase*p.FootOvershootPhase

	s.AddPoint(trajectory.FootPosX, 0, last.X, 0, 0)
	s.AddPoint(trajectory.FootPosX, doubleSupportLength, last.X, 0, 0)
	if kickStep {
		s.AddPoint(trajectory.FootPosX, doubleSupportLength+singleSupportLength*p.KickPhase,
			next.X+p.KickLength, p.KickVel, 0)
	} else {
		s.AddPoint(trajectory.FootPosX, overshootTime, next.X+(next.X-last.X)*p.FootOvershootRatio, 0, 0)
	}
	s.AddPoint(trajectory.FootPosX, putDownTime, next.X, 0, 0)
	s.AddPoint(trajectory.FootPosX, halfPeriod, next.X, 0, 0)

	s.AddPoint(trajectory.FootPosY, 0, last.Y, 0, 0)
	s.AddPoint(trajectory.FootPosY, doubleSupportLength, last.Y, 0, 0)
	s.AddPoint(trajectory.FootPosY, overshootTime, next.Y+(next.Y-last.Y)*p.FootOvershootRatio, 0, 0)
	s.AddPoint(trajectory.FootPosY, putDownTime, next.Y, 0, 0)
	s.AddPoint(trajectory.FootPosY, halfPeriod, next.Y, 0, 0)

	apexTime := doubleSupportLength + singleSupportLength*p.FootApexPhase
	zPause := 0.5 * p.FootZPause * singleSupportLength
	s.AddPoint(trajectory.FootPosZ, 0, 0, 0, 0)
	s.AddPoint(trajectory.FootPosZ, doubleSupportLength, 0, 0, 0)
	s.AddPoint(trajectory.FootPosZ, apexTime-zPause, p.FootRise, 0, 0)
	s.AddPoint(trajectory.FootPosZ, apexTime+zPause, p.FootRise, 0, 0)
	s.AddPoint(trajectory.FootPosZ, putDownTime, p.FootPutDownZOffset, 0, 0)
	s.AddPoint(trajectory.FootPosZ, halfPeriod, 0, 0, 0)

	// roll the landing foot outwards
	rollSign := -1.0
	if e.footstep.IsLeftSupport() {
		rollSign = 1
	}
	s.AddPoint(trajectory.FootAxisX, 0, 0, 0, 0)
	s.AddPoint(trajectory.FootAxisX, doubleSupportLength+0.1*singleSupportLength, 0, 0, 0)
	s.AddPoint(trajectory.FootAxisX, putDownTime, rollSign*p.FootPutDownRollOffset, 0, 0)
	s.AddPoint(trajectory.FootAxisX, halfPeriod, 0, 0, 0)

	s.AddPoint(trajectory.FootAxisY, 0, 0, 0, 0)
	s.AddPoint(trajectory.FootAxisY, halfPeriod, 0, 0, 0)

	s.AddPoint(trajectory.FootAxisZ, 0, last.Theta, 0, 0)
	s.AddPoint(trajectory.FootAxisZ, doubleSupportLength, last.Theta, 0, 0)
	s.AddPoint(trajectory.FootAxisZ, putDownTime, next.Theta, 0, 0)
	s.AddPoint(trajectory.FootAxisZ, halfPeriod, next.Theta, 0, 0)

	// trunk apexes over the support foot and over the next support foot
	turn := math.Abs(next.Theta)
	xOffset := p.TrunkXOffset + p.TrunkXOffsetPCoefForward*next.X + p.TrunkXOffsetPCoefTurn*turn
	pitch := p.TrunkPitch + p.TrunkPitchPCoefForward*next.X + p.TrunkPitchPCoefTurn*turn
	pointSupport := r3.Vector{X: xOffset, Y: p.TrunkYOffset}
	pointNext := r3.Vector{X: next.X + xOffset, Y: next.Y + p.TrunkYOffset}
	middle := pointSupport.Add(pointNext).Mul(0.5)
	swing := pointSupport.Sub(middle)
	swing.Y *= p.TrunkSwing
	if startMovement || startStep {
		swing.Y *= p.FirstStepSwingFactor
	}
	apexSupport := middle.Add(swing)
	apexNext := middle.Sub(swing)
	velSupport := (next.X - last.X) / period
	velNext := next.X / halfPeriod

	supportTime := halfPeriod + timeShift
	nextTime := period + timeShift
	// each lateral apex keeps a segment of its own, even with a full pause
	trunkPause := math.Min(0.5*p.TrunkPause*halfPeriod, 0.5*halfPeriod-2*splines.MinSegmentLength)

	s.AddPoint(trajectory.TrunkPosX, 0, e.trunkPosAtLast.X, e.trunkVelAtLast.X, e.trunkAccAtLast.X)
	s.AddPoint(trajectory.TrunkPosX, supportTime, apexSupport.X, velSupport, 0)
	s.AddPoint(trajectory.TrunkPosX, nextTime, apexNext.X, velNext, 0)

	s.AddPoint(trajectory.TrunkPosY, 0, e.trunkPosAtLast.Y, e.trunkVelAtLast.Y, e.trunkAccAtLast.Y)
	if p.TrunkYOnlyInDoubleSupport {
		shiftEnd := math.Max(doubleSupportLength, 2*splines.MinSegmentLength)
		s.AddPoint(trajectory.TrunkPosY, shiftEnd, apexSupport.Y, 0, 0)
		s.AddPoint(trajectory.TrunkPosY, halfPeriod, apexSupport.Y, 0, 0)
	} else {
		s.AddPoint(trajectory.TrunkPosY, supportTime-trunkPause, apexSupport.Y, 0, 0)
		s.AddPoint(trajectory.TrunkPosY, supportTime+trunkPause, apexSupport.Y, 0, 0)
		s.AddPoint(trajectory.TrunkPosY, nextTime-trunkPause, apexNext.Y, 0, 0)
		s.AddPoint(trajectory.TrunkPosY, nextTime+trunkPause, apexNext.Y, 0, 0)
	}

	s.AddPoint(trajectory.TrunkPosZ, 0, e.trunkPosAtLast.Z, e.trunkVelAtLast.Z, e.trunkAccAtLast.Z)
	s.AddPoint(trajectory.TrunkPosZ, supportTime, p.TrunkHeight, 0, 0)
	s.AddPoint(trajectory.TrunkPosZ, nextTime, p.TrunkHeight, 0, 0)

	axisSupport := spatialmath.EulerYawPitchRollToAxis(0, pitch, 0.5*last.Theta+0.5*next.Theta)
	axisNext := spatialmath.EulerYawPitchRollToAxis(0, pitch, next.Theta)
	axisVel := r3.Vector{Z: spatialmath.AngleDistance(last.Theta, next.Theta) / period}
	e.addTrunkAxisPoint(0, e.trunkAxisPosAtLast, e.trunkAxisVelAtLast, e.trunkAxisAccAtLast)
	e.addTrunkAxisPoint(supportTime, axisSupport, axisVel, r3.Vector{})
	e.addTrunkAxisPoint(nextTime, axisNext, axisVel, r3.Vector{})

	s.Fit()
	e.recordTrunkJump()
}

func (e *Engine) addTrunkAxisPoint(t float64, pos, vel, acc r3.Vector) {
	e.trajs.AddPoint(trajectory.TrunkAxisX, t, pos.X, vel.X, acc.X)
	e.trajs.AddPoint(trajectory.TrunkAxisY, t, pos.Y, vel.Y, acc.Y)
	e.trajs.AddPoint(trajectory.TrunkAxisZ, t, pos.Z, vel.Z, acc.Z)
}

// buildWalkDisableTrajectories grounds the flying foot at its target and
// centers the trunk between both feet without committing to a new step.
func (e *Engine) buildWalkDisableTrajectories() {
	var foot [6]splines.Boundary
	for i, c := range footChannels {
		foot[i].Pos, foot[i].Vel, foot[i].Acc = e.trajs.Evaluate(c, e.boundaryTime)
	}
	e.saveCurrentTrunkState(spatialmath.Pose2D{})
	e.applyPendingParameters()
	e.buildStance(foot)
}

// restingFootState is the flying foot standing still at its target.
func (e *Engine) restingFootState() [6]splines.Boundary {
	next := e.footstep.Next()
	return [6]splines.Boundary{{Pos: next.X}, {Pos: next.Y}, {}, {}, {}, {Pos: next.Theta}}
}

// buildStance builds a half-cycle going from the saved trunk state and the
// given flying foot state to both feet on the ground with the trunk at rest
// between them.
func (e *Engine) buildStance(foot [6]splines.Boundary) {
	p := e.params
	halfPeriod := p.HalfPeriod()
	next := e.footstep.Next()
	e.doubleSupportLength = halfPeriod

	s := &e.trajs
	s.Reset()

	footTarget := [6]float64{next.X, next.Y, 0, 0, 0, next.Theta}
	for i, c := range footChannels {
		s.AddPoint(c, 0, foot[i].Pos, foot[i].Vel, foot[i].Acc)
		s.AddSegment(c, halfPeriod, splines.Boundary{Pos: footTarget[i]})
	}

	trunkPos := r3.Vector{X: 0.5*next.X + p.TrunkXOffset, Y: 0.5*next.Y + p.TrunkYOffset, Z: p.TrunkHeight}
	trunkAxis := spatialmath.EulerYawPitchRollToAxis(0, p.TrunkPitch, 0.5*next.Theta)
	e.addTrunkSegment(trajectory.TrunkPosX, halfPeriod, e.trunkPosAtLast, e.trunkVelAtLast, e.trunkAccAtLast, trunkPos)
	e.addTrunkSegment(trajectory.TrunkAxisX, halfPeriod, e.trunkAxisPosAtLast, e.trunkAxisVelAtLast, e.trunkAxisAccAtLast, trunkAxis)

	s.Fit()
	e.recordTrunkJump()
}

// addTrunkSegment adds one rest-to-target segment to three consecutive channels.
func (e *Engine) addTrunkSegment(first trajectory.Channel, duration float64, pos, vel, acc, target r3.Vector) {
	from := [3][3]float64{
		{pos.X, vel.X, acc.X},
		{pos.Y, vel.Y, acc.Y},
		{pos.Z, vel.Z, acc.Z},
	}
	to := [3]float64{target.X, target.Y, target.Z}
	for i := range from {
		c := first + trajectory.Channel(i)
		e.trajs.AddPoint(c, 0, from[i][0], from[i][1], from[i][2])
		e.trajs.AddSegment(c, duration, splines.Boundary{Pos: to[i]})
	}
}

// recordTrunkJump measures how far the new trunk trajectories start from the
// state they were built from.
func (e *Engine) recordTrunkJump() {
	from := [NumTrunkChannels][2]float64{
		{e.trunkPosAtLast.X, e.trunkVelAtLast.X},
		{e.trunkPosAtLast.Y, e.trunkVelAtLast.Y},
		{e.trunkPosAtLast.Z, e.trunkVelAtLast.Z},
		{e.trunkAxisPosAtLast.X, e.trunkAxisVelAtLast.X},
		{e.trunkAxisPosAtLast.Y, e.trunkAxisVelAtLast.Y},
		{e.trunkAxisPosAtLast.Z, e.trunkAxisVelAtLast.Z},
	}
	for i := range from {
		pos, vel, _ := e.trajs.Evaluate(trajectory.TrunkPosX+trajectory.Channel(i), 0)
		e.trunkJumps[i] = Jump{Pos: math.Abs(pos - from[i][0]), Vel: math.Abs(vel - from[i][1])}
	}
	e.rebuilds++
}
