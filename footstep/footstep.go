// Package footstep keeps track of which foot supports the robot and where the
// flying foot came from and is going to, all expressed in the support foot
// frame, along with the world poses both feet have been placed at.
package footstep

import (
	"github.com/golang/geo/r3"

	"github.com/legged-robots/quinticwalk/spatialmath"
)

// Footstep is the footstep bookkeeping of one walk. Poses pack (x, y, yaw).
type Footstep struct {
	footDistance float64
	leftSupport  bool

	// flying foot poses in the support foot frame
	last spatialmath.Pose2D
	next spatialmath.Pose2D

	supportInWorld spatialmath.Pose2D
	flyingInWorld  spatialmath.Pose2D
}

// New returns a footstep in the canonical stance.
func New(footDistance float64, isLeftSupport bool) *Footstep {
	f := &Footstep{footDistance: footDistance}
	f.Reset(isLeftSupport)
	return f
}

// Reset puts the flying foot right beside the support foot, footDistance away
// on its outer side, and moves the support foot to the world origin.
func (f *Footstep) Reset(isLeftSupport bool) {
	f.leftSupport = isLeftSupport
	f.next = spatialmath.Pose2D{Y: f.flyingSideSign() * f.footDistance}
	f.last = f.next
	f.supportInWorld = spatialmath.Pose2D{}
	f.flyingInWorld = f.next
}

// SetFootDistance changes the lateral stance distance used by the next steps.
func (f *Footstep) SetFootDistance(d float64) {
	f.footDistance = d
}

// FootDistance returns the lateral distance between both feet in the neutral stance.
func (f Footstep) FootDistance() float64 {
	return f.footDistance
}

// IsLeftSupport is true when the left foot supports the robot.
func (f Footstep) IsLeftSupport() bool {
	return f.leftSupport
}

// Last returns the pose the flying foot lifted off from.
func (f Footstep) Last() spatialmath.Pose2D {
	return f.last
}

// Next returns the pose the flying foot will land at.
func (f Footstep) Next() spatialmath.Pose2D {
	return f.next
}

// LeftInWorld returns the world pose of the left foot, taking the flying foot
// at its landing pose.
func (f Footstep) LeftInWorld() spatialmath.Pose2D {
	if f.leftSupport {
		return f.supportInWorld
	}
	return f.flyingInWorld
}

// RightInWorld returns the world pose of the right foot, taking the flying
// foot at its landing pose.
func (f Footstep) RightInWorld() spatialmath.Pose2D {
	if f.leftSupport {
		return f.flyingInWorld
	}
	return f.supportInWorld
}

// StepFromSupport makes the flying foot the new support foot and sends the old
// support foot to diff, given in the new support foot frame.
func (f *Footstep) StepFromSupport(diff spatialmath.Pose2D) {
	f.supportInWorld = f.supportInWorld.Compose(f.next)
	f.last = f.next.Inverse()
	f.next = diff
	f.leftSupport = !f.leftSupport
	f.flyingInWorld = f.supportInWorld.Compose(diff)
}

// StepFromOrders performs the step for a displacement order (x forward,
// y lateral, z yaw) over one half-cycle. The stance distance is kept on the
// side of the new flying foot and lateral orders only move the outer foot, so
// the feet never cross.
func (f *Footstep) StepFromOrders(orders r3.Vector) {
	// the flying foot of the new step is the current support foot
	sign := -f.flyingSideSign()
	diff := spatialmath.Pose2D{X: orders.X, Y: sign * f.footDistance, Theta: orders.Z}
	if (f.leftSupport && orders.Y > 0) || (!f.leftSupport && orders.Y < 0) {
		diff.Y += orders.Y
	}
	f.StepFromSupport(diff)
}

// StepFromVelocity integrates velocity orders over dt seconds and steps.
func (f *Footstep) StepFromVelocity(vel r3.Vector, dt float64) {
	f.StepFromOrders(vel.Mul(dt))
}

// flyingSideSign is +1 when the flying foot is on the left of the support foot.
func (f Footstep) flyingSideSign() float64 {
	if f.leftSupport {
		return -1
	}
	return 1
}
