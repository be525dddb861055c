package kinematics

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/legged-robots/quinticwalk/spatialmath"
)

func standGoal(trunkHeight float64) Goal {
	return Goal{
		TrunkPos:         r3.Vector{Y: -0.1, Z: trunkHeight},
		TrunkOrientation: quat.Number{Real: 1},
		FootPos:          r3.Vector{Y: -0.2},
		FootOrientation:  quat.Number{Real: 1},
		IsLeftSupport:    true,
	}
}

func TestLegSolverSymmetricStance(t *testing.T) {
	solver, err := NewLegSolver(DefaultLegDimensions())
	test.That(t, err, test.ShouldBeNil)

	// hip to ankle distance 0.32 with 0.2 segments
	joints, err := solver.Solve(context.Background(), standGoal(0.4))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(joints), test.ShouldEqual, 12)

	half := math.Acos(0.8)
	for _, side := range []string{"left", "right"} {
		test.That(t, joints[side+"_"+Knee], test.ShouldAlmostEqual, 2*half, 1e-9)
		test.That(t, joints[side+"_"+AnklePitch], test.ShouldAlmostEqual, half, 1e-9)
		test.That(t, joints[side+"_"+HipPitch], test.ShouldAlmostEqual, half, 1e-9)
		test.That(t, joints[side+"_"+HipYaw], test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, joints[side+"_"+HipRoll], test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, joints[side+"_"+AnkleRoll], test.ShouldAlmostEqual, 0, 1e-9)
	}
}

func TestLegSolverStraightLegs(t *testing.T) {
	solver, err := NewLegSolver(DefaultLegDimensions())
	test.That(t, err, test.ShouldBeNil)

	joints, err := solver.Solve(context.Background(), standGoal(0.479999))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joints["left_"+Knee], test.ShouldAlmostEqual, 0, 1e-2)
	test.That(t, joints["right_"+Knee], test.ShouldAlmostEqual, 0, 1e-2)
}

func TestLegSolverHipYawFollowsTrunk(t *testing.T) {
	solver, err := NewLegSolver(DefaultLegDimensions())
	test.That(t, err, test.ShouldBeNil)

	goal := standGoal(0.4)
	goal.TrunkPos = r3.Vector{Y: -0.1, Z: 0.4}
	goal.TrunkOrientation = spatialmath.YawQuat(0.1)
	goal.FootOrientation = spatialmath.YawQuat(0.2)
	joints, err := solver.Solve(context.Background(), goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joints["left_"+HipYaw], test.ShouldAlmostEqual, 0.1, 1e-9)
	test.That(t, joints["right_"+HipYaw], test.ShouldAlmostEqual, -0.1, 1e-9)
}

func TestLegSolverUnreachable(t *testing.T) {
	solver, err := NewLegSolver(DefaultLegDimensions())
	test.That(t, err, test.ShouldBeNil)

	_, err = solver.Solve(context.Background(), standGoal(1))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrUnreachable), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "left leg")
}

func TestLegSolverCanceled(t *testing.T) {
	solver, err := NewLegSolver(DefaultLegDimensions())
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = solver.Solve(ctx, standGoal(0.4))
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestNewLegSolverRejectsBadDimensions(t *testing.T) {
	dims := DefaultLegDimensions()
	dims.ThighLength = 0
	dims.TibiaLength = -1
	_, err := NewLegSolver(dims)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "thigh_length")
	test.That(t, err.Error(), test.ShouldContainSubstring, "tibia_length")
}
