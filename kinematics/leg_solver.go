package kinematics

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"

	"github.com/legged-robots/quinticwalk/spatialmath"
)

// Joint name suffixes, prefixed with "left_" or "right_".
const (
	HipYaw     = "hip_yaw"
	HipRoll    = "hip_roll"
	HipPitch   = "hip_pitch"
	Knee       = "knee"
	AnklePitch = "ankle_pitch"
	AnkleRoll  = "ankle_roll"
)

// LegDimensions describes two identical legs made of a thigh and a tibia.
type LegDimensions struct {
	ThighLength float64 `json:"thigh_length" yaml:"thigh_length"`
	TibiaLength float64 `json:"tibia_length" yaml:"tibia_length"`
	// lateral distance between both hip joints
	HipWidth float64 `json:"hip_width" yaml:"hip_width"`
	// height of the trunk reference point above the hip joints
	HipOffsetZ float64 `json:"hip_offset_z" yaml:"hip_offset_z"`
	// height of the ankle joint above the sole
	AnkleHeight float64 `json:"ankle_height" yaml:"ankle_height"`
}

// DefaultLegDimensions matches the default walking parameters.
func DefaultLegDimensions() LegDimensions {
	return LegDimensions{
		ThighLength: 0.2,
		TibiaLength: 0.2,
		HipWidth:    0.2,
		HipOffsetZ:  0.05,
		AnkleHeight: 0.03,
	}
}

// Validate checks that every dimension is usable.
func (d LegDimensions) Validate() error {
	var err error
	if !(d.ThighLength > 0) {
		err = multierr.Append(err, errors.Errorf("thigh_length must be > 0, got %v", d.ThighLength))
	}
	if !(d.TibiaLength > 0) {
		err = multierr.Append(err, errors.Errorf("tibia_length must be > 0, got %v", d.TibiaLength))
	}
	if d.HipWidth < 0 {
		err = multierr.Append(err, errors.Errorf("hip_width must be >= 0, got %v", d.HipWidth))
	}
	return err
}

// LegSolver solves both legs in closed form, each as a planar two-link chain
// from the hip to the ankle. Zero angles are straight legs with the trunk
// parallel to the feet; the knee is positive when flexed and pitch joints are
// positive when the segment above them leans forward.
type LegSolver struct {
	dims LegDimensions
}

// NewLegSolver returns a solver for legs of the given dimensions.
func NewLegSolver(dims LegDimensions) (*LegSolver, error) {
	if err := dims.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid leg dimensions")
	}
	return &LegSolver{dims: dims}, nil
}

// Solve implements Solver.
func (s *LegSolver) Solve(ctx context.Context, goal Goal) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	supportSide, flyingSide := "right", "left"
	supportSign := -1.0
	if goal.IsLeftSupport {
		supportSide, flyingSide = "left", "right"
		supportSign = 1
	}

	joints := make(map[string]float64, 12)
	var err error
	err = multierr.Append(err, s.solveLeg(joints, supportSide, goal, supportSign, r3.Vector{}, quat.Number{Real: 1}))
	err = multierr.Append(err, s.solveLeg(joints, flyingSide, goal, -supportSign, goal.FootPos, goal.FootOrientation))
	if err != nil {
		return nil, err
	}
	return joints, nil
}

// solveLeg solves the leg whose hip is on the side given by sign (+1 left) and
// whose sole is at footPos with footRot.
func (s *LegSolver) solveLeg(
	joints map[string]float64,
	side string,
	goal Goal,
	sign float64,
	footPos r3.Vector,
	footRot quat.Number,
) error {
	hip := goal.TrunkPos.Add(spatialmath.RotateVector(goal.TrunkOrientation,
		r3.Vector{Y: sign * 0.5 * s.dims.HipWidth, Z: -s.dims.HipOffsetZ}))
	ankle := footPos.Add(spatialmath.RotateVector(footRot, r3.Vector{Z: s.dims.AnkleHeight}))

	toFoot := quat.Conj(footRot)
	d := spatialmath.RotateVector(toFoot, hip.Sub(ankle))
	length := d.Norm()
	thigh, tibia := s.dims.ThighLength, s.dims.TibiaLength
	if length > thigh+tibia || length < math.Abs(thigh-tibia) || d.Z <= 0 {
		return errors.Wrapf(ErrUnreachable, "%s leg needs length %.4f", side, length)
	}

	knee := math.Pi - math.Acos(clampCos((thigh*thigh+tibia*tibia-length*length)/(2*thigh*tibia)))
	// angle between the tibia and the ankle to hip line
	beta := math.Acos(clampCos((tibia*tibia + length*length - thigh*thigh) / (2 * tibia * length)))
	legPitch := math.Atan2(d.X, math.Hypot(d.Y, d.Z))
	tibiaLean := legPitch + beta
	thighLean := tibiaLean - knee

	relRoll, relPitch, relYaw := spatialmath.QuatToEulerYawPitchRoll(quat.Mul(toFoot, goal.TrunkOrientation))
	ankleRoll := math.Atan2(d.Y, d.Z)

	joints[side+"_"+HipYaw] = relYaw
	joints[side+"_"+HipRoll] = relRoll - ankleRoll
	joints[side+"_"+HipPitch] = relPitch - thighLean
	joints[side+"_"+Knee] = knee
	joints[side+"_"+AnklePitch] = tibiaLean
	joints[side+"_"+AnkleRoll] = ankleRoll
	return nil
}

func clampCos(c float64) float64 {
	return math.Max(-1, math.Min(1, c))
}
