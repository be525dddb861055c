package walkengine

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// WalkingParameter bundles every tunable of the gait. An engine only ever
// swaps a whole WalkingParameter in at a half-cycle boundary.
type WalkingParameter struct {
	// full walk cycle frequency, Hz
	Freq float64 `json:"freq" yaml:"freq"`
	// fraction of each half-cycle spent with both feet on the ground
	DoubleSupportRatio float64 `json:"double_support_ratio" yaml:"double_support_ratio"`
	// lateral distance between both feet centers, m
	FootDistance float64 `json:"foot_distance" yaml:"foot_distance"`
	// flying foot apex height, m
	FootRise float64 `json:"foot_rise" yaml:"foot_rise"`
	// time the flying foot rests at its apex, as a single support ratio
	FootZPause float64 `json:"foot_z_pause" yaml:"foot_z_pause"`
	// height above the ground where the descent phase ends, m
	FootPutDownZOffset float64 `json:"foot_put_down_z_offset" yaml:"foot_put_down_z_offset"`
	// single support phase at which the flying foot reaches its target
	FootPutDownPhase float64 `json:"foot_put_down_phase" yaml:"foot_put_down_phase"`
	// single support phase of the apex
	FootApexPhase float64 `json:"foot_apex_phase" yaml:"foot_apex_phase"`
	// x/y overshoot as a ratio of the step length
	FootOvershootRatio float64 `json:"foot_overshoot_ratio" yaml:"foot_overshoot_ratio"`
	// single support phase of the overshoot
	FootOvershootPhase float64 `json:"foot_overshoot_phase" yaml:"foot_overshoot_phase"`

	TrunkHeight float64 `json:"trunk_height" yaml:"trunk_height"`
	TrunkPitch  float64 `json:"trunk_pitch" yaml:"trunk_pitch"`
	// half-cycle phase offset of the trunk oscillation
	TrunkPhase   float64 `json:"trunk_phase" yaml:"trunk_phase"`
	TrunkXOffset float64 `json:"trunk_x_offset" yaml:"trunk_x_offset"`
	TrunkYOffset float64 `json:"trunk_y_offset" yaml:"trunk_y_offset"`
	// lateral oscillation amplitude ratio
	TrunkSwing float64 `json:"trunk_swing" yaml:"trunk_swing"`
	// half-cycle ratio the trunk rests at each lateral apex
	TrunkPause float64 `json:"trunk_pause" yaml:"trunk_pause"`
	// shift the trunk sideways during double support only and hold it over
	// the support foot for the whole single support
	TrunkYOnlyInDoubleSupport bool `json:"trunk_y_only_in_double_support" yaml:"trunk_y_only_in_double_support"`

	TrunkXOffsetPCoefForward float64 `json:"trunk_x_offset_p_coef_forward" yaml:"trunk_x_offset_p_coef_forward"`
	TrunkXOffsetPCoefTurn    float64 `json:"trunk_x_offset_p_coef_turn" yaml:"trunk_x_offset_p_coef_turn"`
	TrunkPitchPCoefForward   float64 `json:"trunk_pitch_p_coef_forward" yaml:"trunk_pitch_p_coef_forward"`
	TrunkPitchPCoefTurn      float64 `json:"trunk_pitch_p_coef_turn" yaml:"trunk_pitch_p_coef_turn"`

	// kick target ahead of the step target, m
	KickLength float64 `json:"kick_length" yaml:"kick_length"`
	// single support phase of the kick
	KickPhase float64 `json:"kick_phase" yaml:"kick_phase"`
	// forward foot velocity at the kick, m/s
	KickVel float64 `json:"kick_vel" yaml:"kick_vel"`

	FootPutDownRollOffset float64 `json:"foot_put_down_roll_offset" yaml:"foot_put_down_roll_offset"`
	// seconds spent in a requested pause
	PauseDuration float64 `json:"pause_duration" yaml:"pause_duration"`
	// trunk swing damping of the first steps
	FirstStepSwingFactor float64 `json:"first_step_swing_factor" yaml:"first_step_swing_factor"`
}

// DefaultParameters returns a gait tuned for a kid-size humanoid.
func DefaultParameters() WalkingParameter {
	return WalkingParameter{
		Freq:                 1.5,
		DoubleSupportRatio:   0.1,
		FootDistance:         0.2,
		FootRise:             0.05,
		FootPutDownPhase:     1,
		FootApexPhase:        0.5,
		FootOvershootRatio:   0.05,
		FootOvershootPhase:   0.85,
		TrunkHeight:          0.4,
		TrunkPitch:           0.1,
		TrunkPhase:           0.4,
		TrunkXOffset:         0.005,
		TrunkSwing:           0.3,
		KickLength:           0.09,
		KickPhase:            0.75,
		KickVel:              0.2,
		PauseDuration:        0.5,
		FirstStepSwingFactor: 0.5,
	}
}

// HalfPeriod returns the duration of one half-cycle in seconds.
func (p WalkingParameter) HalfPeriod() float64 {
	return 1 / (2 * p.Freq)
}

// Validate returns every field outside of its allowed range.
func (p WalkingParameter) Validate() error {
	var err error
	positive := func(name string, v float64) {
		if !(v > 0) {
			err = multierr.Append(err, errors.Errorf("%s must be > 0, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) {
			err = multierr.Append(err, errors.Errorf("%s must be >= 0, got %v", name, v))
		}
	}
	ratio := func(name string, v float64) {
		if !(v >= 0 && v <= 1) {
			err = multierr.Append(err, errors.Errorf("%s must be in [0, 1], got %v", name, v))
		}
	}

	positive("freq", p.Freq)
	positive("trunk_height", p.TrunkHeight)

	ratio("double_support_ratio", p.DoubleSupportRatio)
	ratio("foot_z_pause", p.FootZPause)
	ratio("foot_put_down_phase", p.FootPutDownPhase)
	ratio("foot_apex_phase", p.FootApexPhase)
	ratio("foot_overshoot_phase", p.FootOvershootPhase)
	ratio("trunk_phase", p.TrunkPhase)
	ratio("trunk_pause", p.TrunkPause)
	ratio("kick_phase", p.KickPhase)
	ratio("first_step_swing_factor", p.FirstStepSwingFactor)

	nonNegative("foot_distance", p.FootDistance)
	nonNegative("foot_rise", p.FootRise)
	nonNegative("foot_overshoot_ratio", p.FootOvershootRatio)
	nonNegative("trunk_swing", p.TrunkSwing)
	nonNegative("kick_length", p.KickLength)
	nonNegative("pause_duration", p.PauseDuration)
	return err
}
