// Package config defines the walk node configuration and how it is read
// from disk and watched for changes.
package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/legged-robots/quinticwalk/kinematics"
	"github.com/legged-robots/quinticwalk/walkengine"
)

// VelocityLimits bounds the velocity orders accepted by the node.
type VelocityLimits struct {
	X   float64 `json:"x" yaml:"x"`
	Y   float64 `json:"y" yaml:"y"`
	Yaw float64 `json:"yaw" yaml:"yaw"`
}

// Config is the full configuration of a walk node.
type Config struct {
	// engine tick rate, Hz
	EngineFrequency float64        `json:"engine_frequency" yaml:"engine_frequency"`
	MaxVelocity     VelocityLimits `json:"max_velocity" yaml:"max_velocity"`

	// PhaseReset ends the current step early when the flying foot touches
	// the ground after PhaseResetPhase.
	PhaseReset      bool    `json:"phase_reset" yaml:"phase_reset"`
	PhaseResetPhase float64 `json:"phase_reset_phase" yaml:"phase_reset_phase"`

	Walking walkengine.WalkingParameter `json:"walking" yaml:"walking"`
	Legs    kinematics.LegDimensions    `json:"legs" yaml:"legs"`
}

// Default returns a usable configuration. Files are decoded on top of it, so
// omitted fields keep these values.
func Default() *Config {
	return &Config{
		EngineFrequency: 100,
		MaxVelocity:     VelocityLimits{X: 0.2, Y: 0.1, Yaw: 0.5},
		PhaseReset:      false,
		PhaseResetPhase: 0.25,
		Walking:         walkengine.DefaultParameters(),
		Legs:            kinematics.DefaultLegDimensions(),
	}
}

// Validate returns every invalid field of the config.
func (c *Config) Validate() error {
	var err error
	if !(c.EngineFrequency > 0) {
		err = multierr.Append(err, errors.Errorf("engine_frequency must be > 0, got %v", c.EngineFrequency))
	}
	for name, v := range map[string]float64{
		"max_velocity.x":   c.MaxVelocity.X,
		"max_velocity.y":   c.MaxVelocity.Y,
		"max_velocity.yaw": c.MaxVelocity.Yaw,
	} {
		if !(v >= 0) {
			err = multierr.Append(err, errors.Errorf("%s must be >= 0, got %v", name, v))
		}
	}
	if !(c.PhaseResetPhase >= 0 && c.PhaseResetPhase <= 1) {
		err = multierr.Append(err, errors.Errorf("phase_reset_phase must be in [0, 1], got %v", c.PhaseResetPhase))
	}
	if wErr := c.Walking.Validate(); wErr != nil {
		err = multierr.Append(err, errors.Wrap(wErr, "walking"))
	}
	if lErr := c.Legs.Validate(); lErr != nil {
		err = multierr.Append(err, errors.Wrap(lErr, "legs"))
	}
	// the engine rejects ticks longer than a quarter cycle
	if c.EngineFrequency > 0 && c.Walking.Freq > 0 && 1/c.EngineFrequency > 0.25/c.Walking.Freq {
		err = multierr.Append(err, errors.Errorf(
			"engine_frequency %v is too low for a %v Hz walk", c.EngineFrequency, c.Walking.Freq))
	}
	return err
}
