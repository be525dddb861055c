package walkengine

import (
	"math"
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestDefaultParametersAreValid(t *testing.T) {
	p := DefaultParameters()
	test.That(t, p.Validate(), test.ShouldBeNil)
	test.That(t, p.HalfPeriod(), test.ShouldAlmostEqual, 1/3.0)
}

func TestValidateReportsEveryField(t *testing.T) {
	p := DefaultParameters()
	p.Freq = 0
	p.DoubleSupportRatio = 1.2
	p.FootApexPhase = -0.1
	p.FootRise = -0.01
	p.TrunkHeight = math.NaN()

	err := p.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 5)
	for _, name := range []string{"freq", "double_support_ratio", "foot_apex_phase", "foot_rise", "trunk_height"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, name)
	}
}

func TestValidateBounds(t *testing.T) {
	p := DefaultParameters()
	p.DoubleSupportRatio = 1
	p.TrunkPause = 0
	p.FootDistance = 0
	test.That(t, p.Validate(), test.ShouldBeNil)

	p.TrunkSwing = -0.5
	test.That(t, p.Validate(), test.ShouldNotBeNil)
}
