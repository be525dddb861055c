package walkengine

import (
	"testing"

	"go.viam.com/test"
)

func TestStateNames(t *testing.T) {
	for s := StateIdle; s <= StateStopMovement; s++ {
		parsed, err := ParseState(s.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, s)
	}
	test.That(t, StateStopStep.String(), test.ShouldEqual, "stop_step")
	test.That(t, State(99).String(), test.ShouldEqual, "unknown")

	_, err := ParseState("stopStep")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStateStepping(t *testing.T) {
	test.That(t, StateWalking.stepping(), test.ShouldBeTrue)
	test.That(t, StateKick.stepping(), test.ShouldBeTrue)
	test.That(t, StateIdle.stepping(), test.ShouldBeFalse)
	test.That(t, StatePaused.stepping(), test.ShouldBeFalse)
	test.That(t, func() { State(-1).stepping() }, test.ShouldPanic)
}
