package walkengine

import "github.com/pkg/errors"

// State is the kind of half-cycle the engine is producing.
type State int

// The engine states. A new walk goes Idle, StartMovement, StartStep, then
// Walking (with Kick and Paused half-cycles interleaved) until zero orders
// bring it through StopStep and StopMovement back to Idle.
const (
	// StateIdle holds both feet on the ground in the neutral stance.
	StateIdle State = iota
	// StateStartMovement moves only the trunk over the first support foot.
	StateStartMovement
	// StateStartStep is the first real step, with a damped trunk swing.
	StateStartStep
	StateWalking
	StateKick
	// StatePaused holds the pose reached at the end of the last half-cycle.
	StatePaused
	// StateStopStep brings the flying foot back to the neutral stance.
	StateStopStep
	// StateStopMovement centers the trunk between both grounded feet.
	StateStopMovement
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateStartMovement: "start_movement",
	StateStartStep:     "start_step",
	StateWalking:       "walking",
	StateKick:          "kick",
	StatePaused:        "paused",
	StateStopStep:      "stop_step",
	StateStopMovement:  "stop_movement",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseState returns the state with the given name.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown walk engine state %q", name)
}

// stepping reports whether a half-cycle of this state moves a foot.
func (s State) stepping() bool {
	switch s {
	case StateStartStep, StateWalking, StateKick, StateStopStep:
		return true
	case StateIdle, StateStartMovement, StatePaused, StateStopMovement:
		return false
	default:
		panic(errors.Errorf("unknown walk engine state %d", int(s)))
	}
}
