// Package trajectory holds the per half-cycle set of cartesian trajectories
// produced by the walk engine, one spline per degree of freedom.
package trajectory

import (
	"github.com/pkg/errors"

	"github.com/legged-robots/quinticwalk/splines"
)

// Channel identifies one cartesian degree of freedom of the trunk or of the
// flying foot, expressed in the support foot frame.
type Channel int

// The channels, trunk first. Orientations are axis-angle vector components.
const (
	TrunkPosX Channel = iota
	TrunkPosY
	TrunkPosZ
	TrunkAxisX
	TrunkAxisY
	TrunkAxisZ
	FootPosX
	FootPosY
	FootPosZ
	FootAxisX
	FootAxisY
	FootAxisZ

	// NumChannels is the number of channels in a Set.
	NumChannels
)

var channelNames = [NumChannels]string{
	TrunkPosX:  "trunk_pos_x",
	TrunkPosY:  "trunk_pos_y",
	TrunkPosZ:  "trunk_pos_z",
	TrunkAxisX: "trunk_axis_x",
	TrunkAxisY: "trunk_axis_y",
	TrunkAxisZ: "trunk_axis_z",
	FootPosX:   "foot_pos_x",
	FootPosY:   "foot_pos_y",
	FootPosZ:   "foot_pos_z",
	FootAxisX:  "foot_axis_x",
	FootAxisY:  "foot_axis_y",
	FootAxisZ:  "foot_axis_z",
}

// Valid reports whether c names one of the channels.
func (c Channel) Valid() bool {
	return c >= 0 && c < NumChannels
}

func (c Channel) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return channelNames[c]
}

// Channels returns every channel in index order.
func Channels() []Channel {
	out := make([]Channel, NumChannels)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// ParseChannel returns the channel with the given name.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, errors.Errorf("unknown trajectory channel %q", name)
}

// Set is a complete half-cycle: one trajectory per channel. It is rebuilt from
// scratch on every half-cycle transition and only read in between.
type Set struct {
	trajs [NumChannels]splines.Trajectory
}

// Reset discards every via-point and segment of every channel.
func (s *Set) Reset() {
	for i := range s.trajs {
		s.trajs[i].Reset()
	}
}

// Get returns the trajectory of a channel.
func (s *Set) Get(c Channel) *splines.Trajectory {
	if !c.Valid() {
		panic(errors.Errorf("invalid trajectory channel %d", int(c)))
	}
	return &s.trajs[c]
}

// AddPoint records a via-point on a channel.
func (s *Set) AddPoint(c Channel, t, pos, vel, acc float64) {
	s.Get(c).AddPoint(t, pos, vel, acc)
}

// AddSegment appends a segment of the given duration to a channel. Continuity
// with the previous segment is the caller's responsibility.
func (s *Set) AddSegment(c Channel, duration float64, end splines.Boundary) {
	s.Get(c).AddSegment(duration, end)
}

// Fit fits every channel.
func (s *Set) Fit() {
	for i := range s.trajs {
		s.trajs[i].Fit()
	}
}

// Evaluate returns value, velocity and acceleration of a channel at t.
func (s *Set) Evaluate(c Channel, t float64) (pos, vel, acc float64) {
	return s.Get(c).Evaluate(t)
}

// Pos returns the value of a channel at t.
func (s *Set) Pos(c Channel, t float64) float64 {
	return s.Get(c).Pos(t)
}

// Sample evaluates the value of every channel at t.
func (s *Set) Sample(t float64) [NumChannels]float64 {
	var out [NumChannels]float64
	for i := range s.trajs {
		out[i] = s.trajs[i].Pos(t)
	}
	return out
}
