// Package kinematics turns cartesian walk targets into joint angles.
package kinematics

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// ErrUnreachable is returned by a Solver when no joint configuration realizes a goal.
var ErrUnreachable = errors.New("goal is out of reach")

// Goal is a trunk pose and a flying foot pose, both in the support foot frame.
type Goal struct {
	TrunkPos         r3.Vector
	TrunkOrientation quat.Number
	FootPos          r3.Vector
	FootOrientation  quat.Number
	IsLeftSupport    bool
}

// Solver computes joint angles, keyed by joint name, realizing a goal. It
// returns an error wrapping ErrUnreachable when the goal cannot be realized.
type Solver interface {
	Solve(ctx context.Context, goal Goal) (map[string]float64, error)
}
