package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Pose2D is a planar pose: a position on the ground and a heading in radians.
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose2DFromVector reads a pose packed as (x, y, theta).
func NewPose2DFromVector(v r3.Vector) Pose2D {
	return Pose2D{X: v.X, Y: v.Y, Theta: v.Z}
}

// Vector packs the pose as (x, y, theta).
func (p Pose2D) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Theta}
}

// Compose returns the pose reached by applying diff, expressed in the frame of
// p, on top of p.
func (p Pose2D) Compose(diff Pose2D) Pose2D {
	sin, cos := math.Sincos(p.Theta)
	return Pose2D{
		X:     p.X + diff.X*cos - diff.Y*sin,
		Y:     p.Y + diff.X*sin + diff.Y*cos,
		Theta: AngleBound(p.Theta + diff.Theta),
	}
}

// Inverse returns the pose of the origin expressed in the frame of p, so that
// p.Compose(p.Inverse()) is the identity.
func (p Pose2D) Inverse() Pose2D {
	sin, cos := math.Sincos(p.Theta)
	return Pose2D{
		X:     -(p.X*cos + p.Y*sin),
		Y:     p.X*sin - p.Y*cos,
		Theta: AngleBound(-p.Theta),
	}
}

// Transform expresses a point given in world coordinates in the frame of p.
func (p Pose2D) Transform(x, y float64) (float64, float64) {
	sin, cos := math.Sincos(p.Theta)
	dx, dy := x-p.X, y-p.Y
	return dx*cos + dy*sin, -dx*sin + dy*cos
}

// AlmostEqual reports whether two poses agree within epsilon, comparing headings modulo 2pi.
func (p Pose2D) AlmostEqual(other Pose2D, epsilon float64) bool {
	return math.Abs(p.X-other.X) <= epsilon &&
		math.Abs(p.Y-other.Y) <= epsilon &&
		math.Abs(AngleDistance(p.Theta, other.Theta)) <= epsilon
}
