package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Rotations are splined as R3 axis-angle vectors: the direction is the rotation
// axis and the norm is the angle in radians. Quaternions only appear where an
// orientation leaves the spline math, e.g. when composing two rotations or
// handing a target to inverse kinematics.

// axisEpsilon is the rotation angle below which a rotation is treated as the identity.
const axisEpsilon = 1e-9

// AxisToQuat converts an R3 axis-angle vector to a unit quaternion.
func AxisToQuat(axis r3.Vector) quat.Number {
	theta := axis.Norm()
	if theta < axisEpsilon {
		return quat.Number{Real: 1}
	}
	s := math.Sin(theta/2) / theta
	return quat.Number{Real: math.Cos(theta / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// QuatToAxis converts a unit quaternion to an R3 axis-angle vector. The result
// matches Eigen's AngleAxis conversion, so its angle never exceeds pi, and the
// identity maps to the zero vector.
func QuatToAxis(q quat.Number) r3.Vector {
	denom := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if denom < axisEpsilon {
		return r3.Vector{}
	}
	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		angle *= -1
	}
	return r3.Vector{X: angle * q.Imag / denom, Y: angle * q.Jmag / denom, Z: angle * q.Kmag / denom}
}

// YawQuat returns the rotation of yaw radians about the z axis.
func YawQuat(yaw float64) quat.Number {
	return quat.Number{Real: math.Cos(yaw / 2), Kmag: math.Sin(yaw / 2)}
}

// EulerYawPitchRollToQuat composes intrinsic yaw (z), then pitch (y), then
// roll (x) rotations into one quaternion.
func EulerYawPitchRollToQuat(roll, pitch, yaw float64) quat.Number {
	qx := quat.Number{Real: math.Cos(roll / 2), Imag: math.Sin(roll / 2)}
	qy := quat.Number{Real: math.Cos(pitch / 2), Jmag: math.Sin(pitch / 2)}
	return quat.Mul(quat.Mul(YawQuat(yaw), qy), qx)
}

// EulerYawPitchRollToAxis is EulerYawPitchRollToQuat expressed as an axis-angle vector.
func EulerYawPitchRollToAxis(roll, pitch, yaw float64) r3.Vector {
	return QuatToAxis(EulerYawPitchRollToQuat(roll, pitch, yaw))
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// QuatAlmostEqual reports whether two unit quaternions describe the same
// rotation within tol, treating q and -q as equal.
func QuatAlmostEqual(a, b quat.Number, tol float64) bool {
	near := func(x, y quat.Number) bool {
		d := quat.Sub(x, y)
		return quat.Abs(d) <= tol
	}
	return near(a, b) || near(a, quat.Scale(-1, b))
}

// QuatToEulerYawPitchRoll is the inverse of EulerYawPitchRollToQuat.
func QuatToEulerYawPitchRoll(q quat.Number) (roll, pitch, yaw float64) {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	pitch = math.Asin(math.Max(-1, math.Min(1, 2*(w*y-z*x))))
	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}
