package spatialmath

import "math"

// AngleBound wraps an angle in radians into (-pi, pi].
func AngleBound(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleDistance returns the signed shortest rotation taking angle from to angle to.
func AngleDistance(from, to float64) float64 {
	return AngleBound(to - from)
}
