// Package splines implements the quintic polynomial primitives the walk engine
// stitches its trajectories from.
package splines

import (
	"github.com/pkg/errors"
)

// Polynomial is a quintic polynomial stored lowest degree first, so that
// P(t) = p[0] + p[1]*t + ... + p[5]*t^5.
type Polynomial [6]float64

// Pos returns the value of the polynomial at t.
func (p Polynomial) Pos(t float64) float64 {
	return ((((p[5]*t+p[4])*t+p[3])*t+p[2])*t+p[1])*t + p[0]
}

// Vel returns the first derivative of the polynomial at t.
func (p Polynomial) Vel(t float64) float64 {
	return (((5*p[5]*t+4*p[4])*t+3*p[3])*t+2*p[2])*t + p[1]
}

// Acc returns the second derivative of the polynomial at t.
func (p Polynomial) Acc(t float64) float64 {
	return ((20*p[5]*t+12*p[4])*t+6*p[3])*t + 2*p[2]
}

// Jerk returns the third derivative of the polynomial at t.
func (p Polynomial) Jerk(t float64) float64 {
	return (60*p[5]*t+24*p[4])*t + 6*p[3]
}

// Shift returns the polynomial Q with Q(x) = P(x + dx), i.e. P re-expressed
// around an origin moved by dx.
func (p Polynomial) Shift(dx float64) Polynomial {
	var out Polynomial
	for i, c := range p {
		if c == 0 {
			continue
		}
		for k, b := range ExpandBinomial(dx, uint(i)) {
			out[k] += c * b
		}
	}
	return out
}

// maxBinomialDegree bounds ExpandBinomial; coefficients stay exact in a
// float64 well past it, the limit only guards against caller bugs.
const maxBinomialDegree = 20

// ExpandBinomial expands (x + y)^degree and returns the coefficients of the
// resulting polynomial in x, lowest degree first.
func ExpandBinomial(y float64, degree uint) []float64 {
	if degree > maxBinomialDegree {
		panic(errors.Errorf("binomial degree %d above limit %d", degree, maxBinomialDegree))
	}
	coefs := make([]float64, degree+1)
	// walk Pascal's row from x^degree downwards, accumulating powers of y
	comb := 1.0
	yPow := 1.0
	for k := int(degree); k >= 0; k-- {
		coefs[k] = comb * yPow
		// C(n, k-1) = C(n, k) * k / (n - k + 1)
		comb = comb * float64(k) / float64(int(degree)-k+1)
		yPow *= y
	}
	return coefs
}

// FitQuintic returns the unique quintic P on [0, T] with P(0)=p0, P'(0)=v0,
// P''(0)=a0, P(T)=p1, P'(T)=v1 and P''(T)=a1. T must be strictly positive.
func FitQuintic(T, p0, v0, a0, p1, v1, a1 float64) Polynomial {
	if T <= 0 {
		panic(errors.Errorf("cannot fit quintic over non-positive duration %v", T))
	}
	T2 := T * T
	T3 := T2 * T
	T4 := T3 * T
	T5 := T4 * T
	return Polynomial{
		p0,
		v0,
		a0 / 2,
		(20*(p1-p0) - (8*v1+12*v0)*T - (3*a0-a1)*T2) / (2 * T3),
		(30*(p0-p1) + (14*v1+16*v0)*T + (3*a0-2*a1)*T2) / (2 * T4),
		(12*(p1-p0) - 6*(v1+v0)*T - (a0-a1)*T2) / (2 * T5),
	}
}
