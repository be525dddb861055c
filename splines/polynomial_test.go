package splines

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestFitQuinticBoundaries(t *testing.T) {
	for _, tc := range []struct {
		T                      float64
		p0, v0, a0, p1, v1, a1 float64
	}{
		{1, 0, 0, 0, 1, 0, 0},
		{0.35, 0.12, -0.4, 2.5, -0.03, 0.8, -1.2},
		{2.7, -1, 3, 0, 4, -2, 0.5},
		{0.001, 0.02, 0.01, 0, 0.021, 0, 0},
	} {
		p := FitQuintic(tc.T, tc.p0, tc.v0, tc.a0, tc.p1, tc.v1, tc.a1)
		test.That(t, p.Pos(0), test.ShouldAlmostEqual, tc.p0, 1e-9)
		test.That(t, p.Vel(0), test.ShouldAlmostEqual, tc.v0, 1e-9)
		test.That(t, p.Acc(0), test.ShouldAlmostEqual, tc.a0, 1e-9)
		test.That(t, p.Pos(tc.T), test.ShouldAlmostEqual, tc.p1, 1e-7)
		test.That(t, p.Vel(tc.T), test.ShouldAlmostEqual, tc.v1, 1e-6)
		test.That(t, p.Acc(tc.T), test.ShouldAlmostEqual, tc.a1, 1e-5)
	}
}

func TestFitQuinticMinimumJerkShape(t *testing.T) {
	p := FitQuintic(1, 0, 0, 0, 1, 0, 0)
	test.That(t, p, test.ShouldResemble, Polynomial{0, 0, 0, 10, -15, 6})
	// symmetric rest-to-rest motion crosses the midpoint at half time
	test.That(t, p.Pos(0.5), test.ShouldAlmostEqual, 0.5)
	test.That(t, p.Acc(0.5), test.ShouldAlmostEqual, 0)
	test.That(t, p.Jerk(0), test.ShouldAlmostEqual, 60)
}

func TestFitQuinticRejectsEmptyDuration(t *testing.T) {
	test.That(t, func() { FitQuintic(0, 0, 0, 0, 1, 0, 0) }, test.ShouldPanic)
	test.That(t, func() { FitQuintic(-0.2, 0, 0, 0, 1, 0, 0) }, test.ShouldPanic)
}

func TestExpandBinomial(t *testing.T) {
	test.That(t, ExpandBinomial(1, 0), test.ShouldResemble, []float64{1})
	test.That(t, ExpandBinomial(1, 5), test.ShouldResemble, []float64{1, 5, 10, 10, 5, 1})
	// (x + 2)^3 = 8 + 12x + 6x^2 + x^3
	test.That(t, ExpandBinomial(2, 3), test.ShouldResemble, []float64{8, 12, 6, 1})
	// (x - 0.5)^2 = 0.25 - x + x^2
	test.That(t, ExpandBinomial(-0.5, 2), test.ShouldResemble, []float64{0.25, -1, 1})
	test.That(t, func() { ExpandBinomial(1, 21) }, test.ShouldPanic)
}

func TestShift(t *testing.T) {
	p := Polynomial{0.3, -1.2, 0.7, 2.1, -0.4, 0.05}
	for _, dx := range []float64{0, 0.25, -1.5, 3} {
		q := p.Shift(dx)
		for _, x := range []float64{-1, 0, 0.3, 1.7} {
			test.That(t, q.Pos(x), test.ShouldAlmostEqual, p.Pos(x+dx), 1e-9)
			test.That(t, q.Vel(x), test.ShouldAlmostEqual, p.Vel(x+dx), 1e-9)
			test.That(t, q.Acc(x), test.ShouldAlmostEqual, p.Acc(x+dx), 1e-9)
		}
	}
}

func TestHornerMatchesPowers(t *testing.T) {
	p := Polynomial{1, 2, 3, 4, 5, 6}
	x := 0.7
	want := 0.0
	for i, c := range p {
		want += c * math.Pow(x, float64(i))
	}
	test.That(t, p.Pos(x), test.ShouldAlmostEqual, want)
}
