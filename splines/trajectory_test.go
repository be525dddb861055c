package splines

import (
	"testing"

	"go.viam.com/test"
)

func TestTrajectoryViaPoints(t *testing.T) {
	var tr Trajectory
	// added out of order on purpose
	tr.AddPoint(0.5, 1, 0, 0)
	tr.AddPoint(0, 0, 0.2, 0)
	tr.AddPoint(0.2, 0.6, 1.5, 0)
	tr.Fit()

	segs := tr.Segments()
	test.That(t, len(segs), test.ShouldEqual, 2)
	test.That(t, segs[0].Start, test.ShouldEqual, 0.0)
	test.That(t, segs[1].Start, test.ShouldAlmostEqual, 0.2)
	test.That(t, tr.Min(), test.ShouldEqual, 0.0)
	test.That(t, tr.Max(), test.ShouldAlmostEqual, 0.5)

	pos, vel, acc := tr.Evaluate(0.2)
	test.That(t, pos, test.ShouldAlmostEqual, 0.6)
	test.That(t, vel, test.ShouldAlmostEqual, 1.5)
	test.That(t, acc, test.ShouldAlmostEqual, 0)
	test.That(t, tr.Vel(0), test.ShouldAlmostEqual, 0.2)

	// clamped outside the range
	test.That(t, tr.Pos(-3), test.ShouldAlmostEqual, 0)
	test.That(t, tr.Pos(7), test.ShouldAlmostEqual, 1)
	test.That(t, tr.Vel(7), test.ShouldAlmostEqual, 0)
}

func TestTrajectoryContinuityAcrossJoins(t *testing.T) {
	var tr Trajectory
	tr.AddPoint(0, 0.1, -0.3, 0.4)
	tr.AddPoint(0.13, 0.05, 0, 0)
	tr.AddPoint(0.31, 0.2, 0.1, -0.2)
	tr.AddPoint(0.6, 0.2, 0, 0)
	tr.Fit()

	segs := tr.Segments()
	for i := 1; i < len(segs); i++ {
		prev, next := segs[i-1], segs[i]
		test.That(t, prev.Poly.Pos(prev.Length), test.ShouldAlmostEqual, next.Poly.Pos(0), 1e-9)
		test.That(t, prev.Poly.Vel(prev.Length), test.ShouldAlmostEqual, next.Poly.Vel(0), 1e-7)
		test.That(t, prev.Poly.Acc(prev.Length), test.ShouldAlmostEqual, next.Poly.Acc(0), 1e-5)
	}
}

func TestTrajectorySkipsCoincidentPoints(t *testing.T) {
	var tr Trajectory
	tr.AddPoint(0, 2, 0, 0)
	tr.AddPoint(0.4, 2, 0, 0)
	tr.AddPoint(0.4, 2, 0, 0)
	tr.AddPoint(0.4+1e-7, 2, 0, 0)
	tr.Fit()
	test.That(t, len(tr.Segments()), test.ShouldEqual, 1)
	test.That(t, tr.Pos(0.2), test.ShouldAlmostEqual, 2)

	var single Trajectory
	single.AddPoint(0.3, -1, 0.5, 0)
	single.Fit()
	test.That(t, len(single.Segments()), test.ShouldEqual, 0)
	pos, vel, _ := single.Evaluate(10)
	test.That(t, pos, test.ShouldEqual, -1.0)
	test.That(t, vel, test.ShouldEqual, 0.5)
}

func TestTrajectoryAddSegment(t *testing.T) {
	var tr Trajectory
	test.That(t, func() { tr.AddSegment(0.1, Boundary{}) }, test.ShouldPanic)

	tr.AddPoint(0, 1, 0, 0)
	tr.AddSegment(0.25, Boundary{Pos: 2})
	tr.AddSegment(0.25, Boundary{Pos: 2, Vel: 1})
	test.That(t, func() { tr.AddSegment(0, Boundary{}) }, test.ShouldPanic)
	tr.Fit()

	test.That(t, len(tr.Segments()), test.ShouldEqual, 2)
	test.That(t, tr.Max(), test.ShouldAlmostEqual, 0.5)
	test.That(t, tr.Pos(0.25), test.ShouldAlmostEqual, 2)
	test.That(t, tr.Vel(0.5), test.ShouldAlmostEqual, 1)
}

func TestTrajectoryMustBeFitted(t *testing.T) {
	var tr Trajectory
	tr.AddPoint(0, 1, 0, 0)
	test.That(t, func() { tr.Evaluate(0) }, test.ShouldPanic)
	tr.Fit()
	tr.AddPoint(1, 0, 0, 0)
	test.That(t, func() { tr.Evaluate(0) }, test.ShouldPanic)
	tr.Reset()
	tr.Fit()
	test.That(t, func() { tr.Evaluate(0) }, test.ShouldPanic)
}

func TestAbsolutePolynomials(t *testing.T) {
	var tr Trajectory
	tr.AddPoint(0.1, 0, 0, 0)
	tr.AddPoint(0.4, 1, 0.5, 0)
	tr.AddPoint(0.9, -0.5, 0, 0)
	tr.Fit()

	polys := tr.AbsolutePolynomials()
	segs := tr.Segments()
	test.That(t, len(polys), test.ShouldEqual, len(segs))
	for i, s := range segs {
		for _, frac := range []float64{0, 0.3, 1} {
			at := s.Start + frac*s.Length
			test.That(t, polys[i].Pos(at), test.ShouldAlmostEqual, tr.Pos(at), 1e-9)
			test.That(t, polys[i].Vel(at), test.ShouldAlmostEqual, tr.Vel(at), 1e-7)
		}
	}
}
