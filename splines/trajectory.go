package splines

import (
	"sort"

	"github.com/pkg/errors"
)

// MinSegmentLength is the shortest gap between two via-points that still gets
// its own segment. Closer via-points collapse onto the earlier one.
const MinSegmentLength = 1e-5

// Boundary is the value, velocity and acceleration a trajectory must pass
// through at a via-point.
type Boundary struct {
	Pos float64
	Vel float64
	Acc float64
}

// Segment is a quintic valid over [Start, Start+Length], evaluated at the
// offset from Start.
type Segment struct {
	Poly   Polynomial
	Start  float64
	Length float64
}

// End returns the time at which the segment stops being valid.
func (s Segment) End() float64 {
	return s.Start + s.Length
}

type viaPoint struct {
	t float64
	Boundary
}

// Trajectory is a piecewise quintic through a set of via-points. Via-points are
// added first, then Fit builds one segment per consecutive pair.
type Trajectory struct {
	points   []viaPoint
	segments []Segment
	fitted   bool
}

// AddPoint records a via-point at time t. Points may be added in any order.
func (tr *Trajectory) AddPoint(t, pos, vel, acc float64) {
	tr.points = append(tr.points, viaPoint{t, Boundary{pos, vel, acc}})
	tr.fitted = false
}

// AddSegment appends a via-point duration seconds after the latest via-point,
// which makes the next fitted segment run from that point's boundary to end.
func (tr *Trajectory) AddSegment(duration float64, end Boundary) {
	if len(tr.points) == 0 {
		panic(errors.New("cannot append a segment to a trajectory without a start point"))
	}
	if duration <= 0 {
		panic(errors.Errorf("cannot append a segment of non-positive duration %v", duration))
	}
	last := tr.points[0].t
	for _, p := range tr.points[1:] {
		if p.t > last {
			last = p.t
		}
	}
	tr.AddPoint(last+duration, end.Pos, end.Vel, end.Acc)
}

// Fit sorts the via-points by time and fits the segments between them.
func (tr *Trajectory) Fit() {
	sort.SliceStable(tr.points, func(i, j int) bool { return tr.points[i].t < tr.points[j].t })
	tr.segments = tr.segments[:0]
	for i := 1; i < len(tr.points); i++ {
		from, to := tr.points[i-1], tr.points[i]
		length := to.t - from.t
		if length < MinSegmentLength {
			continue
		}
		tr.segments = append(tr.segments, Segment{
			Poly:   FitQuintic(length, from.Pos, from.Vel, from.Acc, to.Pos, to.Vel, to.Acc),
			Start:  from.t,
			Length: length,
		})
	}
	tr.fitted = true
}

// Reset drops all via-points and segments.
func (tr *Trajectory) Reset() {
	tr.points = nil
	tr.segments = nil
	tr.fitted = false
}

// Segments returns the fitted segments in time order.
func (tr *Trajectory) Segments() []Segment {
	tr.mustBeFitted()
	return tr.segments
}

// Min returns the start time of the trajectory.
func (tr *Trajectory) Min() float64 {
	tr.mustBeFitted()
	if len(tr.segments) == 0 {
		return tr.constantPoint().t
	}
	return tr.segments[0].Start
}

// Max returns the end time of the trajectory.
func (tr *Trajectory) Max() float64 {
	tr.mustBeFitted()
	if len(tr.segments) == 0 {
		return tr.constantPoint().t
	}
	return tr.segments[len(tr.segments)-1].End()
}

// Evaluate returns value, velocity and acceleration at t. Times outside the
// fitted range clamp to the nearest end.
func (tr *Trajectory) Evaluate(t float64) (pos, vel, acc float64) {
	tr.mustBeFitted()
	if len(tr.segments) == 0 {
		// all via-points share one instant
		p := tr.constantPoint()
		return p.Pos, p.Vel, p.Acc
	}
	if first := tr.segments[0]; t <= first.Start {
		return first.Poly.Pos(0), first.Poly.Vel(0), first.Poly.Acc(0)
	}
	for _, s := range tr.segments {
		if t <= s.End() {
			dt := t - s.Start
			return s.Poly.Pos(dt), s.Poly.Vel(dt), s.Poly.Acc(dt)
		}
	}
	last := tr.segments[len(tr.segments)-1]
	return last.Poly.Pos(last.Length), last.Poly.Vel(last.Length), last.Poly.Acc(last.Length)
}

// Pos returns the value at t.
func (tr *Trajectory) Pos(t float64) float64 {
	pos, _, _ := tr.Evaluate(t)
	return pos
}

// Vel returns the velocity at t.
func (tr *Trajectory) Vel(t float64) float64 {
	_, vel, _ := tr.Evaluate(t)
	return vel
}

// Acc returns the acceleration at t.
func (tr *Trajectory) Acc(t float64) float64 {
	_, _, acc := tr.Evaluate(t)
	return acc
}

// AbsolutePolynomials returns every segment's polynomial expressed in absolute
// time rather than as an offset from the segment start.
func (tr *Trajectory) AbsolutePolynomials() []Polynomial {
	segs := tr.Segments()
	out := make([]Polynomial, 0, len(segs))
	for _, s := range segs {
		out = append(out, s.Poly.Shift(-s.Start))
	}
	return out
}

func (tr *Trajectory) mustBeFitted() {
	if !tr.fitted {
		panic(errors.New("trajectory evaluated before Fit"))
	}
	if len(tr.points) == 0 {
		panic(errors.New("trajectory has no via-points"))
	}
}

func (tr *Trajectory) constantPoint() viaPoint {
	return tr.points[len(tr.points)-1]
}
