package footstep

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/legged-robots/quinticwalk/spatialmath"
)

func TestReset(t *testing.T) {
	f := New(0.2, true)
	test.That(t, f.IsLeftSupport(), test.ShouldBeTrue)
	test.That(t, f.Next(), test.ShouldResemble, spatialmath.Pose2D{Y: -0.2})
	test.That(t, f.Last(), test.ShouldResemble, f.Next())
	test.That(t, f.LeftInWorld(), test.ShouldResemble, spatialmath.Pose2D{})
	test.That(t, f.RightInWorld(), test.ShouldResemble, spatialmath.Pose2D{Y: -0.2})

	f.Reset(false)
	test.That(t, f.IsLeftSupport(), test.ShouldBeFalse)
	test.That(t, f.Next(), test.ShouldResemble, spatialmath.Pose2D{Y: 0.2})
	test.That(t, f.FootDistance(), test.ShouldEqual, 0.2)
}

func TestStepFromOrdersAlternatesSupport(t *testing.T) {
	f := New(0.2, true)
	for i := 0; i < 6; i++ {
		wasLeft := f.IsLeftSupport()
		f.StepFromOrders(r3.Vector{X: 0.05})
		test.That(t, f.IsLeftSupport(), test.ShouldEqual, !wasLeft)
		// the flying foot always lands on its own side of the support foot
		if f.IsLeftSupport() {
			test.That(t, f.Next().Y, test.ShouldAlmostEqual, -0.2)
		} else {
			test.That(t, f.Next().Y, test.ShouldAlmostEqual, 0.2)
		}
		test.That(t, f.Next().X, test.ShouldAlmostEqual, 0.05)
	}
}

func TestStepFromOrdersLastIsPreviousSupport(t *testing.T) {
	f := New(0.2, true)
	f.StepFromOrders(r3.Vector{X: 0.04, Z: 0.1})
	prevNext := f.Next()
	f.StepFromOrders(r3.Vector{X: 0.04, Z: 0.1})
	test.That(t, f.Last().AlmostEqual(prevNext.Inverse(), 1e-12), test.ShouldBeTrue)
	test.That(t, f.Next().Theta, test.ShouldAlmostEqual, 0.1)
}

func TestLateralOrdersOnlyMoveOuterFoot(t *testing.T) {
	// left support: the left foot flies next, walking left widens the stance
	f := New(0.2, true)
	f.StepFromOrders(r3.Vector{Y: 0.03})
	test.That(t, f.Next().Y, test.ShouldAlmostEqual, 0.23)

	// right foot flies next, walking left keeps the inner foot at stance distance
	f.StepFromOrders(r3.Vector{Y: 0.03})
	test.That(t, f.Next().Y, test.ShouldAlmostEqual, -0.2)

	f.Reset(false)
	f.StepFromOrders(r3.Vector{Y: -0.03})
	test.That(t, f.Next().Y, test.ShouldAlmostEqual, -0.23)
}

func TestWorldOdometryStraightWalk(t *testing.T) {
	f := New(0.2, true)
	for i := 0; i < 10; i++ {
		f.StepFromVelocity(r3.Vector{X: 0.1}, 0.5)
	}
	// each step puts the flying foot 5cm ahead of the support foot
	test.That(t, f.IsLeftSupport(), test.ShouldBeTrue)
	test.That(t, f.LeftInWorld().X, test.ShouldAlmostEqual, 0.45)
	test.That(t, f.LeftInWorld().Y, test.ShouldAlmostEqual, 0)
	test.That(t, f.RightInWorld().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, f.RightInWorld().Y, test.ShouldAlmostEqual, -0.2)
}

func TestWorldOdometryTurnInPlace(t *testing.T) {
	f := New(0.2, true)
	for i := 0; i < 4; i++ {
		f.StepFromOrders(r3.Vector{Z: math.Pi / 8})
	}
	test.That(t, f.LeftInWorld().Theta, test.ShouldAlmostEqual, 3*math.Pi/8)
	test.That(t, f.RightInWorld().Theta, test.ShouldAlmostEqual, math.Pi/2)
	// feet stay stance distance apart
	l, r := f.LeftInWorld(), f.RightInWorld()
	test.That(t, math.Hypot(l.X-r.X, l.Y-r.Y), test.ShouldAlmostEqual, 0.2)
}

func TestCopyIsReadable(t *testing.T) {
	f := New(0.2, true)
	f.StepFromOrders(r3.Vector{X: 0.1})

	snapshot := func() Footstep { return *f }
	test.That(t, snapshot().IsLeftSupport(), test.ShouldBeFalse)
	test.That(t, snapshot().FootDistance(), test.ShouldEqual, 0.2)
	test.That(t, snapshot().Next(), test.ShouldResemble, f.Next())
	test.That(t, snapshot().Last(), test.ShouldResemble, f.Last())
	test.That(t, snapshot().LeftInWorld(), test.ShouldResemble, f.LeftInWorld())
	test.That(t, snapshot().RightInWorld(), test.ShouldResemble, f.RightInWorld())

	// the copy does not follow later steps
	c := *f
	f.StepFromOrders(r3.Vector{X: 0.1})
	test.That(t, c.IsLeftSupport(), test.ShouldBeFalse)
	test.That(t, f.IsLeftSupport(), test.ShouldBeTrue)
}
