package spatialmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

// represent a 90 degree rotation around the y axis
var (
	th    = math.Pi / 2.
	q90y  = quat.Number{Real: math.Cos(th / 2.), Jmag: math.Sin(th / 2.)}
	aa90y = &R4AA{th, 0., 1., 0.}
)

func TestZeroOrientation(t *testing.T) {
	zero := NewZeroOrientation()
	test.That(t, zero, test.ShouldResemble, quat.Number{Real: 1, Imag: 0, Jmag: 0, Kmag: 0})
	v := RotateVector(zero, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, v, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, Forward(zero), test.ShouldResemble, r3.Vector{Z: -1})
}

func TestAxisAngleToQuat(t *testing.T) {
	q := aa90y.ToQuat()
	test.That(t, QuaternionAlmostEqual(q, q90y, 1e-9), test.ShouldBeTrue)

	back := QuatToR4AA(q)
	test.That(t, back.Theta, test.ShouldAlmostEqual, th)
	test.That(t, back.RY, test.ShouldAlmostEqual, 1.)

	r3aa := aa90y.ToR3()
	test.That(t, R3ToR4(r3aa).Theta, test.ShouldAlmostEqual, th)
	test.That(t, R3ToR4(r3.Vector{}), test.ShouldResemble, NewR4AA())

	degenerate := &R4AA{Theta: 1}
	test.That(t, degenerate.ToQuat(), test.ShouldResemble, NewZeroOrientation())
}

func TestRotateVector(t *testing.T) {
	// +90 about Y takes -Z to -X
	v := RotateVector(q90y, r3.Vector{Z: -1})
	test.That(t, v.X, test.ShouldAlmostEqual, -1.)
	test.That(t, v.Y, test.ShouldAlmostEqual, 0.)
	test.That(t, v.Z, test.ShouldAlmostEqual, 0.)

	// matches the mathgl rotation matrix
	m := RotationMat4(q90y)
	mv := m.Mul4x1(mgl64.Vec4{0.3, -2, 5, 0})
	rv := RotateVector(q90y, r3.Vector{X: 0.3, Y: -2, Z: 5})
	test.That(t, mv.X(), test.ShouldAlmostEqual, rv.X)
	test.That(t, mv.Y(), test.ShouldAlmostEqual, rv.Y)
	test.That(t, mv.Z(), test.ShouldAlmostEqual, rv.Z)
}

func TestNormalize(t *testing.T) {
	q, err := Normalize(quat.Number{Real: 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q, test.ShouldResemble, quat.Number{Real: 1})

	_, err = Normalize(quat.Number{})
	test.That(t, err, test.ShouldBeError, ErrZeroQuaternion)
}

func TestQuaternionAlmostEqualSign(t *testing.T) {
	test.That(t, QuaternionAlmostEqual(q90y, quat.Scale(-1, q90y), 1e-9), test.ShouldBeTrue)
	test.That(t, QuaternionAlmostEqual(q90y, NewZeroOrientation(), 1e-3), test.ShouldBeFalse)
}

func TestEulerDegrees(t *testing.T) {
	q := NewQuatFromEulerDegrees(0, 90, 0)
	test.That(t, QuaternionAlmostEqual(q, q90y, 1e-9), test.ShouldBeTrue)
	test.That(t, RadiansToDegrees(DegreesToRadians(33)), test.ShouldAlmostEqual, 33.)
}
