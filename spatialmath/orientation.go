// Package spatialmath defines the rotation helpers used to place virtual cameras in the world.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

const (
	radToDeg = 180 / math.Pi
	degToRad = math.Pi / 180
)

// ErrZeroQuaternion is returned when a rotation is requested from a quaternion of length zero.
var ErrZeroQuaternion = errors.New("cannot normalize a zero quaternion")

// NewZeroOrientation returns an orientation which signifies no rotation.
func NewZeroOrientation() quat.Number {
	return quat.Number{Real: 1}
}

// Normalize returns the unit quaternion pointing the same way as q.
func Normalize(q quat.Number) (quat.Number, error) {
	norm := quat.Abs(q)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return quat.Number{}, ErrZeroQuaternion
	}
	return quat.Scale(1/norm, q), nil
}

// RotateVector rotates v by the unit quaternion q (q * v * q^-1).
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// Forward returns the direction a camera with orientation q looks toward. Cameras look down
// their local -Z axis.
func Forward(q quat.Number) r3.Vector {
	return RotateVector(q, r3.Vector{Z: -1})
}

// QuaternionAlmostEqual is an equality test for quaternions. q and -q describe the same
// rotation and compare equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	closeTo := func(x, y quat.Number) bool {
		return math.Abs(x.Real-y.Real) < tol &&
			math.Abs(x.Imag-y.Imag) < tol &&
			math.Abs(x.Jmag-y.Jmag) < tol &&
			math.Abs(x.Kmag-y.Kmag) < tol
	}
	return closeTo(a, b) || closeTo(a, quat.Scale(-1, b))
}

// QuatToMGL converts a gonum quaternion into the mathgl representation.
func QuatToMGL(q quat.Number) mgl64.Quat {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}
}

// RotationMat4 returns the homogeneous rotation matrix of q.
func RotationMat4(q quat.Number) mgl64.Mat4 {
	return QuatToMGL(q).Normalize().Mat4()
}

// NewQuatFromEulerDegrees builds an orientation that rotates about the world Z axis first,
// then X, then Y, the order game engines use for camera transforms.
func NewQuatFromEulerDegrees(x, y, z float64) quat.Number {
	qx := (&R4AA{Theta: x * degToRad, RX: 1}).ToQuat()
	qy := (&R4AA{Theta: y * degToRad, RY: 1}).ToQuat()
	qz := (&R4AA{Theta: z * degToRad, RZ: 1}).ToQuat()
	return quat.Mul(quat.Mul(qy, qx), qz)
}
