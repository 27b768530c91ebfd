package transform

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/depthcloud/spatialmath"
)

func newTestCamera(t *testing.T, width, height int, position r3.Vector, orientation quat.Number) *CameraParameters {
	t.Helper()
	params, err := NewPerspectiveCamera(width, height, 60, 0.1, 100, position, orientation)
	test.That(t, err, test.ShouldBeNil)
	return params
}

func TestCheckValid(t *testing.T) {
	good := newTestCamera(t, 4, 4, r3.Vector{}, spatialmath.NewZeroOrientation())
	test.That(t, good.CheckValid(), test.ShouldBeNil)

	for _, tc := range []struct {
		name   string
		mutate func(p *CameraParameters)
	}{
		{"zero width", func(p *CameraParameters) { p.Width = 0 }},
		{"zero near", func(p *CameraParameters) { p.Near = 0 }},
		{"negative far", func(p *CameraParameters) { p.Far = -1 }},
		{"far before near", func(p *CameraParameters) { p.Far = 0.05 }},
		{"zero orientation", func(p *CameraParameters) { p.Orientation = quat.Number{} }},
		{"no projection", func(p *CameraParameters) { p.Projection = mgl64.Mat4{} }},
		{"singular override", func(p *CameraParameters) { p.InverseViewProjectionOverride = &mgl64.Mat4{} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			params := *good
			tc.mutate(&params)
			err := params.CheckValid()
			test.That(t, errors.Is(err, ErrInvalidCameraParameters), test.ShouldBeTrue)
		})
	}

	var nilParams *CameraParameters
	test.That(t, errors.Is(nilParams.CheckValid(), ErrInvalidCameraParameters), test.ShouldBeTrue)
}

func TestNewPerspectiveCameraBad(t *testing.T) {
	_, err := NewPerspectiveCamera(4, 4, 0, 0.1, 100, r3.Vector{}, spatialmath.NewZeroOrientation())
	test.That(t, errors.Is(err, ErrInvalidCameraParameters), test.ShouldBeTrue)
	_, err = NewPerspectiveCamera(4, 0, 60, 0.1, 100, r3.Vector{}, spatialmath.NewZeroOrientation())
	test.That(t, errors.Is(err, ErrInvalidCameraParameters), test.ShouldBeTrue)
	_, err = NewPerspectiveCamera(4, 4, 60, 10, 1, r3.Vector{}, spatialmath.NewZeroOrientation())
	test.That(t, errors.Is(err, ErrInvalidCameraParameters), test.ShouldBeTrue)
}

func TestViewMatrix(t *testing.T) {
	q := spatialmath.NewQuatFromEulerDegrees(0, 90, 0)
	params := newTestCamera(t, 4, 4, r3.Vector{X: 1, Y: 2, Z: 3}, q)

	// the camera position maps to the eye space origin
	eye := params.ViewMatrix().Mul4x1(mgl64.Vec4{1, 2, 3, 1})
	test.That(t, eye.Vec3().Len(), test.ShouldAlmostEqual, 0, 1e-12)

	// a point straight ahead of the camera lands on eye space -Z
	ahead := params.Position.Add(params.Forward().Mul(5))
	eye = params.ViewMatrix().Mul4x1(mgl64.Vec4{ahead.X, ahead.Y, ahead.Z, 1})
	test.That(t, eye[0], test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, eye[1], test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, eye[2], test.ShouldAlmostEqual, -5, 1e-9)

	test.That(t, params.Forward().Distance(r3.Vector{X: -1}), test.ShouldBeLessThan, 1e-9)
}
