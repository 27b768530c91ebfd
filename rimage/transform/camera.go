// Package transform turns depth buffers rendered by a virtual camera back into world space
// points and surface normals.
package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/depthcloud/spatialmath"
	"go.viam.com/depthcloud/utils"
)

// ErrInvalidCameraParameters is returned when camera parameters cannot describe a projection.
var ErrInvalidCameraParameters = errors.New("invalid camera parameters")

// NewInvalidCameraParametersError wraps ErrInvalidCameraParameters with details.
func NewInvalidCameraParametersError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidCameraParameters, format, args...)
}

// CameraParameters describe the virtual camera a depth buffer was rendered with. The camera
// looks down its local -Z axis with +Y up.
type CameraParameters struct {
	Width  int
	Height int
	Near   float64
	Far    float64

	Position    r3.Vector
	Orientation quat.Number

	// Projection maps eye space to clip space using the OpenGL depth range.
	Projection mgl64.Mat4

	// InverseViewProjectionOverride, when set, is used instead of the matrix derived from
	// Projection, Position and Orientation.
	InverseViewProjectionOverride *mgl64.Mat4
}

// NewPerspectiveCamera returns parameters for a symmetric perspective camera with the given
// vertical field of view in degrees.
func NewPerspectiveCamera(
	width, height int,
	fovYDegrees, near, far float64,
	position r3.Vector,
	orientation quat.Number,
) (*CameraParameters, error) {
	if fovYDegrees <= 0 || fovYDegrees >= 180 {
		return nil, NewInvalidCameraParametersError("vertical field of view must be in (0, 180) degrees, got %v", fovYDegrees)
	}
	params := &CameraParameters{
		Width:       width,
		Height:      height,
		Near:        near,
		Far:         far,
		Position:    position,
		Orientation: orientation,
	}
	if height > 0 {
		params.Projection = mgl64.Perspective(
			spatialmath.DegreesToRadians(fovYDegrees), float64(width)/float64(height), near, far)
	}
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	return params, nil
}

// CheckValid checks that the parameters describe a usable camera.
func (params *CameraParameters) CheckValid() error {
	if params == nil {
		return NewInvalidCameraParametersError("camera parameters are nil")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewInvalidCameraParametersError("size must be positive, got %dx%d", params.Width, params.Height)
	}
	if !utils.IsFinite(params.Near) || !utils.IsFinite(params.Far) {
		return NewInvalidCameraParametersError("clip planes must be finite, got near=%v far=%v", params.Near, params.Far)
	}
	if params.Near <= 0 {
		return NewInvalidCameraParametersError("near plane must be positive, got %v", params.Near)
	}
	if params.Far <= params.Near {
		return NewInvalidCameraParametersError("far plane (%v) must be beyond near plane (%v)", params.Far, params.Near)
	}
	if _, err := spatialmath.Normalize(params.Orientation); err != nil {
		return NewInvalidCameraParametersError("orientation: %v", err)
	}
	inv := params.InverseViewProjection()
	for _, v := range inv {
		if !utils.IsFinite(v) {
			return NewInvalidCameraParametersError("inverse view-projection is not finite")
		}
	}
	if math.Abs(inv.Det()) < 1e-300 {
		return NewInvalidCameraParametersError("view-projection is not invertible")
	}
	return nil
}

// Rotation returns the normalized orientation. Parameters that fail CheckValid get the
// identity.
func (params *CameraParameters) Rotation() quat.Number {
	q, err := spatialmath.Normalize(params.Orientation)
	if err != nil {
		return spatialmath.NewZeroOrientation()
	}
	return q
}

// Forward returns the world direction the camera looks in.
func (params *CameraParameters) Forward() r3.Vector {
	return spatialmath.Forward(params.Rotation())
}

// ViewMatrix maps world space into the camera's eye space.
func (params *CameraParameters) ViewMatrix() mgl64.Mat4 {
	rot := spatialmath.RotationMat4(quat.Conj(params.Rotation()))
	return rot.Mul4(mgl64.Translate3D(-params.Position.X, -params.Position.Y, -params.Position.Z))
}

// InverseViewProjection maps normalized device coordinates back to world space.
func (params *CameraParameters) InverseViewProjection() mgl64.Mat4 {
	if params.InverseViewProjectionOverride != nil {
		return *params.InverseViewProjectionOverride
	}
	return params.Projection.Mul4(params.ViewMatrix()).Inv()
}

// ZBufferParams returns the linearization constants of the camera's clip planes.
func (params *CameraParameters) ZBufferParams() ZBufferParams {
	return NewZBufferParams(params.Near, params.Far)
}
