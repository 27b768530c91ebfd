package transform

import (
	"go.viam.com/depthcloud/rimage"
)

// ZBufferParams are the constants that linearize reversed-Z device depth:
// X = 1 - far/near, Y = far/near, Z = X/far, W = Y/far.
type ZBufferParams struct {
	X, Y, Z, W float64
}

// NewZBufferParams computes the constants for the given clip planes.
func NewZBufferParams(near, far float64) ZBufferParams {
	x := 1 - far/near
	y := far / near
	return ZBufferParams{X: x, Y: y, Z: x / far, W: y / far}
}

// LinearizeDepth maps a raw reversed-Z sample to linear depth in [near/far, 1], where 1 is
// the far plane. ok is false for samples where nothing was rendered.
func LinearizeDepth(z float64, zbp ZBufferParams) (linear01 float64, ok bool) {
	if !rimage.IsSurface(z) {
		return 0, false
	}
	return 1 / (zbp.X*(1-z) + zbp.Y), true
}

// LinearEyeDepth maps a raw reversed-Z sample to its distance along the view axis in world
// units.
func LinearEyeDepth(z float64, zbp ZBufferParams) (float64, bool) {
	if !rimage.IsSurface(z) {
		return 0, false
	}
	return 1 / (zbp.Z*(1-z) + zbp.W), true
}

// EncodeEyeDepth is the inverse of LinearEyeDepth: it returns the raw sample a renderer
// writes for a surface at the given eye depth.
func EncodeEyeDepth(eye float64, zbp ZBufferParams) float64 {
	return 1 - (1/eye-zbp.W)/zbp.Z
}
