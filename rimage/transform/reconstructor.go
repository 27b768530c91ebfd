package transform

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/depthcloud/logging"
	"go.viam.com/depthcloud/pointcloud"
	"go.viam.com/depthcloud/rimage"
	"go.viam.com/depthcloud/spatialmath"
	"go.viam.com/depthcloud/utils"
)

// DepthReconstructor rebuilds world space geometry from the depth buffers of one camera.
// The camera is fixed for the lifetime of the reconstructor and the far plane position of
// every pixel is computed once up front.
type DepthReconstructor struct {
	params   CameraParameters
	zbp      ZBufferParams
	rotation quat.Number
	farPlane []r3.Vector
	logger   logging.Logger
}

// NewDepthReconstructor validates params and precomputes the per-pixel rays.
func NewDepthReconstructor(params CameraParameters, logger logging.Logger) (*DepthReconstructor, error) {
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	dr := &DepthReconstructor{
		params:   params,
		zbp:      params.ZBufferParams(),
		rotation: params.Rotation(),
		farPlane: make([]r3.Vector, params.Width*params.Height),
		logger:   logger,
	}

	inv := params.InverseViewProjection()
	for j := 0; j < params.Height; j++ {
		for i := 0; i < params.Width; i++ {
			ndc := mgl64.Vec4{
				2*(float64(i)+0.5)/float64(params.Width) - 1,
				2*(float64(j)+0.5)/float64(params.Height) - 1,
				1,
				1,
			}
			world := inv.Mul4x1(ndc)
			dr.farPlane[j*params.Width+i] = r3.Vector{
				X: world[0] / world[3],
				Y: world[1] / world[3],
				Z: world[2] / world[3],
			}
		}
	}
	logger.Debugw("depth reconstructor ready", "width", params.Width, "height", params.Height,
		"near", params.Near, "far", params.Far)
	return dr, nil
}

// Parameters returns the camera the reconstructor was built for.
func (dr *DepthReconstructor) Parameters() CameraParameters {
	return dr.params
}

// UnprojectPixel returns the world position of the surface seen at column i, row j (row 0
// at the bottom) with raw depth z.
func (dr *DepthReconstructor) UnprojectPixel(i, j int, z float64) pointcloud.Point {
	if i < 0 || j < 0 || i >= dr.params.Width || j >= dr.params.Height {
		return pointcloud.InvalidPoint
	}
	linear01, ok := LinearizeDepth(z, dr.zbp)
	if !ok {
		return pointcloud.InvalidPoint
	}
	far := dr.farPlane[j*dr.params.Width+i]
	origin := dr.params.Position
	return pointcloud.NewPoint(origin.Add(far.Sub(origin).Mul(linear01)))
}

func (dr *DepthReconstructor) checkBuffer(db *rimage.DepthBuffer) error {
	if db == nil {
		return errors.New("depth buffer is nil")
	}
	if db.Width() != dr.params.Width || db.Height() != dr.params.Height {
		return rimage.NewDimensionMismatchError("depth buffer and camera don't match DepthBuffer(%d,%d) != Camera(%d,%d)",
			db.Width(), db.Height(), dr.params.Width, dr.params.Height)
	}
	return nil
}

// ReconstructPointCloud unprojects every pixel of db. The result keeps one slot per pixel;
// pixels with no surface are invalid.
func (dr *DepthReconstructor) ReconstructPointCloud(ctx context.Context, db *rimage.DepthBuffer) (*pointcloud.Dense, error) {
	if err := dr.checkBuffer(db); err != nil {
		return nil, err
	}
	pc, err := pointcloud.NewDense(db.Width(), db.Height())
	if err != nil {
		return nil, err
	}

	width := db.Width()
	err = utils.GroupWorkParallel(ctx, db.Height(), func(_, _, _, _ int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
		return func(_, j int) {
			for i := 0; i < width; i++ {
				pc.Set(i, j, dr.UnprojectPixel(i, j, db.Get(i, j)))
			}
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return pc, nil
}

// EstimateNormals computes a surface normal per interior pixel from central differences of
// the raw depth. Border pixels, and pixels where any of the five samples has no surface,
// are invalid.
func (dr *DepthReconstructor) EstimateNormals(ctx context.Context, db *rimage.DepthBuffer) (*pointcloud.Dense, error) {
	if err := dr.checkBuffer(db); err != nil {
		return nil, err
	}
	normals, err := pointcloud.NewDense(db.Width(), db.Height())
	if err != nil {
		return nil, err
	}
	width, height := db.Width(), db.Height()
	if width < 3 || height < 3 {
		return normals, nil
	}

	err = utils.GroupWorkParallel(ctx, height-2, func(_, _, _, _ int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
		return func(_, row int) {
			j := row + 1
			for i := 1; i < width-1; i++ {
				normals.Set(i, j, dr.normalAt(db, i, j))
			}
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return normals, nil
}

func (dr *DepthReconstructor) normalAt(db *rimage.DepthBuffer, i, j int) pointcloud.Point {
	center := db.Get(i, j)
	left, right := db.Get(i-1, j), db.Get(i+1, j)
	down, up := db.Get(i, j-1), db.Get(i, j+1)
	for _, z := range []float64{center, left, right, down, up} {
		if !rimage.IsSurface(z) {
			return pointcloud.InvalidPoint
		}
	}
	dzdx := (left - right) / 2
	dzdy := (down - up) / 2
	n := r3.Vector{X: -dzdx, Y: -dzdy, Z: 1}.Normalize()
	return pointcloud.NewPoint(spatialmath.RotateVector(dr.rotation, n).Mul(-1))
}
