package transform

import (
	"context"

	"go.viam.com/depthcloud/pointcloud"
	"go.viam.com/depthcloud/rimage"
)

// Projector can transform a depth buffer into world space geometry.
type Projector interface {
	// UnprojectPixel returns the world position of a single pixel at raw depth z.
	UnprojectPixel(i, j int, z float64) pointcloud.Point
	// ReconstructPointCloud unprojects a whole depth buffer.
	ReconstructPointCloud(ctx context.Context, db *rimage.DepthBuffer) (*pointcloud.Dense, error)
	// EstimateNormals computes per pixel surface normals of a depth buffer.
	EstimateNormals(ctx context.Context, db *rimage.DepthBuffer) (*pointcloud.Dense, error)
}

var _ Projector = (*DepthReconstructor)(nil)
