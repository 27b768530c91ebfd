// Package pointcloud defines the dense point clouds reconstructed from depth buffers, the
// aggregation of several clouds into one set of records, and the file formats those
// records are exported to.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// MetaData is data about what's stored in the point cloud.
type MetaData struct {
	// Valid is the number of valid points.
	Valid int

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// NewMetaData returns meta data for an empty cloud.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64,
		MinY: math.MaxFloat64,
		MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MaxY: -math.MaxFloat64,
		MaxZ: -math.MaxFloat64,
	}
}

// Merge adds v to the count and bounding box.
func (meta *MetaData) Merge(v r3.Vector) {
	meta.Valid++

	if v.X > meta.MaxX {
		meta.MaxX = v.X
	}
	if v.Y > meta.MaxY {
		meta.MaxY = v.Y
	}
	if v.Z > meta.MaxZ {
		meta.MaxZ = v.Z
	}

	if v.X < meta.MinX {
		meta.MinX = v.X
	}
	if v.Y < meta.MinY {
		meta.MinY = v.Y
	}
	if v.Z < meta.MinZ {
		meta.MinZ = v.Z
	}
}

// Center returns the middle of the bounding box, or the origin for an empty cloud.
func (meta MetaData) Center() r3.Vector {
	if meta.Valid == 0 {
		return r3.Vector{}
	}
	return r3.Vector{
		X: (meta.MinX + meta.MaxX) / 2,
		Y: (meta.MinY + meta.MaxY) / 2,
		Z: (meta.MinZ + meta.MaxZ) / 2,
	}
}

// PointCloud is a dense grid of optional points, one slot per pixel of the depth buffer it
// was built from. Invalid slots keep their place so pixel indexing stays row-major.
type PointCloud interface {
	// Width returns the number of columns.
	Width() int

	// Height returns the number of rows.
	Height() int

	// Size returns the number of valid points in the cloud.
	Size() int

	// MetaData returns meta data
	MetaData() MetaData

	// At returns the slot at column x, row y.
	At(x, y int) Point

	// Iterate calls fn for every slot in row-major order. If fn returns false,
	// iteration stops.
	Iterate(fn func(x, y int, p Point) bool)
}
