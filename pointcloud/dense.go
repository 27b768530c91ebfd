package pointcloud

import (
	"github.com/golang/geo/r3"

	"go.viam.com/depthcloud/rimage"
)

// Dense is the PointCloud implementation backed by a flat row-major slice. Distinct slots
// may be written from different goroutines.
type Dense struct {
	width  int
	height int
	points []Point
}

// NewDense returns a cloud of width*height invalid slots.
func NewDense(width, height int) (*Dense, error) {
	if width <= 0 || height <= 0 {
		return nil, rimage.NewDimensionMismatchError("point cloud must have a positive size, got %dx%d", width, height)
	}
	return &Dense{
		width:  width,
		height: height,
		points: make([]Point, width*height),
	}, nil
}

// Width returns the number of columns.
func (cloud *Dense) Width() int {
	return cloud.width
}

// Height returns the number of rows.
func (cloud *Dense) Height() int {
	return cloud.height
}

// Len returns the number of slots, valid or not.
func (cloud *Dense) Len() int {
	return len(cloud.points)
}

// Size returns the number of valid points.
func (cloud *Dense) Size() int {
	n := 0
	for _, p := range cloud.points {
		if p.Valid {
			n++
		}
	}
	return n
}

// MetaData scans the cloud for its valid count and bounds.
func (cloud *Dense) MetaData() MetaData {
	meta := NewMetaData()
	for _, p := range cloud.points {
		if p.Valid {
			meta.Merge(p.Vector)
		}
	}
	return meta
}

// At returns the slot at column x, row y.
func (cloud *Dense) At(x, y int) Point {
	return cloud.points[y*cloud.width+x]
}

// Set stores p at column x, row y.
func (cloud *Dense) Set(x, y int, p Point) {
	cloud.points[y*cloud.width+x] = p
}

// Points returns the underlying slots.
func (cloud *Dense) Points() []Point {
	return cloud.points
}

// Iterate calls fn for every slot in row-major order.
func (cloud *Dense) Iterate(fn func(x, y int, p Point) bool) {
	for i, p := range cloud.points {
		if !fn(i%cloud.width, i/cloud.width, p) {
			return
		}
	}
}

// ValidVectors returns the valid points in row-major order.
func (cloud *Dense) ValidVectors() []r3.Vector {
	return Merge(cloud)
}
