package pointcloud

import (
	"github.com/golang/geo/r3"
)

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Point is a position or direction that may be absent. Pixels that saw nothing, or whose
// neighbourhood was incomplete, produce a Point with Valid unset.
type Point struct {
	r3.Vector
	Valid bool
}

// NewPoint returns a valid point at v.
func NewPoint(v r3.Vector) Point {
	return Point{Vector: v, Valid: true}
}

// InvalidPoint is the empty slot.
var InvalidPoint = Point{}

// IsZero reports whether the position is exactly the origin, which older exports used to
// mark missing points.
func (p Point) IsZero() bool {
	return p.Vector == r3.Vector{}
}
