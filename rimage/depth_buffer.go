// Package rimage holds the depth buffers that virtual cameras render and the helpers that
// read, write, and visualize them.
//
// A DepthBuffer stores non-linear device depth in [0, 1] using the reversed-Z convention:
// 1 is the near plane and 0 is the far plane. Row 0 is the bottom row of the rendered
// image, matching texture coordinates on the GPU.
package rimage

import (
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"
)

// MaxDimension bounds the width and height of any depth buffer read from a file.
const MaxDimension = 100000

// ErrDimensionMismatch is returned when buffer dimensions are zero or do not line up
// with the other inputs of an operation.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// NewDimensionMismatchError wraps ErrDimensionMismatch with details.
func NewDimensionMismatchError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDimensionMismatch, format, args...)
}

// DepthBuffer is a dense row-major grid of reversed-Z depth samples.
type DepthBuffer struct {
	width  int
	height int
	data   []float64
}

// NewEmptyDepthBuffer returns a buffer of the given size filled with 0 (the far plane).
func NewEmptyDepthBuffer(width, height int) (*DepthBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, NewDimensionMismatchError("depth buffer must have a positive size, got %dx%d", width, height)
	}
	return &DepthBuffer{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}, nil
}

// NewDepthBufferFromSlice wraps an existing row-major slice of samples. The slice is
// not copied.
func NewDepthBufferFromSlice(width, height int, data []float64) (*DepthBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, NewDimensionMismatchError("depth buffer must have a positive size, got %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, NewDimensionMismatchError("expected %d samples for %dx%d, got %d", width*height, width, height, len(data))
	}
	return &DepthBuffer{width: width, height: height, data: data}, nil
}

// NewConstantDepthBuffer returns a buffer where every sample is z.
func NewConstantDepthBuffer(width, height int, z float64) (*DepthBuffer, error) {
	db, err := NewEmptyDepthBuffer(width, height)
	if err != nil {
		return nil, err
	}
	for i := range db.data {
		db.data[i] = z
	}
	return db, nil
}

// Width returns the horizontal size of the buffer.
func (db *DepthBuffer) Width() int {
	return db.width
}

// Height returns the vertical size of the buffer.
func (db *DepthBuffer) Height() int {
	return db.height
}

// Bounds returns the rectangle covered by the buffer.
func (db *DepthBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, db.width, db.height)
}

// Contains reports whether (x, y) lies inside the buffer.
func (db *DepthBuffer) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < db.width && y < db.height
}

// Index returns the row-major index of (x, y).
func (db *DepthBuffer) Index(x, y int) int {
	return y*db.width + x
}

// Get returns the sample at (x, y).
func (db *DepthBuffer) Get(x, y int) float64 {
	return db.data[db.Index(x, y)]
}

// Set stores the sample at (x, y).
func (db *DepthBuffer) Set(x, y int, z float64) {
	db.data[db.Index(x, y)] = z
}

// Data returns the underlying row-major samples.
func (db *DepthBuffer) Data() []float64 {
	return db.data
}

// Clone returns a deep copy.
func (db *DepthBuffer) Clone() *DepthBuffer {
	data := make([]float64, len(db.data))
	copy(data, db.data)
	return &DepthBuffer{width: db.width, height: db.height, data: data}
}

// IsSurface reports whether z is a usable sample. Exactly 0 and 1 mean nothing was
// rendered there; NaN and values outside [0, 1] are rejected as well.
func IsSurface(z float64) bool {
	return z > 0 && z < 1
}

// MinMax returns the smallest and largest surface samples. ok is false when the buffer
// contains no surface at all.
func (db *DepthBuffer) MinMax() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, z := range db.data {
		if !IsSurface(z) {
			continue
		}
		ok = true
		if z < lo {
			lo = z
		}
		if z > hi {
			hi = z
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

func (db *DepthBuffer) String() string {
	return fmt.Sprintf("DepthBuffer(%dx%d)", db.width, db.height)
}
