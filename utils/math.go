package utils

import (
	"math"
	"strconv"
)

// Float32Text formats f the way single precision values are conventionally printed: the
// shortest decimal text that reads back to the same float32.
func Float32Text(f float64) string {
	return strconv.FormatFloat(float64(float32(f)), 'g', -1, 32)
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Clamp returns value limited to the closed range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
