// Package spatialmath holds the vector and matrix operations used to place sectors on the
// sphere.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// IsFinite reports whether no component of v is NaN or infinite.
func IsFinite(v r3.Vector) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
