package utils

import (
	"github.com/pkg/errors"
)

// NewDensityError is used when a grid density is not a power of two of at least 2.
func NewDensityError(density int) error {
	return errors.Errorf("density must be a power of two of at least 2, got %d", density)
}

// NewRadiusError is used when a sphere radius is not positive and finite.
func NewRadiusError(radius float64) error {
	return errors.Errorf("sphere radius must be positive and finite, got %v", radius)
}
