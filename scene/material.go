package scene

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Material is the rendering style shared by every sector of a planet. The builder never looks
// inside it.
type Material struct {
	Name      string
	Color     colorful.Color
	Wireframe bool
}

// DefaultMaterial returns a plain white material.
func DefaultMaterial() *Material {
	return &Material{Name: "default", Color: colorful.Color{R: 1, G: 1, B: 1}}
}

// ParseMaterialColor parses a "#rrggbb" color.
func ParseMaterialColor(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, errors.Wrapf(err, "invalid material color %q", hex)
	}
	return c, nil
}
