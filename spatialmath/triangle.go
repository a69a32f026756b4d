package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Triangle is one face of a sector mesh.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	normal r3.Vector
}

// NewTriangle creates a triangle from three points in counter-clockwise order.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

// Points returns the corners of the triangle.
func (t *Triangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the unit normal, or the zero vector if the triangle has no area.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return 0.5 * t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0)).Norm()
}

// Collapsed reports whether two corners of the triangle are the same point. Stitching a sector
// edge collapses triangles this way instead of removing them.
func (t *Triangle) Collapsed() bool {
	return t.p0 == t.p1 || t.p1 == t.p2 || t.p2 == t.p0
}

// PlaneNormal returns the unit normal of the plane through three points, following the right
// hand rule.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Norm2() == 0 {
		return r3.Vector{}
	}
	return n.Normalize()
}
