// Package scene is the mesh substrate sectors are built on: grid geometries, materials, meshes
// and the nodes meshes attach to.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/cyberwyvern/QuadtreePlanet/spatialmath"
	"github.com/cyberwyvern/QuadtreePlanet/utils"
)

// GridGeometry is a Width×Height lattice of vertex positions stored row by row: the vertex at
// column x of row y lives at Positions[Width*y + x]. The connectivity of the lattice is fixed;
// only positions change.
type GridGeometry struct {
	Width     int
	Height    int
	Positions []r3.Vector
}

// NewPlaneGeometry allocates a flat square grid of the given side length centered on the origin
// in the z=0 plane, split into segments×segments cells. x grows along +X and y along +Y.
func NewPlaneGeometry(size float64, segments int) (*GridGeometry, error) {
	if segments < 1 {
		return nil, errors.Errorf("plane needs at least one segment, got %d", segments)
	}
	n := segments + 1
	half := size / 2

	// Single varies its last column fastest, so column 0 is y and column 1 is x.
	lattice := utils.Single(2, utils.Span(-half, half, n))
	g := &GridGeometry{
		Width:     n,
		Height:    n,
		Positions: make([]r3.Vector, n*n),
	}
	for i := range g.Positions {
		g.Positions[i] = r3.Vector{X: lattice.At(i, 1), Y: lattice.At(i, 0)}
	}
	return g, nil
}

// Len returns the number of vertices.
func (g *GridGeometry) Len() int {
	return len(g.Positions)
}

// Index returns the flat index of the vertex at (x, y).
func (g *GridGeometry) Index(x, y int) int {
	return g.Width*y + x
}

// At returns the position of the vertex at (x, y).
func (g *GridGeometry) At(x, y int) r3.Vector {
	return g.Positions[g.Index(x, y)]
}

// Set overwrites the position of the vertex at (x, y).
func (g *GridGeometry) Set(x, y int, v r3.Vector) {
	g.Positions[g.Index(x, y)] = v
}

// ApplyMatrix4 transforms every vertex by m in place.
func (g *GridGeometry) ApplyMatrix4(m mgl64.Mat4) {
	for i, p := range g.Positions {
		g.Positions[i] = spatialmath.TransformPoint(m, p)
	}
}

// Triangles returns the two triangles of every cell, counter-clockwise when seen from +Z before
// placement.
func (g *GridGeometry) Triangles() []*spatialmath.Triangle {
	tris := make([]*spatialmath.Triangle, 0, 2*(g.Width-1)*(g.Height-1))
	for y := 0; y < g.Height-1; y++ {
		for x := 0; x < g.Width-1; x++ {
			a, b := g.At(x, y), g.At(x+1, y)
			c, d := g.At(x+1, y+1), g.At(x, y+1)
			tris = append(tris, spatialmath.NewTriangle(a, b, d), spatialmath.NewTriangle(b, c, d))
		}
	}
	return tris
}
