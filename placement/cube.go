// Package placement maps sector addresses to the matrices that move the canonical flat tile
// onto its place on the cube.
package placement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/cyberwyvern/QuadtreePlanet/quadtree"
)

// faceFrame is the orientation of one cube face: the directions the tile's x and y axes point
// to, and the outward normal. u × v = normal on every face.
type faceFrame struct {
	u, v, normal mgl64.Vec3
}

// faceFrames follow the S2 face layout: faces 0-2 are +X, +Y, +Z and faces 3-5 are -X, -Y, -Z.
var faceFrames = [quadtree.NumFaces]faceFrame{
	{u: mgl64.Vec3{0, 1, 0}, v: mgl64.Vec3{0, 0, 1}, normal: mgl64.Vec3{1, 0, 0}},
	{u: mgl64.Vec3{-1, 0, 0}, v: mgl64.Vec3{0, 0, 1}, normal: mgl64.Vec3{0, 1, 0}},
	{u: mgl64.Vec3{-1, 0, 0}, v: mgl64.Vec3{0, -1, 0}, normal: mgl64.Vec3{0, 0, 1}},
	{u: mgl64.Vec3{0, 0, -1}, v: mgl64.Vec3{0, -1, 0}, normal: mgl64.Vec3{-1, 0, 0}},
	{u: mgl64.Vec3{0, 0, -1}, v: mgl64.Vec3{1, 0, 0}, normal: mgl64.Vec3{0, -1, 0}},
	{u: mgl64.Vec3{0, 1, 0}, v: mgl64.Vec3{1, 0, 0}, normal: mgl64.Vec3{0, 0, -1}},
}

// CubeTransformer places tiles on a cube whose faces are at distance radius from the origin.
// The canonical tile spans [-1,1]² in the z=0 plane. It holds no state and is safe for
// concurrent use.
type CubeTransformer struct{}

// NewCubeTransformer returns a CubeTransformer.
func NewCubeTransformer() *CubeTransformer {
	return &CubeTransformer{}
}

// Transform returns the placement matrix for the tile at addr. Each quadrant along the path
// halves the tile and moves it to its corner of the parent, in the parent's frame; the face
// frame then stands the tile on its cube face, and the result is scaled to radius.
func (ct *CubeTransformer) Transform(addr quadtree.Address, radius float64) (mgl64.Mat4, error) {
	if err := addr.Validate(); err != nil {
		return mgl64.Mat4{}, err
	}
	if radius <= 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
		return mgl64.Mat4{}, errors.Errorf("cannot place tile %s on a cube of radius %v", addr, radius)
	}

	face, _ := addr.Face()
	m := mgl64.Scale3D(radius, radius, radius).Mul4(FaceMatrix(face))
	for _, q := range addr.Quadrants() {
		m = m.Mul4(QuadrantMatrix(q))
	}
	return m, nil
}

// FaceMatrix maps the canonical tile onto the unit cube face.
func FaceMatrix(face int) mgl64.Mat4 {
	f := faceFrames[face]
	return mgl64.Mat4FromCols(
		f.u.Vec4(0),
		f.v.Vec4(0),
		f.normal.Vec4(0),
		f.normal.Vec4(1),
	)
}

// QuadrantMatrix maps the canonical tile onto quadrant q of the canonical tile.
func QuadrantMatrix(q quadtree.Quadrant) mgl64.Mat4 {
	x, y := q.Offset()
	return mgl64.Translate3D(x, y, 0).Mul4(mgl64.Scale3D(0.5, 0.5, 1))
}
