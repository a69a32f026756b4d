package sector

import (
	"github.com/cyberwyvern/QuadtreePlanet/quadtree"
	"github.com/cyberwyvern/QuadtreePlanet/scene"
)

// glueEdges halves the resolution of the edges a tile in quadrant q shares with its parent's
// boundary, so that a neighbor one level coarser meets it without cracks. Every other vertex of
// such an edge is kept as an anchor and the ones between are moved onto an adjacent anchor. Only
// positions change; the grid keeps its size and connectivity, and the triangles at moved
// vertices collapse to zero area.
//
// Edges are stitched bottom, right, top, left; corners can be touched twice. A quadrant outside
// 0..3 stitches nothing. glueEdges returns the edges it stitched.
func glueEdges(g *scene.GridGeometry, q quadtree.Quadrant) []quadtree.Edge {
	edges := q.BoundaryEdges()
	for _, edge := range edges {
		switch edge {
		case quadtree.Bottom:
			glueBottom(g)
		case quadtree.Right:
			glueRight(g)
		case quadtree.Top:
			glueTop(g)
		case quadtree.Left:
			glueLeft(g)
		}
	}
	return edges
}

// merge overwrites the vertex at (x, y) with the vertex at (ax, ay).
func merge(g *scene.GridGeometry, x, y, ax, ay int) {
	g.Set(x, y, g.At(ax, ay))
}

// glueBottom folds odd columns of row 0 onto their left neighbor.
func glueBottom(g *scene.GridGeometry) {
	for x := 1; x < g.Width; x += 2 {
		merge(g, x, 0, x-1, 0)
	}
}

// glueRight folds odd rows of the last column onto the row above.
func glueRight(g *scene.GridGeometry) {
	last := g.Width - 1
	for y := 1; y+1 < g.Height; y += 2 {
		merge(g, last, y, last, y+1)
	}
}

// glueTop walks the last row right to left, folding every other vertex onto its right neighbor.
func glueTop(g *scene.GridGeometry) {
	last := g.Height - 1
	for x := g.Width - 2; x >= 0; x -= 2 {
		merge(g, x, last, x+1, last)
	}
}

// glueLeft walks column 0 top to bottom, folding every other vertex, starting at the top
// corner, onto the vertex below it. Row 0 stays an anchor.
//
// The anchors left on this edge are row 0 and the odd rows, unlike the other three edges, whose
// anchors sit at even indices. A coarser neighbor has vertices only at the even rows of this
// edge, so a left seam meets it at row 0 but not at rows 2, 4, and so on.
func glueLeft(g *scene.GridGeometry) {
	for y := g.Height - 1; y >= 2; y -= 2 {
		merge(g, 0, y, 0, y-1)
	}
}
