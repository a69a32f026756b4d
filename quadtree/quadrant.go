// Package quadtree defines how sectors of a cube-mapped sphere are addressed.
//
// The first element of an address picks one of the six cube faces; every following element
// picks a quadrant of the previous tile. The quadrant winding defined here is shared by the
// placement of a tile and by the stitching of its edges, and the two must agree or seams open
// between tiles of different depth.
package quadtree

import "fmt"

// NumFaces is the number of top-level tiles, one per cube face.
const NumFaces = 6

// Quadrant is the position of a tile within its parent, in the parent's local 2D frame.
type Quadrant uint8

// The quadrant winding.
const (
	BottomLeft Quadrant = iota
	BottomRight
	TopLeft
	TopRight
)

// NumQuadrants is the branching factor of the tree.
const NumQuadrants = 4

// Valid reports whether q is one of the four quadrants.
func (q Quadrant) Valid() bool {
	return q < NumQuadrants
}

// Offset returns the center of the quadrant in its parent's frame, where the parent spans
// [-1,1] on both axes and the child spans half of that.
func (q Quadrant) Offset() (float64, float64) {
	x, y := -0.5, -0.5
	if q == BottomRight || q == TopRight {
		x = 0.5
	}
	if q == TopLeft || q == TopRight {
		y = 0.5
	}
	return x, y
}

func (q Quadrant) String() string {
	switch q {
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	default:
		return fmt.Sprintf("quadrant(%d)", uint8(q))
	}
}

// Edge is one side of a tile's grid.
type Edge uint8

// Edges in the order they are stitched.
const (
	Bottom Edge = iota
	Right
	Top
	Left
)

func (e Edge) String() string {
	switch e {
	case Bottom:
		return "bottom"
	case Right:
		return "right"
	case Top:
		return "top"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("edge(%d)", uint8(e))
	}
}

// BoundaryEdges returns the edges of a child in quadrant q that lie on its parent's outer
// boundary. Those are the only edges that can border a tile of lower detail. The result is in
// stitching order; an invalid quadrant has no boundary edges. Stitching keeps even-indexed
// anchors on the bottom, right and top edges but odd-indexed ones (plus the first) on the left.
func (q Quadrant) BoundaryEdges() []Edge {
	var edges []Edge
	if q == BottomLeft || q == BottomRight {
		edges = append(edges, Bottom)
	}
	if q == BottomRight || q == TopRight {
		edges = append(edges, Right)
	}
	if q == TopRight || q == TopLeft {
		edges = append(edges, Top)
	}
	if q == TopLeft || q == BottomLeft {
		edges = append(edges, Left)
	}
	return edges
}
