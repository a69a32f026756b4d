package quadtree

import (
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Address is the path from the sphere root to a tile. The first element is the cube face, the
// rest are quadrants. The length of an address is the depth of the tile.
//
// Addresses are values; methods never modify the receiver.
type Address []uint8

// NewAddress returns the address of the top-level tile of a cube face followed by the given
// quadrants.
func NewAddress(face int, quadrants ...Quadrant) Address {
	a := make(Address, 0, 1+len(quadrants))
	a = append(a, uint8(face))
	for _, q := range quadrants {
		a = append(a, uint8(q))
	}
	return a
}

// ParseAddress parses the dotted form produced by Address.String, e.g. "2.0.3".
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return nil, errors.New("empty address")
	}
	parts := strings.Split(s, ".")
	a := make(Address, 0, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid element %d of address %q", i, s)
		}
		a = append(a, uint8(v))
	}
	return a, nil
}

// Depth returns the subdivision depth of the tile.
func (a Address) Depth() int {
	return len(a)
}

// Face returns the cube face the tile lies on.
func (a Address) Face() (int, bool) {
	if len(a) == 0 {
		return 0, false
	}
	return int(a[0]), true
}

// Quadrant returns the position of the tile within its immediate parent. Top-level tiles have
// no parent and so no quadrant.
func (a Address) Quadrant() (Quadrant, bool) {
	if len(a) < 2 {
		return 0, false
	}
	return Quadrant(a[len(a)-1]), true
}

// Quadrants returns the quadrant path below the cube face.
func (a Address) Quadrants() []Quadrant {
	if len(a) < 2 {
		return nil
	}
	return lo.Map(a[1:], func(v uint8, _ int) Quadrant { return Quadrant(v) })
}

// Parent returns the address of the enclosing tile, or nil for a top-level tile.
func (a Address) Parent() Address {
	if len(a) < 2 {
		return nil
	}
	return a.clone()[:len(a)-1]
}

// Child returns the address of quadrant q of this tile.
func (a Address) Child(q Quadrant) Address {
	child := make(Address, len(a), len(a)+1)
	copy(child, a)
	return append(child, uint8(q))
}

// Children returns the four child addresses in quadrant order.
func (a Address) Children() []Address {
	children := make([]Address, 0, NumQuadrants)
	for q := Quadrant(0); q < NumQuadrants; q++ {
		children = append(children, a.Child(q))
	}
	return children
}

// Equal reports whether both addresses name the same tile.
func (a Address) Equal(other Address) bool {
	return slices.Equal(a, other)
}

// Validate checks that the address names a real tile: a known face followed by quadrants.
func (a Address) Validate() error {
	if len(a) == 0 {
		return errors.New("address is empty")
	}
	if a[0] >= NumFaces {
		return errors.Errorf("address %s: face %d out of range [0,%d)", a, a[0], NumFaces)
	}
	for i, q := range a.Quadrants() {
		if !q.Valid() {
			return errors.Errorf("address %s: element %d is not a quadrant", a, i+1)
		}
	}
	return nil
}

// String returns the dotted form of the address, which is also its identity.
func (a Address) String() string {
	return strings.Join(lo.Map(a, func(v uint8, _ int) string {
		return strconv.Itoa(int(v))
	}), ".")
}

func (a Address) clone() Address {
	out := make(Address, len(a))
	copy(out, a)
	return out
}

// Faces returns the addresses of the six top-level tiles.
func Faces() []Address {
	return lo.Times(NumFaces, func(i int) Address { return NewAddress(i) })
}
