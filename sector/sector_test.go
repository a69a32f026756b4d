package sector

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/cyberwyvern/QuadtreePlanet/logging"
	"github.com/cyberwyvern/QuadtreePlanet/placement"
	"github.com/cyberwyvern/QuadtreePlanet/quadtree"
	"github.com/cyberwyvern/QuadtreePlanet/scene"
)

// liftedTransformer moves the flat tile one unit up the z axis, whatever the address.
var liftedTransformer = TransformerFunc(func(addr quadtree.Address, radius float64) (mgl64.Mat4, error) {
	return mgl64.Translate3D(0, 0, 1), nil
})

func testConfig(t *testing.T, density int, transformer Transformer) *Config {
	t.Helper()
	return &Config{
		Density:     density,
		Transformer: transformer,
		Logger:      logging.NewTestLogger(t),
	}
}

func instantiate(t *testing.T, addr quadtree.Address, radius float64, cfg *Config) (*Sector, *scene.Node) {
	t.Helper()
	s, err := New(addr, radius, cfg)
	test.That(t, err, test.ShouldBeNil)
	node := scene.NewNode("root")
	test.That(t, s.Instantiate(node), test.ShouldBeNil)
	return s, node
}

// unglued returns the grid a sector would have before edge stitching.
func unglued(t *testing.T, s *Sector) *scene.GridGeometry {
	t.Helper()
	grid, err := s.buildGrid()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spherize(grid, s.radius, 0), test.ShouldBeNil)
	return grid
}

func TestNew(t *testing.T) {
	cfg := testConfig(t, 8, liftedTransformer)
	addr := quadtree.NewAddress(1, quadtree.TopLeft)
	s, err := New(addr, 3, cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Address(), test.ShouldResemble, addr)
	test.That(t, s.Radius(), test.ShouldEqual, 3)
	test.That(t, s.Instantiated(), test.ShouldBeFalse)
	test.That(t, s.Mesh(), test.ShouldBeNil)
	test.That(t, s.Geometry(), test.ShouldBeNil)

	// the sector keeps its own copy of the address
	addr[1] = uint8(quadtree.BottomRight)
	test.That(t, s.Address()[1], test.ShouldEqual, uint8(quadtree.TopLeft))

	for _, radius := range []float64{0, -2, math.Inf(1), math.NaN()} {
		_, err := New(addr, radius, cfg)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "radius")
	}
	_, err = New(addr, 1, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInstantiateBottomLeft(t *testing.T) {
	cfg := testConfig(t, 8, liftedTransformer)
	s, node := instantiate(t, quadtree.NewAddress(0, quadtree.BottomLeft), 1, cfg)
	test.That(t, node.Contains(s.Mesh()), test.ShouldBeTrue)

	g := s.Geometry()
	before := unglued(t, s)
	test.That(t, g.Width, test.ShouldEqual, 9)
	test.That(t, g.Len(), test.ShouldEqual, 81)

	for _, x := range []int{1, 3, 5, 7} {
		test.That(t, g.At(x, 0), test.ShouldResemble, g.At(x-1, 0))
	}
	for _, y := range []int{8, 6, 4, 2} {
		test.That(t, g.At(0, y), test.ShouldResemble, g.At(0, y-1))
	}
	for i := 0; i < 9; i++ {
		test.That(t, g.At(8, i), test.ShouldResemble, before.At(8, i))
	}
	// (0,8) belongs to the left edge
	for i := 1; i < 9; i++ {
		test.That(t, g.At(i, 8), test.ShouldResemble, before.At(i, 8))
	}
	// anchors keep their spherized position
	for _, x := range []int{0, 2, 4, 6, 8} {
		test.That(t, g.At(x, 0), test.ShouldResemble, before.At(x, 0))
	}
	for _, y := range []int{1, 3, 5, 7} {
		test.That(t, g.At(0, y), test.ShouldResemble, before.At(0, y))
	}
}

// anchors returns the indices along an edge whose vertices kept their unstitched position.
func anchors(g, before *scene.GridGeometry, at func(i int) (x, y int)) []int {
	var kept []int
	for i := 0; i < g.Width; i++ {
		x, y := at(i)
		if g.At(x, y) == before.At(x, y) {
			kept = append(kept, i)
		}
	}
	return kept
}

func TestStitchedEdgeAnchors(t *testing.T) {
	cfg := testConfig(t, 8, liftedTransformer)

	s, _ := instantiate(t, quadtree.NewAddress(3, quadtree.TopLeft), 1, cfg)
	g, before := s.Geometry(), unglued(t, s)
	top := anchors(g, before, func(i int) (int, int) { return i, 8 })
	left := anchors(g, before, func(i int) (int, int) { return 0, i })
	test.That(t, top, test.ShouldResemble, []int{2, 4, 6, 8})
	test.That(t, left, test.ShouldResemble, []int{0, 1, 3, 5, 7})

	s, _ = instantiate(t, quadtree.NewAddress(3, quadtree.BottomRight), 1, cfg)
	g, before = s.Geometry(), unglued(t, s)
	bottom := anchors(g, before, func(i int) (int, int) { return i, 0 })
	right := anchors(g, before, func(i int) (int, int) { return 8, i })
	test.That(t, bottom, test.ShouldResemble, []int{0, 2, 4, 6, 8})
	test.That(t, right, test.ShouldResemble, []int{0, 2, 4, 6, 8})
}

func TestInstantiateBottomRight(t *testing.T) {
	cfg := testConfig(t, 8, liftedTransformer)
	s, _ := instantiate(t, quadtree.NewAddress(0, quadtree.BottomRight), 1, cfg)
	g := s.Geometry()
	before := unglued(t, s)

	for _, x := range []int{1, 3, 5, 7} {
		test.That(t, g.At(x, 0), test.ShouldResemble, g.At(x-1, 0))
	}
	for _, y := range []int{1, 3, 5, 7} {
		test.That(t, g.At(8, y), test.ShouldResemble, g.At(8, y+1))
	}
	for i := 0; i < 9; i++ {
		test.That(t, g.At(0, i), test.ShouldResemble, before.At(0, i))
	}
	for i := 0; i < 9; i++ {
		test.That(t, g.At(i, 8), test.ShouldResemble, before.At(i, 8))
	}
}

func TestInstantiateTopQuadrants(t *testing.T) {
	cfg := testConfig(t, 8, liftedTransformer)

	s, _ := instantiate(t, quadtree.NewAddress(0, quadtree.TopRight), 1, cfg)
	g := s.Geometry()
	before := unglued(t, s)
	for _, x := range []int{7, 5, 3, 1} {
		test.That(t, g.At(x, 8), test.ShouldResemble, g.At(x+1, 8))
	}
	for _, y := range []int{1, 3, 5, 7} {
		test.That(t, g.At(8, y), test.ShouldResemble, g.At(8, y+1))
	}
	for i := 0; i < 9; i++ {
		test.That(t, g.At(i, 0), test.ShouldResemble, before.At(i, 0))
		test.That(t, g.At(0, i), test.ShouldResemble, before.At(0, i))
	}

	s, _ = instantiate(t, quadtree.NewAddress(0, quadtree.TopLeft), 1, cfg)
	g = s.Geometry()
	before = unglued(t, s)
	for _, x := range []int{7, 5, 3, 1} {
		test.That(t, g.At(x, 8), test.ShouldResemble, before.At(x+1, 8))
	}
	// the top edge leaves its left corner to the left edge
	test.That(t, g.At(0, 8), test.ShouldResemble, before.At(0, 7))
	for _, y := range []int{6, 4, 2} {
		test.That(t, g.At(0, y), test.ShouldResemble, g.At(0, y-1))
	}
	for i := 0; i < 9; i++ {
		test.That(t, g.At(i, 0), test.ShouldResemble, before.At(i, 0))
		test.That(t, g.At(8, i), test.ShouldResemble, before.At(8, i))
	}
}

func TestGlueHalvesEdgeResolution(t *testing.T) {
	cfg := testConfig(t, 16, placement.NewCubeTransformer())
	s, _ := instantiate(t, quadtree.NewAddress(2, quadtree.BottomLeft, quadtree.BottomRight), 4, cfg)
	g := s.Geometry()

	distinct := func(points []r3.Vector) int {
		seen := map[r3.Vector]struct{}{}
		for _, p := range points {
			seen[p] = struct{}{}
		}
		return len(seen)
	}
	var bottom, right, top, left []r3.Vector
	for i := 0; i < g.Width; i++ {
		bottom = append(bottom, g.At(i, 0))
		right = append(right, g.At(g.Width-1, i))
		top = append(top, g.At(i, g.Height-1))
		left = append(left, g.At(0, i))
	}
	test.That(t, distinct(bottom), test.ShouldEqual, 9)
	test.That(t, distinct(right), test.ShouldEqual, 9)
	test.That(t, distinct(top), test.ShouldEqual, 17)
	test.That(t, distinct(left), test.ShouldEqual, 17)

	var collapsed int
	for _, tri := range g.Triangles() {
		if tri.Collapsed() {
			collapsed++
		}
	}
	test.That(t, collapsed, test.ShouldBeGreaterThan, 0)
}

func TestNoGlueAtTopLevel(t *testing.T) {
	for _, addr := range []quadtree.Address{{}, quadtree.NewAddress(4)} {
		cfg := testConfig(t, 8, liftedTransformer)
		s, _ := instantiate(t, addr, 2, cfg)
		test.That(t, s.Geometry().Positions, test.ShouldResemble, unglued(t, s).Positions)
		for _, tri := range s.Geometry().Triangles() {
			test.That(t, tri.Collapsed(), test.ShouldBeFalse)
		}
	}
}

func TestInvalidQuadrantIsNotGlued(t *testing.T) {
	cfg := testConfig(t, 8, liftedTransformer)
	s, _ := instantiate(t, quadtree.Address{0, 7}, 2, cfg)
	test.That(t, s.Geometry().Positions, test.ShouldResemble, unglued(t, s).Positions)
}

func TestSpherizeDistance(t *testing.T) {
	cfg := testConfig(t, 16, placement.NewCubeTransformer())
	for _, addr := range []quadtree.Address{
		quadtree.NewAddress(0),
		quadtree.NewAddress(3, quadtree.TopRight),
		quadtree.NewAddress(5, quadtree.BottomLeft, quadtree.TopLeft, quadtree.BottomRight),
	} {
		s, _ := instantiate(t, addr, 6371, cfg)
		for _, p := range s.Geometry().Positions {
			test.That(t, p.Norm(), test.ShouldAlmostEqual, 6371, 1e-9)
		}
	}
}

func TestSpherizeReportsLowestBadVertex(t *testing.T) {
	newGrid := func() *scene.GridGeometry {
		g := &scene.GridGeometry{Width: 10, Height: 10, Positions: make([]r3.Vector, 100)}
		for i := range g.Positions {
			g.Positions[i] = r3.Vector{X: 1, Y: float64(i)}
		}
		g.Positions[95] = r3.Vector{}
		g.Positions[31] = r3.Vector{}
		g.Positions[32] = r3.Vector{}
		return g
	}
	for _, threshold := range []int{0, 1} {
		err := spherize(newGrid(), 2, threshold)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "vertex 31")
	}
}

func TestParallelSpherizeMatchesSerial(t *testing.T) {
	serial := testConfig(t, 32, placement.NewCubeTransformer())
	parallel := testConfig(t, 32, placement.NewCubeTransformer())
	parallel.ParallelThreshold = 1

	addr := quadtree.NewAddress(1, quadtree.TopLeft, quadtree.BottomRight)
	a, _ := instantiate(t, addr, 10, serial)
	b, _ := instantiate(t, addr, 10, parallel)
	test.That(t, b.Geometry().Positions, test.ShouldResemble, a.Geometry().Positions)
}

func TestDeterminism(t *testing.T) {
	addr := quadtree.NewAddress(4, quadtree.TopRight, quadtree.TopLeft)
	a, _ := instantiate(t, addr, 7, testConfig(t, 16, placement.NewCubeTransformer()))
	b, _ := instantiate(t, addr, 7, testConfig(t, 16, placement.NewCubeTransformer()))
	test.That(t, b.Geometry().Positions, test.ShouldResemble, a.Geometry().Positions)
}

func TestCenter(t *testing.T) {
	cfg := testConfig(t, 8, placement.NewCubeTransformer())
	s, err := New(quadtree.NewAddress(0, quadtree.BottomLeft), 100, cfg)
	test.That(t, err, test.ShouldBeNil)

	_, err = s.Center()
	test.That(t, errors.Is(err, ErrNotInstantiated), test.ShouldBeTrue)

	test.That(t, s.Instantiate(scene.NewNode("root")), test.ShouldBeNil)
	center, err := s.Center()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, center.Norm(), test.ShouldAlmostEqual, 100, 1e-9)

	// face 0 is +X; its bottom-left child centers at (1, -0.5, -0.5) on the cube
	want := r3.Vector{X: 1, Y: -0.5, Z: -0.5}.Normalize().Mul(100)
	test.That(t, center.Sub(want).Norm(), test.ShouldBeLessThan, 1e-9)

	again, err := s.Center()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldResemble, center)
}

func TestAttachDetach(t *testing.T) {
	cfg := testConfig(t, 4, liftedTransformer)
	s, err := New(quadtree.NewAddress(0, quadtree.TopRight), 1, cfg)
	test.That(t, err, test.ShouldBeNil)
	node := scene.NewNode("root")

	_, ok := s.Visible()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, errors.Is(s.SetVisible(false), ErrNotInstantiated), test.ShouldBeTrue)
	test.That(t, errors.Is(s.Detach(node), ErrNotInstantiated), test.ShouldBeTrue)
	test.That(t, errors.Is(s.Attach(node), ErrNotInstantiated), test.ShouldBeTrue)

	test.That(t, s.Instantiate(node), test.ShouldBeNil)
	test.That(t, node.Contains(s.Mesh()), test.ShouldBeTrue)
	visible, ok := s.Visible()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, visible, test.ShouldBeTrue)

	test.That(t, s.SetVisible(false), test.ShouldBeNil)
	visible, _ = s.Visible()
	test.That(t, visible, test.ShouldBeFalse)

	test.That(t, s.Detach(node), test.ShouldBeNil)
	test.That(t, node.Contains(s.Mesh()), test.ShouldBeFalse)
	test.That(t, node.Len(), test.ShouldEqual, 0)
	// detaching twice is harmless
	test.That(t, s.Detach(node), test.ShouldBeNil)

	test.That(t, s.Attach(node), test.ShouldBeNil)
	test.That(t, node.Contains(s.Mesh()), test.ShouldBeTrue)

	test.That(t, errors.Is(s.Instantiate(node), ErrAlreadyInstantiated), test.ShouldBeTrue)
	test.That(t, node.Len(), test.ShouldEqual, 1)
}

func TestInstantiateErrors(t *testing.T) {
	addr := quadtree.NewAddress(0, quadtree.BottomLeft)

	t.Run("transformer failure", func(t *testing.T) {
		boom := errors.New("boom")
		cfg := testConfig(t, 8, TransformerFunc(func(quadtree.Address, float64) (mgl64.Mat4, error) {
			return mgl64.Mat4{}, boom
		}))
		s, err := New(addr, 1, cfg)
		test.That(t, err, test.ShouldBeNil)
		node := scene.NewNode("root")
		err = s.Instantiate(node)
		test.That(t, errors.Is(err, boom), test.ShouldBeTrue)
		test.That(t, node.Len(), test.ShouldEqual, 0)
		test.That(t, s.Instantiated(), test.ShouldBeFalse)
	})

	t.Run("degenerate matrix", func(t *testing.T) {
		cfg := testConfig(t, 8, TransformerFunc(func(quadtree.Address, float64) (mgl64.Mat4, error) {
			return mgl64.Scale3D(1, 0, 1), nil
		}))
		s, err := New(addr, 1, cfg)
		test.That(t, err, test.ShouldBeNil)
		node := scene.NewNode("root")
		test.That(t, s.Instantiate(node), test.ShouldNotBeNil)
		test.That(t, node.Len(), test.ShouldEqual, 0)
	})

	t.Run("vertex at the origin", func(t *testing.T) {
		// an unmoved tile has its middle vertex at the origin
		cfg := testConfig(t, 8, TransformerFunc(func(quadtree.Address, float64) (mgl64.Mat4, error) {
			return mgl64.Ident4(), nil
		}))
		s, err := New(addr, 1, cfg)
		test.That(t, err, test.ShouldBeNil)
		node := scene.NewNode("root")
		err = s.Instantiate(node)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "vertex 40")
		test.That(t, node.Len(), test.ShouldEqual, 0)

		cfg.ParallelThreshold = 1
		s, err = New(addr, 1, cfg)
		test.That(t, err, test.ShouldBeNil)
		err = s.Instantiate(node)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "vertex 40")
	})

	t.Run("bad config", func(t *testing.T) {
		for _, cfg := range []*Config{
			testConfig(t, 6, liftedTransformer),
			testConfig(t, 0, liftedTransformer),
			testConfig(t, 8, nil),
			{Density: 8, Transformer: liftedTransformer, ParallelThreshold: -1},
		} {
			s, err := New(addr, 1, cfg)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, s.Instantiate(scene.NewNode("root")), test.ShouldNotBeNil)
		}
	})
}

func TestSiblingSeams(t *testing.T) {
	// siblings meet along their shared inner edge, which is never stitched
	cfg := testConfig(t, 8, placement.NewCubeTransformer())
	parent := quadtree.NewAddress(3, quadtree.TopLeft)
	left, _ := instantiate(t, parent.Child(quadtree.BottomLeft), 5, cfg)
	right, _ := instantiate(t, parent.Child(quadtree.BottomRight), 5, cfg)

	lg, rg := left.Geometry(), right.Geometry()
	var leftSeam, rightSeam []r3.Vector
	for y := 0; y < lg.Height; y++ {
		leftSeam = append(leftSeam, lg.At(lg.Width-1, y))
		rightSeam = append(rightSeam, rg.At(0, y))
	}
	test.That(t, cmp.Diff(leftSeam, rightSeam, cmpopts.EquateApprox(0, 1e-9)), test.ShouldBeEmpty)
}

func TestInstantiateLogs(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	cfg := &Config{Density: 4, Transformer: liftedTransformer, Logger: logger}
	instantiate(t, quadtree.NewAddress(0, quadtree.BottomLeft), 1, cfg)
	test.That(t, logs.FilterMessage("stitched sector edges").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("instantiated sector").Len(), test.ShouldEqual, 1)
}

func TestConfig(t *testing.T) {
	cfg := &Config{Density: 16, Transformer: liftedTransformer}
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.GridSize(), test.ShouldEqual, 17)
	test.That(t, cfg.VertexCount(), test.ShouldEqual, 289)
	test.That(t, cfg.LoggerOrGlobal(), test.ShouldEqual, logging.Global())
	test.That(t, cfg.material(), test.ShouldResemble, scene.DefaultMaterial())

	material := &scene.Material{Name: "rock"}
	cfg.Material = material
	test.That(t, cfg.material(), test.ShouldEqual, material)

	logger := logging.NewTestLogger(t)
	cfg.Logger = logger
	test.That(t, cfg.LoggerOrGlobal(), test.ShouldEqual, logger)

	for _, density := range []int{-2, 0, 1, 12} {
		cfg.Density = density
		err := cfg.Validate()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "at least 2")
	}
	cfg.Density = MinDensity
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.GridSize()%2, test.ShouldEqual, 1)
}
