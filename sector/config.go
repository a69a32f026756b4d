package sector

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/cyberwyvern/QuadtreePlanet/logging"
	"github.com/cyberwyvern/QuadtreePlanet/quadtree"
	"github.com/cyberwyvern/QuadtreePlanet/scene"
	"github.com/cyberwyvern/QuadtreePlanet/utils"
)

const (
	// DefaultDensity is the grid resolution used when none is configured.
	DefaultDensity = 16
	// MinDensity is the smallest grid resolution. Stitching needs an even number of cells per
	// side so that edges have an odd number of vertices.
	MinDensity = 2
)

// A Transformer computes the matrix that moves the canonical flat tile, which spans [-1,1]² in
// the z=0 plane, to the place and size of the tile at addr on a cube of the given radius. It
// must be a pure function of its inputs; sectors built concurrently call it concurrently.
//
// The quadrant winding the matrix follows must be the one in package quadtree, since edge
// stitching picks edges by that winding.
type Transformer interface {
	Transform(addr quadtree.Address, radius float64) (mgl64.Mat4, error)
}

// TransformerFunc adapts a function to a Transformer.
type TransformerFunc func(addr quadtree.Address, radius float64) (mgl64.Mat4, error)

// Transform calls f.
func (f TransformerFunc) Transform(addr quadtree.Address, radius float64) (mgl64.Mat4, error) {
	return f(addr, radius)
}

// Config is shared by every sector of a sphere.
type Config struct {
	// Density is the number of grid cells along each side of a sector. Must be a power of two
	// no smaller than MinDensity.
	Density int
	// Material is handed to every sector mesh.
	Material *scene.Material
	// Transformer places sectors on the cube.
	Transformer Transformer
	// Logger receives build logs; the global logger is used when nil.
	Logger logging.Logger
	// ParallelThreshold is the vertex count at which spherize is split across goroutines.
	// Zero keeps it serial.
	ParallelThreshold int
}

// Validate ensures the config can build sectors.
func (c *Config) Validate() error {
	if !ValidDensity(c.Density) {
		return utils.NewDensityError(c.Density)
	}
	if c.Transformer == nil {
		return errors.New("sector config needs a transformer")
	}
	if c.ParallelThreshold < 0 {
		return errors.Errorf("parallel threshold cannot be negative, got %d", c.ParallelThreshold)
	}
	return nil
}

// ValidDensity reports whether density can be used as a sector grid resolution.
func ValidDensity(density int) bool {
	return density >= MinDensity && utils.IsPowerOfTwo(density)
}

// GridSize returns the number of vertices along each side of a sector grid.
func (c *Config) GridSize() int {
	return c.Density + 1
}

// VertexCount returns the number of vertices in a sector grid.
func (c *Config) VertexCount() int {
	return utils.SquareInt(c.GridSize())
}

// LoggerOrGlobal returns Logger, or the global logger when none is set.
func (c *Config) LoggerOrGlobal() logging.Logger {
	if c.Logger == nil {
		return logging.Global()
	}
	return c.Logger
}

func (c *Config) material() *scene.Material {
	if c.Material == nil {
		return scene.DefaultMaterial()
	}
	return c.Material
}
