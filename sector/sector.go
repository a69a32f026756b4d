// Package sector builds the tiles of a quadtree sphere. A sector is one tile: a square grid of
// vertices placed on a cube face, pushed out onto the sphere, and stitched along the edges that
// may border a coarser neighbor.
package sector

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/cyberwyvern/QuadtreePlanet/logging"
	"github.com/cyberwyvern/QuadtreePlanet/quadtree"
	"github.com/cyberwyvern/QuadtreePlanet/scene"
	"github.com/cyberwyvern/QuadtreePlanet/utils"
)

var (
	// ErrNotInstantiated is returned by operations that need the sector's mesh before
	// Instantiate has built it.
	ErrNotInstantiated = errors.New("sector is not instantiated")
	// ErrAlreadyInstantiated is returned when Instantiate is called on a built sector.
	ErrAlreadyInstantiated = errors.New("sector is already instantiated")
)

// Parent is what a sector mesh attaches to. *scene.Node implements it.
type Parent interface {
	Add(mesh *scene.Mesh)
	Remove(mesh *scene.Mesh) bool
}

// Sector is one tile of the sphere. Its identity is its address.
//
// A Sector is not safe for concurrent use; distinct sectors can be built in parallel.
type Sector struct {
	address quadtree.Address
	radius  float64
	cfg     *Config
	logger  logging.Logger

	mesh *scene.Mesh
	// center is cached on first use; the grid never changes after Instantiate.
	center *r3.Vector
}

// New returns an unbuilt sector. Nothing is allocated until Instantiate.
func New(addr quadtree.Address, radius float64, cfg *Config) (*Sector, error) {
	if cfg == nil {
		return nil, errors.New("sector needs a config")
	}
	if radius <= 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
		return nil, utils.NewRadiusError(radius)
	}
	address := make(quadtree.Address, len(addr))
	copy(address, addr)
	return &Sector{
		address: address,
		radius:  radius,
		cfg:     cfg,
		logger:  cfg.LoggerOrGlobal(),
	}, nil
}

// Address returns a copy of the sector's address.
func (s *Sector) Address() quadtree.Address {
	out := make(quadtree.Address, len(s.address))
	copy(out, s.address)
	return out
}

// Radius returns the radius of the sphere the sector lies on.
func (s *Sector) Radius() float64 {
	return s.radius
}

// Instantiate builds the sector's grid, places it on the cube, projects it onto the sphere,
// stitches its edges and attaches the resulting mesh to parent. On error nothing is attached.
func (s *Sector) Instantiate(parent Parent) error {
	if s.mesh != nil {
		return ErrAlreadyInstantiated
	}
	if err := s.cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid sector config")
	}

	grid, err := s.buildGrid()
	if err != nil {
		return errors.Wrapf(err, "placing sector %s", s.address)
	}
	if err := spherize(grid, s.radius, s.cfg.ParallelThreshold); err != nil {
		return errors.Wrapf(err, "projecting sector %s", s.address)
	}
	if s.address.Depth() > 1 {
		q, _ := s.address.Quadrant()
		edges := glueEdges(grid, q)
		s.logger.Debugw("stitched sector edges", "address", s.address, "edges", edges)
	}

	s.mesh = scene.NewMesh(s.address.String(), grid, s.cfg.material())
	parent.Add(s.mesh)
	s.logger.Debugw("instantiated sector", "address", s.address, "vertices", grid.Len())
	return nil
}

// Attach re-attaches the already built mesh, e.g. after Detach.
func (s *Sector) Attach(parent Parent) error {
	if s.mesh == nil {
		return ErrNotInstantiated
	}
	parent.Add(s.mesh)
	return nil
}

// Detach removes the sector's mesh from parent. The sector keeps its mesh and can be attached
// again.
func (s *Sector) Detach(parent Parent) error {
	if s.mesh == nil {
		return ErrNotInstantiated
	}
	if !parent.Remove(s.mesh) {
		s.logger.Debugw("sector was not attached", "address", s.address)
	}
	return nil
}

// Instantiated reports whether the sector has been built.
func (s *Sector) Instantiated() bool {
	return s.mesh != nil
}

// Mesh returns the sector's mesh, or nil before Instantiate.
func (s *Sector) Mesh() *scene.Mesh {
	return s.mesh
}

// Geometry returns the sector's vertex grid, or nil before Instantiate.
func (s *Sector) Geometry() *scene.GridGeometry {
	if s.mesh == nil {
		return nil
	}
	return s.mesh.Geometry
}

// Visible returns the mesh visibility. ok is false when there is no mesh yet, in which case the
// visibility is unset.
func (s *Sector) Visible() (visible, ok bool) {
	if s.mesh == nil {
		return false, false
	}
	return s.mesh.Visible(), true
}

// SetVisible shows or hides the sector's mesh.
func (s *Sector) SetVisible(visible bool) error {
	if s.mesh == nil {
		return ErrNotInstantiated
	}
	s.mesh.SetVisible(visible)
	return nil
}

// Center returns the point of the sphere at the middle of the sector.
func (s *Sector) Center() (r3.Vector, error) {
	if s.center != nil {
		return *s.center, nil
	}
	if s.mesh == nil {
		return r3.Vector{}, ErrNotInstantiated
	}
	positions := s.mesh.Geometry.Positions
	mid := positions[len(positions)/2]
	if mid.Norm2() == 0 {
		return r3.Vector{}, errors.Errorf("sector %s has no center direction", s.address)
	}
	center := mid.Normalize().Mul(s.radius)
	s.center = &center
	return center, nil
}
