package sector

import (
	"github.com/pkg/errors"

	"github.com/cyberwyvern/QuadtreePlanet/scene"
	"github.com/cyberwyvern/QuadtreePlanet/spatialmath"
)

// canonicalTileSize is the side of the flat tile every sector starts from: [-1,1]².
const canonicalTileSize = 2

// buildGrid allocates the canonical tile and moves it to the sector's place on the cube.
func (s *Sector) buildGrid() (*scene.GridGeometry, error) {
	grid, err := scene.NewPlaneGeometry(canonicalTileSize, s.cfg.Density)
	if err != nil {
		return nil, err
	}
	m, err := s.cfg.Transformer.Transform(s.Address(), s.radius)
	if err != nil {
		return nil, errors.Wrap(err, "transformer failed")
	}
	if err := spatialmath.CheckMatrix(m); err != nil {
		return nil, errors.Wrap(err, "transformer returned an unusable matrix")
	}
	grid.ApplyMatrix4(m)
	return grid, nil
}
