// Package planet builds a whole quadtree sphere out of sectors that share one configuration and
// one root scene node.
package planet

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/cyberwyvern/QuadtreePlanet/logging"
	"github.com/cyberwyvern/QuadtreePlanet/quadtree"
	"github.com/cyberwyvern/QuadtreePlanet/scene"
	"github.com/cyberwyvern/QuadtreePlanet/sector"
	"github.com/cyberwyvern/QuadtreePlanet/utils"
)

// ErrUnknownSector is returned when an address has no sector on the planet.
var ErrUnknownSector = errors.New("no sector at address")

// Planet is a set of sectors keyed by address. It is safe for concurrent use.
type Planet struct {
	radius float64
	cfg    *sector.Config
	root   *scene.Node
	logger logging.Logger

	// MaxConcurrentBuilds limits how many sectors Instantiate builds at once.
	MaxConcurrentBuilds int

	mu      sync.Mutex
	sectors map[string]*sector.Sector
}

// New returns an empty planet.
func New(radius float64, cfg *sector.Config) (*Planet, error) {
	if radius <= 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
		return nil, utils.NewRadiusError(radius)
	}
	if cfg == nil {
		return nil, errors.New("planet needs a sector config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Planet{
		radius:              radius,
		cfg:                 cfg,
		root:                scene.NewNode("planet"),
		logger:              cfg.LoggerOrGlobal(),
		MaxConcurrentBuilds: runtime.GOMAXPROCS(0),
		sectors:             map[string]*sector.Sector{},
	}, nil
}

// Radius returns the planet radius.
func (p *Planet) Radius() float64 {
	return p.radius
}

// Root returns the node every sector mesh is attached to.
func (p *Planet) Root() *scene.Node {
	return p.root
}

// Instantiate builds a sector for every address and attaches it to the root node. Sectors are
// built concurrently. An address that already has a sector, or appears twice, is an error and
// nothing is built. If any build fails, the sectors built by this call are detached again and
// the first error is returned.
func (p *Planet) Instantiate(ctx context.Context, addrs ...quadtree.Address) error {
	built := make([]*sector.Sector, len(addrs))
	p.mu.Lock()
	seen := map[string]struct{}{}
	for _, addr := range addrs {
		key := addr.String()
		if _, ok := p.sectors[key]; ok {
			p.mu.Unlock()
			return errors.Errorf("sector %s already exists", key)
		}
		if _, ok := seen[key]; ok {
			p.mu.Unlock()
			return errors.Errorf("sector %s requested twice", key)
		}
		seen[key] = struct{}{}
	}
	p.mu.Unlock()

	guard := utils.NewGuard(func() {
		for _, s := range built {
			if s != nil {
				if err := s.Detach(p.root); err != nil {
					p.logger.Warnw("failed to roll back sector", "address", s.Address(), "error", err)
				}
			}
		}
	})
	defer guard.OnFail()

	g, gctx := errgroup.WithContext(ctx)
	if p.MaxConcurrentBuilds > 0 {
		g.SetLimit(p.MaxConcurrentBuilds)
	}
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := sector.New(addr, p.radius, p.cfg)
			if err != nil {
				return err
			}
			if err := s.Instantiate(p.root); err != nil {
				return err
			}
			built[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// a concurrent call may have claimed an address while this one was building
	var err error
	for _, s := range built {
		if _, ok := p.sectors[s.Address().String()]; ok {
			err = multierr.Combine(err, errors.Errorf("sector %s already exists", s.Address()))
		}
	}
	if err != nil {
		return err
	}
	for _, s := range built {
		p.sectors[s.Address().String()] = s
	}
	guard.Success()
	p.logger.Infow("instantiated sectors",
		"count", len(built),
		"vertices", len(built)*p.cfg.VertexCount(),
		"radius", p.radius,
	)
	return nil
}

// InstantiateFaces builds the six top-level sectors.
func (p *Planet) InstantiateFaces(ctx context.Context) error {
	return p.Instantiate(ctx, quadtree.Faces()...)
}

// Sector returns the sector at addr.
func (p *Planet) Sector(addr quadtree.Address) (*sector.Sector, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sectors[addr.String()]
	if !ok {
		return nil, errors.Wrap(ErrUnknownSector, addr.String())
	}
	return s, nil
}

// Sectors returns every sector, ordered by address.
func (p *Planet) Sectors() []*sector.Sector {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.sectors))
	for k := range p.sectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*sector.Sector, 0, len(keys))
	for _, k := range keys {
		out = append(out, p.sectors[k])
	}
	return out
}

// Len returns the number of sectors.
func (p *Planet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sectors)
}

// Detach removes the sector at addr from the planet and its mesh from the root node.
func (p *Planet) Detach(addr quadtree.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := addr.String()
	s, ok := p.sectors[key]
	if !ok {
		return errors.Wrap(ErrUnknownSector, key)
	}
	delete(p.sectors, key)
	return s.Detach(p.root)
}

// DetachAll removes every sector.
func (p *Planet) DetachAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	for key, s := range p.sectors {
		err = multierr.Combine(err, errors.Wrap(s.Detach(p.root), key))
		delete(p.sectors, key)
	}
	return err
}
