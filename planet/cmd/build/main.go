// Package main builds planet sectors from the command line and reports on their geometry.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/cyberwyvern/QuadtreePlanet/config"
	"github.com/cyberwyvern/QuadtreePlanet/logging"
	"github.com/cyberwyvern/QuadtreePlanet/placement"
	"github.com/cyberwyvern/QuadtreePlanet/planet"
	"github.com/cyberwyvern/QuadtreePlanet/quadtree"
	"github.com/cyberwyvern/QuadtreePlanet/scene"
)

const (
	// Flags.
	flagConfig   = "config"
	flagAddress  = "address"
	flagRadius   = "radius"
	flagDensity  = "density"
	flagDebug    = "debug"
	flagParallel = "parallel-threshold"
)

func main() {
	app := &cli.App{
		Name:  "build",
		Usage: "build quadtree planet sectors and report on them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.StringSliceFlag{
				Name:    flagAddress,
				Aliases: []string{"a"},
				Usage:   "dotted sector `ADDRESS` to build, e.g. 2.0.3; repeatable. Builds the six faces when omitted",
			},
			&cli.Float64Flag{
				Name:  flagRadius,
				Usage: "sphere radius, overrides the config file",
			},
			&cli.IntFlag{
				Name:  flagDensity,
				Usage: "grid cells per sector side, a power of two; overrides the config file",
			},
			&cli.IntFlag{
				Name:  flagParallel,
				Usage: "vertex count at which projection runs in parallel; overrides the config file",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Action: buildAction,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildAction(c *cli.Context) error {
	logger := logging.NewLogger("build")
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("build")
	}
	logging.ReplaceGlobal(logger)

	cfg, err := loadConfig(c.Context, c, logger)
	if err != nil {
		return err
	}
	if !c.Bool(flagDebug) {
		logger.SetLevel(cfg.Level())
	}

	addrs, err := parseAddresses(c.StringSlice(flagAddress))
	if err != nil {
		return err
	}

	sectorCfg, err := cfg.SectorConfig(placement.NewCubeTransformer(), logger.Sublogger("sector"))
	if err != nil {
		return err
	}
	p, err := planet.New(cfg.Radius, sectorCfg)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		err = p.InstantiateFaces(c.Context)
	} else {
		err = p.Instantiate(c.Context, addrs...)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := p.DetachAll(); err != nil {
			logger.Warnw("failed to detach sectors", "error", err)
		}
	}()

	return report(c.App.Writer, p)
}

func loadConfig(ctx context.Context, c *cli.Context, logger logging.Logger) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(ctx, path, logger); err != nil {
			return nil, err
		}
	}
	if c.IsSet(flagRadius) {
		cfg.Radius = c.Float64(flagRadius)
	}
	if c.IsSet(flagDensity) {
		cfg.Density = c.Int(flagDensity)
	}
	if c.IsSet(flagParallel) {
		cfg.ParallelThreshold = c.Int(flagParallel)
	}
	if err := cfg.Validate("flags"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseAddresses(raw []string) ([]quadtree.Address, error) {
	addrs := make([]quadtree.Address, 0, len(raw))
	for _, s := range raw {
		addr, err := quadtree.ParseAddress(s)
		if err != nil {
			return nil, errors.Wrapf(err, "bad --%s", flagAddress)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// edgeResolution counts the distinct vertex positions along each side of a grid. Stitched sides
// have about half as many as the others.
func edgeResolution(g *scene.GridGeometry) map[quadtree.Edge]int {
	sides := map[quadtree.Edge][]int{
		quadtree.Bottom: lo.Times(g.Width, func(i int) int { return g.Index(i, 0) }),
		quadtree.Right:  lo.Times(g.Height, func(i int) int { return g.Index(g.Width-1, i) }),
		quadtree.Top:    lo.Times(g.Width, func(i int) int { return g.Index(i, g.Height-1) }),
		quadtree.Left:   lo.Times(g.Height, func(i int) int { return g.Index(0, i) }),
	}
	return lo.MapValues(sides, func(indices []int, _ quadtree.Edge) int {
		return len(lo.Uniq(lo.Map(indices, func(idx, _ int) [3]float64 {
			p := g.Positions[idx]
			return [3]float64{p.X, p.Y, p.Z}
		})))
	})
}

// surface summarizes the triangles of a placed grid: total area, triangles collapsed by edge
// stitching, and triangles whose normal points towards the sphere center.
type surface struct {
	area      float64
	collapsed int
	inverted  int
}

func surfaceOf(g *scene.GridGeometry) surface {
	var sf surface
	for _, tri := range g.Triangles() {
		if tri.Collapsed() {
			sf.collapsed++
			continue
		}
		sf.area += tri.Area()
		if tri.Normal().Dot(tri.Points()[0]) < 0 {
			sf.inverted++
		}
	}
	return sf
}

func report(w io.Writer, p *planet.Planet) error {
	for _, s := range p.Sectors() {
		center, err := s.Center()
		if err != nil {
			return err
		}
		g := s.Geometry()
		edges := edgeResolution(g)
		sf := surfaceOf(g)
		if _, err := fmt.Fprintf(w,
			"sector %-12s center (%.4f, %.4f, %.4f) vertices %d edges b=%d r=%d t=%d l=%d "+
				"area %.4f collapsed %d inverted %d\n",
			s.Address(), center.X, center.Y, center.Z, g.Len(),
			edges[quadtree.Bottom], edges[quadtree.Right], edges[quadtree.Top], edges[quadtree.Left],
			sf.area, sf.collapsed, sf.inverted,
		); err != nil {
			return err
		}
	}

	meshes := p.Root().Meshes()
	visible := lo.CountBy(meshes, func(m *scene.Mesh) bool { return m.Visible() })
	_, err := fmt.Fprintf(w, "attached %d visible %d\n", len(meshes), visible)
	return err
}
