// Package config reads the JSON or YAML file that describes how a planet is built.
package config

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/cyberwyvern/QuadtreePlanet/logging"
	"github.com/cyberwyvern/QuadtreePlanet/scene"
	"github.com/cyberwyvern/QuadtreePlanet/sector"
	"github.com/cyberwyvern/QuadtreePlanet/utils"
)

const (
	// DefaultRadius is the sphere radius used when none is configured.
	DefaultRadius = 1.0
	// DefaultMaterialName names the material used when none is configured.
	DefaultMaterialName = "default"
	// DefaultMaterialColor is the color of the default material.
	DefaultMaterialColor = "#ffffff"
)

// Config describes a planet: its size, its grid resolution and how its sectors look.
type Config struct {
	Radius            float64         `json:"radius" yaml:"radius"`
	Density           int             `json:"density" yaml:"density"`
	ParallelThreshold int             `json:"parallel_threshold,omitempty" yaml:"parallel_threshold,omitempty"`
	Material          *MaterialConfig `json:"material,omitempty" yaml:"material,omitempty"`
	LogLevel          string          `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// ConfigFilePath is the file the config was read from, if any.
	ConfigFilePath string `json:"-" yaml:"-"`
}

// MaterialConfig describes the material shared by every sector.
type MaterialConfig struct {
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Wireframe bool   `json:"wireframe,omitempty" yaml:"wireframe,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.Radius <= 0 || math.IsInf(c.Radius, 0) || math.IsNaN(c.Radius) {
		return goutils.NewConfigValidationError(path, utils.NewRadiusError(c.Radius))
	}
	if !sector.ValidDensity(c.Density) {
		return goutils.NewConfigValidationError(path, utils.NewDensityError(c.Density))
	}
	if c.ParallelThreshold < 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("parallel_threshold cannot be negative, got %d", c.ParallelThreshold))
	}
	if c.Material != nil {
		if err := c.Material.Validate(joinPath(path, "material")); err != nil {
			return err
		}
	}
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			return goutils.NewConfigValidationError(path, err)
		}
	}
	return nil
}

// Validate ensures the material can be turned into a scene material.
func (mc *MaterialConfig) Validate(path string) error {
	if mc.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if mc.Color != "" {
		if _, err := scene.ParseMaterialColor(mc.Color); err != nil {
			return goutils.NewConfigValidationError(path, err)
		}
	}
	return nil
}

// Default returns the config used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in whatever the file left out.
func (c *Config) applyDefaults() {
	if c.Radius == 0 {
		c.Radius = DefaultRadius
	}
	if c.Density == 0 {
		c.Density = sector.DefaultDensity
	}
	if c.Material == nil {
		c.Material = &MaterialConfig{Name: DefaultMaterialName}
	}
	if c.Material.Color == "" {
		c.Material.Color = DefaultMaterialColor
	}
}

// Level returns the configured log level, or INFO when none is set.
func (c *Config) Level() logging.Level {
	if c.LogLevel == "" {
		return logging.INFO
	}
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// SceneMaterial builds the scene material described by the config.
func (c *Config) SceneMaterial() (*scene.Material, error) {
	if c.Material == nil {
		return scene.DefaultMaterial(), nil
	}
	material := &scene.Material{Name: c.Material.Name, Wireframe: c.Material.Wireframe}
	if c.Material.Color == "" {
		material.Color = scene.DefaultMaterial().Color
		return material, nil
	}
	color, err := scene.ParseMaterialColor(c.Material.Color)
	if err != nil {
		return nil, err
	}
	material.Color = color
	return material, nil
}

// SectorConfig builds the configuration shared by every sector of the planet.
func (c *Config) SectorConfig(transformer sector.Transformer, logger logging.Logger) (*sector.Config, error) {
	material, err := c.SceneMaterial()
	if err != nil {
		return nil, err
	}
	cfg := &sector.Config{
		Density:           c.Density,
		Material:          material,
		Transformer:       transformer,
		Logger:            logger,
		ParallelThreshold: c.ParallelThreshold,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func joinPath(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}
