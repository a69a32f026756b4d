package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cyberwyvern/QuadtreePlanet/logging"
)

// Read reads a config from the given file. ${VAR} references in the file are replaced by the
// matching environment variables before it is decoded. Files ending in .yaml or .yml are read
// as YAML, anything else as JSON.
func Read(
	ctx context.Context,
	filePath string,
	logger logging.Logger,
) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(
	ctx context.Context,
	originalPath string,
	r io.Reader,
	logger logging.Logger,
) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := decode(originalPath, r, &cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
	}
	cfg.ConfigFilePath = originalPath
	cfg.applyDefaults()

	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	logger.Debugw("read planet config",
		"path", originalPath,
		"radius", cfg.Radius,
		"density", cfg.Density,
		"material", cfg.Material.Name,
	)
	return &cfg, nil
}

func decode(path string, r io.Reader, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err := dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			// an empty document leaves every field at its default
			return nil
		}
		return err
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
}
