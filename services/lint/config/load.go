// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvConfigPath overrides the user configuration path.
const EnvConfigPath = "LINTBRIDGE_CONFIG"

// Origins recorded on LinterConfig.Origin.
const (
	OriginDefault   = "default"
	OriginUser      = "user"
	originExtension = "extension:"
)

// ErrInvalidConfig is returned when a configuration file cannot be parsed.
var ErrInvalidConfig = errors.New("invalid configuration")

// layer is the on-disk shape shared by the defaults and user files. Nodes
// are kept raw so each can be decoded over the previous layer's value.
type layer struct {
	Settings yaml.Node            `yaml:"settings"`
	Linters  map[string]yaml.Node `yaml:"linters"`
}

// LoadOptions controls Load.
type LoadOptions struct {
	// UserPath is the user configuration file. When empty, DefaultUserPath
	// is used and a missing file is not an error.
	UserPath string

	// ExtensionsDir overrides Settings.ExtensionsDir.
	ExtensionsDir string

	// HostVersion is checked against companion "requires" floors.
	HostVersion string

	// Logger receives per-entry problems. Nil uses slog.Default.
	Logger *slog.Logger
}

// DefaultUserPath returns $LINTBRIDGE_CONFIG, or ~/.lintbridge/config.yaml.
func DefaultUserPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lintbridge", "config.yaml")
}

// Load merges the three configuration layers and validates the result.
//
// Description:
//
//	Decodes the embedded defaults, then the user file, then every
//	companion extension manifest. Each layer's linter entries are decoded
//	over a deep copy of the previous value, so a layer only overrides the
//	fields it sets. Entries that fail validation are disabled and
//	recorded in Config.Problems; they never fail the load.
//
// Inputs:
//
//	opts - Paths, host version and logger
//
// Outputs:
//
//	*Config - The merged configuration
//	error - Non-nil if the defaults or an explicitly named user file
//	        cannot be read or parsed
func Load(opts LoadOptions) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := &Config{
		Linters:  make(map[string]LinterConfig),
		Problems: make(map[string]error),
	}

	if err := cfg.apply(defaultsYAML, OriginDefault, logger); err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}

	userPath, explicit := opts.UserPath, opts.UserPath != ""
	if !explicit {
		userPath = DefaultUserPath()
	}
	if userPath != "" {
		data, err := os.ReadFile(expandHome(userPath))
		switch {
		case err == nil:
			if err := cfg.apply(data, OriginUser, logger); err != nil {
				return nil, fmt.Errorf("%s: %w", userPath, err)
			}
			logger.Debug("Loaded user configuration", slog.String("path", userPath))
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("read config %s: %w", userPath, err)
		}
	}

	extDir := opts.ExtensionsDir
	if extDir == "" {
		extDir = cfg.Settings.ExtensionsDir
	}
	if extDir != "" {
		for _, m := range DiscoverExtensions(expandHome(extDir), opts.HostVersion, logger) {
			cfg.mergeLinters(m.Linters, originExtension+m.Name, logger)
		}
	}

	cfg.validate(logger)
	return cfg, nil
}

// Parse builds a Config from the embedded defaults and one YAML document
// layered over them. It skips the user file and extensions.
func Parse(data []byte, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := &Config{
		Linters:  make(map[string]LinterConfig),
		Problems: make(map[string]error),
	}
	if err := cfg.apply(defaultsYAML, OriginDefault, logger); err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}
	if err := cfg.apply(data, OriginUser, logger); err != nil {
		return nil, err
	}
	cfg.validate(logger)
	return cfg, nil
}

// apply decodes one layer file over cfg.
func (c *Config) apply(data []byte, origin string, logger *slog.Logger) error {
	var l layer
	if err := yaml.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !l.Settings.IsZero() {
		settings := c.Settings
		if err := l.Settings.Decode(&settings); err != nil {
			return fmt.Errorf("%w: settings: %v", ErrInvalidConfig, err)
		}
		c.Settings = settings
	}
	c.mergeLinters(l.Linters, origin, logger)
	return nil
}

// mergeLinters decodes each node over a copy of the existing entry. An
// entry that fails to decode is logged and the previous value kept.
func (c *Config) mergeLinters(nodes map[string]yaml.Node, origin string, logger *slog.Logger) {
	for name, node := range nodes {
		merged := c.Linters[name].Clone()
		if err := node.Decode(&merged); err != nil {
			logger.Warn("Skipping invalid linter configuration",
				slog.String("linter", name),
				slog.String("origin", origin),
				slog.String("error", err.Error()),
			)
			continue
		}
		if merged.Name == "" {
			merged.Name = name
		}
		merged.Origin = origin
		c.Linters[name] = merged
	}
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
