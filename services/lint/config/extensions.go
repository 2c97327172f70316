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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the companion extension manifest name.
const ManifestFile = "lintbridge-extension.yaml"

// HostName is the dependency name a companion must declare.
const HostName = "lintbridge"

// Sentinel errors for companion manifests.
var (
	// ErrMissingDependency is returned when a manifest does not depend on
	// the host.
	ErrMissingDependency = errors.New("extension does not depend on " + HostName)

	// ErrIncompatibleVersion is returned when the host is older than the
	// manifest's requires floor.
	ErrIncompatibleVersion = errors.New("extension requires a newer host")
)

// Manifest describes a companion extension that contributes linters.
type Manifest struct {
	Name      string               `yaml:"name"`
	Version   string               `yaml:"version"`
	DependsOn []string             `yaml:"depends_on"`
	Requires  string               `yaml:"requires,omitempty"`
	Linters   map[string]yaml.Node `yaml:"linters"`

	// Dir is the directory the manifest was read from.
	Dir string `yaml:"-"`
}

// ReadManifest parses the manifest in dir and checks it against the host.
//
// Inputs:
//
//	dir - Extension directory containing lintbridge-extension.yaml
//	hostVersion - Running host version. The requires check is skipped
//	              when it is not valid semver (development builds).
//
// Outputs:
//
//	*Manifest - The parsed manifest
//	error - Read or parse errors, ErrMissingDependency or
//	        ErrIncompatibleVersion
func ReadManifest(dir, hostVersion string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	m.Dir = dir
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}

	if !slices.Contains(m.DependsOn, HostName) {
		return nil, fmt.Errorf("%s: %w", m.Name, ErrMissingDependency)
	}

	if m.Requires != "" {
		floor := canonical(m.Requires)
		if !semver.IsValid(floor) {
			return nil, fmt.Errorf("%w: %s: requires %q is not a version", ErrInvalidConfig, m.Name, m.Requires)
		}
		host := canonical(hostVersion)
		if semver.IsValid(host) && semver.Compare(host, floor) < 0 {
			return nil, fmt.Errorf("%s: %w: needs %s, running %s", m.Name, ErrIncompatibleVersion, floor, host)
		}
	}
	return &m, nil
}

// DiscoverExtensions reads every manifest in the subdirectories of root,
// in directory name order. Unusable manifests are logged and skipped.
func DiscoverExtensions(root, hostVersion string, logger *slog.Logger) []*Manifest {
	entries, err := os.ReadDir(root)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Cannot read extensions directory",
				slog.String("dir", root),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var manifests []*Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		m, err := ReadManifest(dir, hostVersion)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Warn("Skipping extension",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			continue
		}
		logger.Debug("Loaded extension",
			slog.String("name", m.Name),
			slog.String("version", m.Version),
			slog.Int("linters", len(m.Linters)),
		)
		manifests = append(manifests, m)
	}
	return manifests
}

// canonical prefixes a bare version with "v" for x/mod/semver.
func canonical(v string) string {
	v = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), ">="))
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
