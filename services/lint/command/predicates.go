// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package command

import (
	"os"
	"path/filepath"
	"regexp"
)

// Computed predicate names.
const (
	// PredicateBundler is true when the root dir has a Bundler manifest.
	PredicateBundler = "$is-bundler"

	// PredicateRails is true when the Bundler manifest declares the rails gem.
	PredicateRails = "$is-rails"
)

// Predicate computes a boolean variable by probing a project root.
type Predicate func(rootDir string) bool

var railsGem = regexp.MustCompile(`(?m)^gem ("rails"|'rails')`)

// gemfileNames lists Bundler manifest names in lookup order.
var gemfileNames = []string{"Gemfile", "Gemfile.rb", "gems.rb"}

// DefaultPredicates returns the built-in computed predicates.
func DefaultPredicates() map[string]Predicate {
	return map[string]Predicate{
		PredicateBundler: func(rootDir string) bool {
			return FindGemfile(rootDir) != ""
		},
		PredicateRails: isRails,
	}
}

// FindGemfile returns the first Bundler manifest found in rootDir, or "".
func FindGemfile(rootDir string) string {
	if rootDir == "" {
		return ""
	}
	for _, name := range gemfileNames {
		path := filepath.Join(rootDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func isRails(rootDir string) bool {
	gemfile := FindGemfile(rootDir)
	if gemfile == "" {
		return false
	}
	content, err := os.ReadFile(gemfile)
	if err != nil {
		return false
	}
	return railsGem.Match(content)
}

// FindConfigFile searches for a linter configuration file.
//
// Description:
//
//	Walks from the directory containing filePath up to the filesystem root.
//	In each directory the candidates are tried in order and the first one
//	that exists wins.
//
// Inputs:
//
//	filePath - The document path
//	candidates - Configuration file names (e.g., ".rubocop.yml")
//
// Outputs:
//
//	string - Absolute path of the config file, or "" when none is found
func FindConfigFile(filePath string, candidates []string) string {
	if len(candidates) == 0 || filePath == "" {
		return ""
	}

	dir := filepath.Dir(filePath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	for {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
