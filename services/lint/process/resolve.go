// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package process

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const listSeparator = filepath.ListSeparator

// defaultPathExt is tried on Windows when PATHEXT is unset.
const defaultPathExt = ".exe"

// Resolver finds executables on the search path.
//
// Thread Safety: Safe for concurrent use.
type Resolver struct {
	getenv     func(string) string
	goos       string
	executable func(string) bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGetenv overrides environment lookup for PATH and PATHEXT.
func WithGetenv(getenv func(string) string) ResolverOption {
	return func(r *Resolver) {
		r.getenv = getenv
	}
}

// WithGOOS overrides the platform used to decide on extension probing.
func WithGOOS(goos string) ResolverOption {
	return func(r *Resolver) {
		r.goos = goos
	}
}

// NewResolver creates a resolver reading the live process environment.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		getenv:     os.Getenv,
		goos:       runtime.GOOS,
		executable: isExecutable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the path of the executable for binary, resolving
// relative literal paths against the current directory. See ResolveIn.
func (r *Resolver) Resolve(binary string) (string, error) {
	return r.ResolveIn(binary, "")
}

// ResolveIn returns the path of the executable for binary as started from
// dir.
//
// Description:
//
//	A binary containing a path separator is a literal path and is only
//	checked for the executable bit. A relative literal path is joined with
//	dir, the working directory the process will run in. Any other name is
//	searched in every PATH directory. On Windows each PATHEXT suffix
//	(default ".exe") is tried after the bare name.
//
// Inputs:
//
//	binary - argv[0] of the command
//	dir - The process working directory. Empty means the current one.
//
// Outputs:
//
//	string - The executable path
//	error - *ResolutionError wrapping ErrNotFound or ErrNotExecutable,
//	        or ErrEmptyCommand
//
// Thread Safety: Safe for concurrent use.
func (r *Resolver) ResolveIn(binary, dir string) (string, error) {
	if binary == "" {
		return "", ErrEmptyCommand
	}

	if strings.ContainsRune(binary, '/') || strings.ContainsRune(binary, filepath.Separator) {
		path := binary
		if dir != "" && !filepath.IsAbs(path) {
			// exec would otherwise resolve a relative dir twice.
			if abs, err := filepath.Abs(filepath.Join(dir, path)); err == nil {
				path = abs
			}
		}
		if r.executable(path) {
			return path, nil
		}
		return "", &ResolutionError{
			Binary:     binary,
			Candidates: []string{path},
			Err:        ErrNotExecutable,
		}
	}

	candidates := r.Candidates(binary)
	dirs := r.SearchPath()

	for _, candidate := range candidates {
		for _, dir := range dirs {
			path := filepath.Join(dir, candidate)
			if r.executable(path) {
				return path, nil
			}
		}
	}

	return "", &ResolutionError{
		Binary:     binary,
		Candidates: candidates,
		SearchPath: dirs,
		Err:        ErrNotFound,
	}
}

// Candidates returns the file names tried for binary, in order.
func (r *Resolver) Candidates(binary string) []string {
	candidates := []string{binary}
	if r.goos != "windows" {
		return candidates
	}

	pathExt := r.getenv("PATHEXT")
	if pathExt == "" {
		pathExt = defaultPathExt
	}
	for _, ext := range strings.Split(pathExt, ";") {
		if ext == "" {
			continue
		}
		candidates = append(candidates, binary+ext)
	}
	return candidates
}

// SearchPath returns the non-empty PATH entries.
func (r *Resolver) SearchPath() []string {
	var dirs []string
	for _, dir := range filepath.SplitList(r.getenv("PATH")) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
