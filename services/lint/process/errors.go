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
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the process package.
var (
	// ErrEmptyCommand indicates an empty argument vector.
	ErrEmptyCommand = errors.New("empty command")

	// ErrNotFound indicates the binary was not found on the search path.
	ErrNotFound = errors.New("binary not found in PATH")

	// ErrNotExecutable indicates a literal binary path that is not executable.
	ErrNotExecutable = errors.New("binary is not executable")

	// ErrTimeout indicates the process exceeded its deadline.
	ErrTimeout = errors.New("process timeout")

	// ErrSpawn indicates the process could not be started.
	ErrSpawn = errors.New("process failed to start")
)

// ResolutionError describes a failed binary lookup.
//
// Thread Safety: Immutable after creation.
type ResolutionError struct {
	// Binary is argv[0] as requested.
	Binary string

	// Candidates are the file names that were tried.
	Candidates []string

	// SearchPath lists the directories that were searched. Empty for
	// literal paths.
	SearchPath []string

	// Err is ErrNotFound or ErrNotExecutable.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if len(e.SearchPath) == 0 {
		return fmt.Sprintf("%s: %v", e.Binary, e.Err)
	}
	return fmt.Sprintf("%s: %v (searched for %s in %s)",
		e.Binary, e.Err, strings.Join(e.Candidates, ", "), strings.Join(e.SearchPath, string(listSeparator)))
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}
