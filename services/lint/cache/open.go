// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	// Backend is "file" (default), "badger" or "memory".
	Backend string

	// Dir is the root directory. Empty selects a directory under
	// os.TempDir.
	Dir string

	// Logger is passed to backends that log.
	Logger *slog.Logger
}

// Open creates the store selected by opts.Backend.
//
// Inputs:
//
//	opts - Backend selection
//
// Outputs:
//
//	Store - The opened store. Caller must call Close() when done.
//	error - ErrUnknownBackend, or the backend's open error
func Open(opts Options) (Store, error) {
	var (
		store Store
		err   error
	)
	switch opts.Backend {
	case "", BackendFile:
		store, err = NewFileStore(opts.Dir)
	case BackendBadger:
		dir := opts.Dir
		if dir == "" {
			dir = filepath.Join(os.TempDir(), DefaultDirName+"-badger")
		}
		cfg := DefaultBadgerConfig(dir)
		cfg.Logger = opts.Logger
		store, err = OpenBadger(cfg)
	case BackendMemory:
		store, err = OpenBadger(BadgerConfig{InMemory: true, Logger: opts.Logger})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
