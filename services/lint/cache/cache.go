// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache persists the last offense list of each (linter, document)
// pair so results can be shown before a fresh run completes.
//
// Entries are never invalidated by age or size; the next successful run
// overwrites them. Two backends exist:
//
//	file   - one JSON file per entry under a temporary directory root
//	badger - an embedded BadgerDB, on disk or in memory
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"errors"

	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Sentinel errors for the cache package.
var (
	// ErrUnknownBackend is returned by Open for an unrecognized backend.
	ErrUnknownBackend = errors.New("unknown cache backend")

	// ErrCorruptEntry is returned when a stored entry cannot be decoded.
	ErrCorruptEntry = errors.New("corrupt cache entry")
)

// Store is a keyed offense snapshot store.
//
// Thread Safety: Implementations are safe for concurrent use. Writes to
// different keys never conflict.
type Store interface {
	// Read returns the stored offenses. The bool is false when no entry
	// exists.
	Read(tool, path string) ([]offense.Offense, bool, error)

	// Write replaces the entry for (tool, path).
	Write(tool, path string, offenses []offense.Offense) error

	// Clear removes every entry of tool, or all entries when tool is empty.
	Clear(tool string) error

	// Close releases the store.
	Close() error
}

// Hash returns the content-independent identity hash of a document path.
func Hash(path string) string {
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}
