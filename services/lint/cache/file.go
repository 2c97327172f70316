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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// DefaultDirName is the directory created under os.TempDir by the file
// backend when no root is configured.
const DefaultDirName = "lintbridge-cache"

// FileStore keeps one JSON file per entry at <root>/<tool>/<md5(path)>.
//
// Thread Safety: Safe for concurrent use. Writes go through a temporary
// file and rename, so readers never observe a partial entry.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at root, or at
// <os.TempDir()>/lintbridge-cache when root is empty.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), DefaultDirName)
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the store's directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) entryPath(tool, path string) string {
	return filepath.Join(s.toolDir(tool), Hash(path))
}

// toolDir returns the directory of tool's entries. A name that is not a
// single local path element is replaced by its hash so it stays inside the
// root.
func (s *FileStore) toolDir(tool string) string {
	if !filepath.IsLocal(tool) || strings.ContainsAny(tool, `/\`) {
		tool = Hash(tool)
	}
	return filepath.Join(s.root, tool)
}

// Read implements Store.
func (s *FileStore) Read(tool, path string) ([]offense.Offense, bool, error) {
	data, err := os.ReadFile(s.entryPath(tool, path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	var offenses []offense.Offense
	if err := json.Unmarshal(data, &offenses); err != nil {
		return nil, false, fmt.Errorf("%w: %s/%s: %v", ErrCorruptEntry, tool, Hash(path), err)
	}
	return offenses, true, nil
}

// Write implements Store.
func (s *FileStore) Write(tool, path string, offenses []offense.Offense) error {
	if offenses == nil {
		offenses = []offense.Offense{}
	}
	data, err := json.Marshal(offenses)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	dir := s.toolDir(tool)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.entryPath(tool, path)); err != nil {
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear(tool string) error {
	if tool == "" {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			return fmt.Errorf("list cache directory: %w", err)
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
		}
		return nil
	}
	if err := os.RemoveAll(s.toolDir(tool)); err != nil {
		return fmt.Errorf("clear cache for %s: %w", tool, err)
	}
	return nil
}

// Close implements Store. The file store holds no resources.
func (s *FileStore) Close() error {
	return nil
}
