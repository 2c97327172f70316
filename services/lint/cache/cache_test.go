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
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOffenses() []offense.Offense {
	return []offense.Offense{
		{
			Source:    "rubocop",
			Code:      "Style/StringLiterals",
			Message:   "Prefer single quotes.",
			Severity:  offense.SeverityWarning,
			Location:  offense.Location{LineStart: 4, ColumnStart: 2, LineEnd: 4, ColumnEnd: 7},
			InlineFix: offense.NewOffsetFix(10, 12, "'a'"),
		},
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	file, err := Open(Options{Backend: BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	disk, err := Open(Options{Backend: BackendBadger, Dir: t.TempDir()})
	require.NoError(t, err)
	mem, err := Open(Options{Backend: BackendMemory})
	require.NoError(t, err)

	all := map[string]Store{"file": file, "badger": disk, "memory": mem}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

func TestStore_ReadWrite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Read("rubocop", "/a.rb")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Write("rubocop", "/a.rb", sampleOffenses()))
			got, ok, err := s.Read("rubocop", "/a.rb")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, sampleOffenses(), got)

			// Overwrite with an empty result.
			require.NoError(t, s.Write("rubocop", "/a.rb", nil))
			got, ok, err = s.Read("rubocop", "/a.rb")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Empty(t, got)

			// Keys are per tool.
			_, ok, err = s.Read("reek", "/a.rb")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_Clear(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write("rubocop", "/a.rb", sampleOffenses()))
			require.NoError(t, s.Write("reek", "/a.rb", sampleOffenses()))

			require.NoError(t, s.Clear("rubocop"))
			_, ok, _ := s.Read("rubocop", "/a.rb")
			assert.False(t, ok)
			_, ok, _ = s.Read("reek", "/a.rb")
			assert.True(t, ok)

			require.NoError(t, s.Clear(""))
			_, ok, _ = s.Read("reek", "/a.rb")
			assert.False(t, ok)
		})
	}
}

func TestFileStore_Layout(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)

	require.NoError(t, s.Write("eslint", "/src/app.js", sampleOffenses()))
	_, err = os.Stat(filepath.Join(root, "eslint", Hash("/src/app.js")))
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "eslint", Hash("/bad.js")), []byte("{"), 0600))
	_, _, err = s.Read("eslint", "/bad.js")
	assert.ErrorIs(t, err, ErrCorruptEntry)
}

func TestFileStore_ToolNameStaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "cache")
	s, err := NewFileStore(root)
	require.NoError(t, err)

	for _, tool := range []string{"../escape", "a/b", "..", ".", ""} {
		t.Run(tool, func(t *testing.T) {
			require.NoError(t, s.Write(tool, "/src/app.js", sampleOffenses()))
			got, ok, err := s.Read(tool, "/src/app.js")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, sampleOffenses(), got)
			assert.DirExists(t, filepath.Join(root, Hash(tool)))

			require.NoError(t, s.Clear(tool))
			_, ok, err = s.Read(tool, "/src/app.js")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cache", entries[0].Name())
}

func TestHash(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Hash(""))
	assert.Equal(t, Hash("/a.rb"), Hash("/a.rb"))
	assert.NotEqual(t, Hash("/a.rb"), Hash("/b.rb"))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "redis"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
