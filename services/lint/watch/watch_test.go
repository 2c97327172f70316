// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/lintbridge/services/lint/diagnostics"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

type fakeOrchestrator struct {
	mu   sync.Mutex
	docs []textdoc.Document
	diag *diagnostics.Collection
}

func newFakeOrchestrator() *fakeOrchestrator {
	return &fakeOrchestrator{diag: diagnostics.NewCollection(nil)}
}

func (f *fakeOrchestrator) Lint(_ context.Context, doc textdoc.Document) *pipeline.Run {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	return &pipeline.Run{URI: doc.URI}
}

func (f *fakeOrchestrator) Collection() *diagnostics.Collection {
	return f.diag
}

func (f *fakeOrchestrator) Docs() []textdoc.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]textdoc.Document(nil), f.docs...)
}

func TestDeduplicate(t *testing.T) {
	now := time.Now()
	changes := []Change{
		{Path: "/a.rb", Op: OpCreate, Time: now},
		{Path: "/b.rb", Op: OpWrite, Time: now},
		{Path: "/a.rb", Op: OpWrite, Time: now.Add(time.Millisecond)},
	}

	got := deduplicate(changes)
	require.Len(t, got, 2)
	assert.Equal(t, "/a.rb", got[0].Path)
	assert.Equal(t, OpWrite, got[0].Op)
	assert.Equal(t, "/b.rb", got[1].Path)
}

func TestShouldIgnore(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, nil, nil)
	require.NoError(t, err)
	defer w.Stop()

	tests := []struct {
		path string
		want bool
	}{
		{path: filepath.Join(root, "app.rb"), want: false},
		{path: filepath.Join(root, ".git", "HEAD"), want: true},
		{path: filepath.Join(root, "web", "node_modules", "x.js"), want: true},
		{path: filepath.Join(root, "app.rb.swp"), want: true},
		{path: filepath.Join(root, "app.rb~"), want: true},
		{path: filepath.Join(root, "gitlab", "ci.yml"), want: false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			assert.Equal(t, tt.want, w.shouldIgnore(tt.path))
		})
	}

	w.AddPattern("vendor")
	assert.True(t, w.shouldIgnore(filepath.Join(root, "vendor", "lib.rb")))
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "rename", OpRename.String())
	assert.Equal(t, "unknown", Op(42).String())
}

func TestTrigger_Handle(t *testing.T) {
	dir := t.TempDir()
	rb := filepath.Join(dir, "app.rb")
	require.NoError(t, os.WriteFile(rb, []byte("puts 1\n"), 0o644))
	big := filepath.Join(dir, "big.rb")
	require.NoError(t, os.WriteFile(big, make([]byte, 64), 0o644))
	unknown := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(unknown, []byte("x"), 0o644))
	gone := filepath.Join(dir, "gone.rb")

	orch := newFakeOrchestrator()
	orch.diag.Set(textdoc.URIFromPath(gone), []offense.Offense{{Source: "rubocop"}})

	var started []string
	trigger := NewTrigger(orch,
		WithMaxFileSize(32),
		WithRunCallback(func(path string, _ *pipeline.Run) {
			started = append(started, path)
		}),
	)

	trigger.Handle(context.Background(), []Change{
		{Path: rb, Op: OpWrite},
		{Path: big, Op: OpWrite},
		{Path: unknown, Op: OpCreate},
		{Path: gone, Op: OpRemove},
		{Path: filepath.Join(dir, "missing.rb"), Op: OpWrite},
	})

	docs := orch.Docs()
	require.Len(t, docs, 1)
	assert.Equal(t, rb, docs[0].Path)
	assert.Equal(t, "ruby", docs[0].LanguageID)
	assert.Equal(t, "puts 1\n", docs[0].Text)
	assert.Equal(t, []string{rb}, started)
	assert.Empty(t, orch.diag.URIs())
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	var mu sync.Mutex
	var batches [][]Change
	handler := func(_ context.Context, changes []Change) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, changes)
	}

	w, err := New(root, handler, &Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()
	assert.True(t, w.IsWatching())

	path := filepath.Join(sub, "app.rb")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("puts 1\n"), 0o644))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, batch := range batches {
			for _, change := range batch {
				if change.Path == path {
					return true
				}
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	for _, batch := range batches {
		seen := map[string]bool{}
		for _, change := range batch {
			assert.False(t, seen[change.Path], "duplicate path in batch")
			seen[change.Path] = true
		}
	}
	mu.Unlock()

	w.Stop()
	assert.False(t, w.IsWatching())
}
