// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch lints files when they change on disk.
//
// A Watcher batches file system events with a debounce window and a
// Trigger turns each batch into lint runs: written files are read and
// linted, removed files have their diagnostics cleared.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change represents a file system change event.
type Change struct {
	// Path is the absolute path to the changed file.
	Path string

	Op   Op
	Time time.Time
}

// Op represents the type of file operation.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

// String returns the string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called with each debounced batch, from a single goroutine.
type Handler func(ctx context.Context, changes []Change)

// Options configures the Watcher.
type Options struct {
	// Debounce is how long to wait for more changes before flushing.
	// Default: 300ms
	Debounce time.Duration

	// IgnorePatterns are base names or globs of files and directories to
	// skip.
	IgnorePatterns []string

	// BufferSize is the capacity of the change channel. Default: 1000
	BufferSize int

	Logger *slog.Logger
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		Debounce:       300 * time.Millisecond,
		IgnorePatterns: []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", "*~", "__pycache__", "target"},
		BufferSize:     1000,
	}
}

// Watcher watches a directory tree and reports debounced batches.
//
// Description:
//
//	Changes are collected into a batch. When the debounce window expires
//	without new changes, the batch is deduplicated by path, keeping the
//	latest change, and handed to the handler.
//
// Thread Safety: Safe for concurrent use. The handler is called from a
// single goroutine.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	ignore   []string
	watching bool
}

// New creates a watcher for root.
//
// Inputs:
//
//	root - Directory to watch recursively
//	handler - Called with each debounced batch
//	opts - Optional configuration. Nil uses DefaultOptions.
//
// Outputs:
//
//	*Watcher - Ready to Start
//	error - Non-nil if the fsnotify watcher could not be created
func New(root string, handler Handler, opts *Options) (*Watcher, error) {
	defaults := DefaultOptions()
	if opts == nil {
		opts = &defaults
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaults.Debounce
	}
	buffer := opts.BufferSize
	if buffer <= 0 {
		buffer = defaults.BufferSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     root,
		watcher:  fw,
		handler:  handler,
		debounce: debounce,
		logger:   logger,
		changes:  make(chan Change, buffer),
		done:     make(chan struct{}),
		ignore:   append([]string(nil), opts.IgnorePatterns...),
	}, nil
}

// Start begins watching. It spawns the event processor and the debouncer,
// both of which exit on Stop or when ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.logger.Info("Watching for changes",
		slog.String("root", w.root),
		slog.Duration("debounce", w.debounce),
	)
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true while the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// AddPattern adds an ignore pattern.
func (w *Watcher) AddPattern(pattern string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignore = append(w.ignore, pattern)
}

// addRecursive adds a directory and its subdirectories to the watch list.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// shouldIgnore reports whether any path element matches an ignore pattern.
func (w *Watcher) shouldIgnore(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	for _, elem := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, pattern := range w.ignore {
			if elem == pattern {
				return true
			}
			if matched, _ := filepath.Match(pattern, elem); matched {
				return true
			}
		}
	}
	return false
}

// processEvents converts fsnotify events and feeds the debouncer.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.shouldIgnore(event.Name) {
				continue
			}

			change := Change{
				Path: event.Name,
				Op:   convertOp(event.Op),
				Time: time.Now(),
			}
			select {
			case w.changes <- change:
			default:
				w.logger.Warn("Change buffer full, dropping event",
					slog.String("path", event.Name),
				)
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory",
							slog.String("path", event.Name),
							slog.String("error", err.Error()),
						)
					}
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", slog.String("error", err.Error()))
		}
	}
}

// convertOp converts an fsnotify.Op.
func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}

// debounceLoop batches changes and calls the handler after the window.
func (w *Watcher) debounceLoop(ctx context.Context) {
	var batch []Change
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 {
			deduped := deduplicate(batch)
			if w.handler != nil {
				w.handler(ctx, deduped)
			}
			batch = batch[:0]
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// deduplicate keeps the latest change per path, in first-seen order.
func deduplicate(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	result := make([]Change, 0, len(changes))
	for _, change := range changes {
		if idx, ok := seen[change.Path]; ok {
			result[idx] = change
			continue
		}
		seen[change.Path] = len(result)
		result = append(result, change)
	}
	return result
}
