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
	"log/slog"
	"os"

	"github.com/AleutianAI/lintbridge/services/lint/diagnostics"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// DefaultMaxFileSize bounds the files a Trigger reads.
const DefaultMaxFileSize = 2 << 20

// Orchestrator is the part of *pipeline.Orchestrator a Trigger uses.
type Orchestrator interface {
	Lint(ctx context.Context, doc textdoc.Document) *pipeline.Run
	Collection() *diagnostics.Collection
}

// Trigger turns change batches into lint runs.
//
// Thread Safety: Handle is called from the watcher's single goroutine.
type Trigger struct {
	orch        Orchestrator
	logger      *slog.Logger
	maxFileSize int64
	onRun       func(path string, run *pipeline.Run)
}

// TriggerOption configures a Trigger.
type TriggerOption func(*Trigger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TriggerOption {
	return func(t *Trigger) {
		t.logger = logger
	}
}

// WithMaxFileSize skips files larger than n bytes.
func WithMaxFileSize(n int64) TriggerOption {
	return func(t *Trigger) {
		t.maxFileSize = n
	}
}

// WithRunCallback is called with every started run.
func WithRunCallback(fn func(path string, run *pipeline.Run)) TriggerOption {
	return func(t *Trigger) {
		t.onRun = fn
	}
}

// NewTrigger creates a trigger driving orch.
func NewTrigger(orch Orchestrator, opts ...TriggerOption) *Trigger {
	t := &Trigger{
		orch:        orch,
		logger:      slog.Default(),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handle lints written files and clears removed ones. It satisfies Handler.
//
// Description:
//
//	Files whose language cannot be determined from their name are
//	skipped. A written file is read from disk and linted as a new
//	document snapshot. A removed or renamed file has its diagnostic set
//	cleared, since its old path no longer refers to a document.
func (t *Trigger) Handle(ctx context.Context, changes []Change) {
	for _, change := range changes {
		uri := textdoc.URIFromPath(change.Path)

		switch change.Op {
		case OpRemove, OpRename:
			t.orch.Collection().Clear(uri)
			continue
		}

		language := textdoc.LanguageFor(change.Path)
		if language == "" {
			continue
		}

		info, err := os.Stat(change.Path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > t.maxFileSize {
			t.logger.Debug("Skipping large file",
				slog.String("path", change.Path),
				slog.Int64("size", info.Size()),
			)
			continue
		}

		content, err := os.ReadFile(change.Path)
		if err != nil {
			t.logger.Warn("Failed to read changed file",
				slog.String("path", change.Path),
				slog.String("error", err.Error()),
			)
			continue
		}

		doc := textdoc.New(change.Path, language, string(content))
		run := t.orch.Lint(ctx, doc)
		t.logger.Debug("Lint triggered",
			slog.String("path", change.Path),
			slog.String("op", change.Op.String()),
			slog.String("language", language),
		)
		if t.onRun != nil && run != nil {
			t.onRun(change.Path, run)
		}
	}
}
