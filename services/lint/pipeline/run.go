// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/process"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// =============================================================================
// RUN
// =============================================================================

// Status is the outcome of one linter within a run.
type Status string

const (
	// StatusOK means the result was parsed and merged.
	StatusOK Status = "ok"

	// StatusSkipped means the command expanded to nothing.
	StatusSkipped Status = "skipped"

	// StatusFailed means resolution, execution or parsing failed and the
	// linter's entries were replaced with nothing.
	StatusFailed Status = "failed"

	// StatusStale means a newer run started for the document and the
	// result was discarded.
	StatusStale Status = "stale"
)

// Result is the outcome of one linter within a run.
type Result struct {
	Linter   string            `json:"linter"`
	Status   Status            `json:"status"`
	Offenses []offense.Offense `json:"offenses"`
	Duration time.Duration     `json:"duration"`

	// Err is set for StatusFailed.
	Err error `json:"-"`
}

// Run is a handle on one lint run of a document.
//
// Thread Safety: Safe for concurrent use.
type Run struct {
	// ID correlates log entries and spans of the run.
	ID string

	URI        string
	Generation uint64

	// Linters are the selected linter names, sorted.
	Linters []string

	done    chan struct{}
	mu      sync.Mutex
	results []Result
}

func newRun(uri string, generation uint64, linters []string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		URI:        uri,
		Generation: generation,
		Linters:    linters,
		done:       make(chan struct{}),
	}
}

// Done is closed when every selected linter finished.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx is done.
//
// Outputs:
//
//	[]Result - One result per selected linter, sorted by linter name
//	error - ctx.Err() if ctx ended first
func (r *Run) Wait(ctx context.Context) ([]Result, error) {
	select {
	case <-r.done:
		return r.Results(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Results returns the results recorded so far, sorted by linter name.
func (r *Run) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := slices.Clone(r.results)
	slices.SortFunc(out, func(a, b Result) int {
		return strings.Compare(a.Linter, b.Linter)
	})
	return out
}

func (r *Run) record(res Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

// =============================================================================
// LINT
// =============================================================================

// Lint starts a run of every applicable linter over doc.
//
// Description:
//
//	Selects the enabled linters whose languages include the document's
//	language. When none apply, the document's language is skipped or
//	linting is disabled, the returned run is already done and the
//	diagnostic set is untouched. Otherwise a new generation starts and,
//	when caching is on, the cached results of the selected linters
//	replace the diagnostic set before Lint returns. Each linter then runs
//	in the background, bounded by the concurrency setting, and merges its
//	result by source as soon as it finishes.
//
// Inputs:
//
//	ctx - Context for the background processes and spans
//	doc - Snapshot of the document
//
// Outputs:
//
//	*Run - Handle on the run. Never nil.
//
// Thread Safety: Safe for concurrent use. A newer Lint of the same
// document supersedes older runs.
func (o *Orchestrator) Lint(ctx context.Context, doc textdoc.Document) *Run {
	if !o.cfg.Settings.Enabled || Skipped(doc.LanguageID) {
		run := newRun(doc.URI, o.Generation(doc.URI), nil)
		close(run.done)
		return run
	}

	selected := o.selectFor(doc.LanguageID)
	if len(selected) == 0 {
		o.logger.Debug("No linters for language",
			slog.String("uri", doc.URI),
			slog.String("language", doc.LanguageID),
		)
		run := newRun(doc.URI, o.Generation(doc.URI), nil)
		close(run.done)
		return run
	}

	names := make([]string, 0, len(selected))
	for _, e := range selected {
		names = append(names, e.config.Name)
	}

	o.mu.Lock()
	generation := o.nextGeneration(doc.URI)
	o.replayCache(doc, names)
	o.mu.Unlock()

	run := newRun(doc.URI, generation, names)
	o.logger.Debug("Lint run started",
		slog.String("run_id", run.ID),
		slog.String("uri", doc.URI),
		slog.Int64("generation", int64(generation)),
		slog.Any("linters", names),
	)

	go o.execute(ctx, run, doc, selected)
	return run
}

// replayCache publishes the cached results of linters as the diagnostic
// set of doc. Callers hold o.mu.
func (o *Orchestrator) replayCache(doc textdoc.Document, linters []string) {
	if o.store == nil || !o.cfg.Settings.Cache {
		return
	}

	var cached []offense.Offense
	for _, name := range linters {
		offenses, ok, err := o.store.Read(name, doc.Path)
		if err != nil {
			o.logger.Warn("Cache read failed",
				slog.String("linter", name),
				slog.String("path", doc.Path),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			cached = append(cached, offenses...)
		}
	}
	o.diags.Set(doc.URI, cached)
}

// execute runs every selected linter and closes the run when all finish.
func (o *Orchestrator) execute(ctx context.Context, run *Run, doc textdoc.Document, selected []entry) {
	start := time.Now()
	ctx, span := startRunSpan(ctx, run.ID, doc.URI, doc.LanguageID, len(selected))
	defer span.End()
	defer close(run.done)

	var g errgroup.Group
	if n := o.cfg.Settings.Concurrency; n > 0 {
		g.SetLimit(n)
	}
	for _, e := range selected {
		g.Go(func() error {
			run.record(o.runLinter(ctx, run, doc, e))
			return nil
		})
	}
	_ = g.Wait()

	recordRunMetrics(ctx, doc.LanguageID, time.Since(start))
	o.logger.Debug("Lint run finished",
		slog.String("run_id", run.ID),
		slog.String("uri", doc.URI),
		slog.Duration("duration", time.Since(start)),
	)
}

// runLinter expands, invokes, parses, caches and merges one linter.
//
// Description:
//
//	Every failure degrades to zero offenses for the linter's source plus
//	one log entry. A panic in the adapter is recovered the same way. The
//	merge happens under o.mu so a run that became stale while its process
//	was in flight is detected before it touches the diagnostic set.
func (o *Orchestrator) runLinter(ctx context.Context, run *Run, doc textdoc.Document, e entry) Result {
	name := e.config.Name
	start := time.Now()
	ctx, span := startLinterSpan(ctx, name, run.Generation)
	defer span.End()

	res := Result{Linter: name}
	defer func() {
		res.Duration = time.Since(start)
		setLinterSpanResult(span, res.Status, len(res.Offenses))
		recordLinterMetrics(ctx, name, res.Duration, res.Status, len(res.Offenses))
	}()

	argv := o.expander.Expand(e.config.Request(o.lintContext(doc, e.config)))
	if len(argv) == 0 {
		o.logger.Debug("Linter command skipped",
			slog.String("run_id", run.ID),
			slog.String("linter", name),
		)
		res.Status = StatusSkipped
		return res
	}

	offenses, err := o.invokeAndParse(ctx, doc, e, argv)
	if err != nil {
		o.logFailure(run.ID, name, argv, err)
		res.Status = StatusFailed
		res.Err = err
	} else {
		res.Status = StatusOK
		res.Offenses = offenses
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cfg.Settings.DiscardStale && o.generations[doc.URI] != run.Generation {
		o.logger.Debug("Discarding stale linter result",
			slog.String("run_id", run.ID),
			slog.String("linter", name),
			slog.Int64("generation", int64(run.Generation)),
			slog.Int64("current", int64(o.generations[doc.URI])),
		)
		res.Status = StatusStale
		return res
	}

	if res.Status == StatusOK && o.store != nil {
		if err := o.store.Write(name, doc.Path, offenses); err != nil {
			o.logger.Warn("Cache write failed",
				slog.String("linter", name),
				slog.String("path", doc.Path),
				slog.String("error", err.Error()),
			)
		}
	}
	o.diags.ReplaceBySource(doc.URI, name, res.Offenses)
	return res
}

// invokeAndParse runs argv with the document on stdin and parses the report.
func (o *Orchestrator) invokeAndParse(ctx context.Context, doc textdoc.Document, e entry, argv []string) ([]offense.Offense, error) {
	result, err := o.executor.Run(ctx, process.Invocation{
		Argv:  argv,
		Dir:   o.rootDir(doc.Path),
		Stdin: doc.Text,
	})
	if err != nil {
		return nil, err
	}

	offenses, err := safeOffenses(e.adapter, adapter.Report{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
		Path:     doc.Path,
		Input:    doc.Text,
	})
	if err != nil {
		return nil, err
	}

	valid := offenses[:0]
	for _, off := range offenses {
		if err := off.Validate(); err != nil {
			o.logger.Debug("Dropping invalid offense",
				slog.String("linter", e.config.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		valid = append(valid, off)
	}
	return valid, nil
}

// safeOffenses calls the adapter, converting a panic into a parse error.
func safeOffenses(l adapter.Linter, report adapter.Report) (offenses []offense.Offense, err error) {
	defer func() {
		if r := recover(); r != nil {
			offenses = nil
			err = adapter.NewParseError(l.Name(), fmt.Errorf("panic: %v", r))
		}
	}()
	return l.Offenses(report)
}

// logFailure emits the single log entry for a degraded linter run.
func (o *Orchestrator) logFailure(runID, linter string, argv []string, err error) {
	attrs := []any{
		slog.String("run_id", runID),
		slog.String("linter", linter),
		slog.String("command", strings.Join(argv, " ")),
		slog.String("error", err.Error()),
	}

	var resErr *process.ResolutionError
	switch {
	case errors.As(err, &resErr):
		attrs = append(attrs, slog.Any("candidates", resErr.Candidates))
		o.logger.Warn("Linter executable not found", attrs...)
	case errors.Is(err, adapter.ErrParseOutput):
		o.logger.Warn("Linter output could not be parsed", attrs...)
	default:
		o.logger.Warn("Linter run failed", attrs...)
	}
}
