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
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/cache"
	"github.com/AleutianAI/lintbridge/services/lint/command"
	"github.com/AleutianAI/lintbridge/services/lint/config"
	"github.com/AleutianAI/lintbridge/services/lint/diagnostics"
	"github.com/AleutianAI/lintbridge/services/lint/linters"
	"github.com/AleutianAI/lintbridge/services/lint/process"
)

// Executor runs one linter process. *process.Runner satisfies it.
type Executor interface {
	Run(ctx context.Context, inv process.Invocation) (*process.Result, error)
}

// entry pairs a linter's configuration with its adapter.
type entry struct {
	config  config.LinterConfig
	adapter adapter.Linter
}

// Orchestrator runs linters over documents and maintains their diagnostic
// sets.
//
// Description:
//
//	Holds the immutable merged configuration, one adapter instance per
//	configured linter, the command expander, the process executor, the
//	optional cache store and the diagnostic collection. A generation
//	counter per document identifies the current run so results of a
//	superseded run can be discarded.
//
// Thread Safety: Safe for concurrent use.
type Orchestrator struct {
	cfg            *config.Config
	entries        map[string]entry
	problems       map[string]error
	expander       *command.Expander
	executor       Executor
	store          cache.Store
	diags          *diagnostics.Collection
	logger         *slog.Logger
	workspaceRoots []string

	// mu guards generations and orders stale checks against merges.
	mu          sync.Mutex
	generations map[string]uint64
}

// options collects construction parameters before the Orchestrator is built.
type options struct {
	registry       *adapter.Registry
	expander       *command.Expander
	executor       Executor
	store          cache.Store
	diags          *diagnostics.Collection
	logger         *slog.Logger
	workspaceRoots []string
}

// Option configures the Orchestrator.
type Option func(*options)

// WithRegistry sets the adapter registry. Defaults to every built-in adapter.
func WithRegistry(reg *adapter.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithExpander sets the command expander.
func WithExpander(e *command.Expander) Option {
	return func(o *options) {
		o.expander = e
	}
}

// WithExecutor sets the process executor.
func WithExecutor(e Executor) Option {
	return func(o *options) {
		o.executor = e
	}
}

// WithStore enables cache replay and persistence through store. Replay
// still requires the cache setting.
func WithStore(store cache.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithCollection sets the diagnostic collection results are merged into.
func WithCollection(c *diagnostics.Collection) Option {
	return func(o *options) {
		o.diags = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWorkspaceRoots sets the roots used for $rootDir. A document outside
// every root uses its own directory.
func WithWorkspaceRoots(roots ...string) Option {
	return func(o *options) {
		o.workspaceRoots = append(o.workspaceRoots, roots...)
	}
}

// NewOrchestrator creates an orchestrator for cfg.
//
// Description:
//
//	Builds one adapter per configured linter through the registry. A
//	linter whose adapter cannot be built is recorded as a problem and
//	never runs; it does not fail construction. Declared capabilities the
//	adapter does not implement are logged at debug level.
//
// Inputs:
//
//	cfg - The merged configuration. Must not be nil.
//	opts - Optional collaborators. Defaults are the built-in registry, a
//	       runner honoring the configured timeout, a shim-aware expander and
//	       a fresh collection.
//
// Outputs:
//
//	*Orchestrator - The orchestrator
//	error - Non-nil if cfg is nil
func NewOrchestrator(cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: nil config")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.registry == nil {
		o.registry = linters.NewRegistry()
	}
	if o.expander == nil {
		o.expander = command.NewExpander(
			command.WithShimDir(cfg.Settings.ShimDir),
			command.WithLogger(o.logger),
		)
	}
	if o.executor == nil {
		o.executor = process.NewRunner(
			process.WithTimeout(cfg.Settings.Timeout),
			process.WithLogger(o.logger),
		)
	}
	if o.diags == nil {
		o.diags = diagnostics.NewCollection(o.logger)
	}

	roots := make([]string, 0, len(o.workspaceRoots))
	for _, root := range o.workspaceRoots {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		roots = append(roots, root)
	}

	orch := &Orchestrator{
		cfg:            cfg,
		entries:        make(map[string]entry, len(cfg.Linters)),
		problems:       make(map[string]error),
		expander:       o.expander,
		executor:       o.executor,
		store:          o.store,
		diags:          o.diags,
		logger:         o.logger,
		workspaceRoots: roots,
		generations:    make(map[string]uint64),
	}

	for _, name := range cfg.Names() {
		lc := cfg.Linters[name]
		impl, err := o.registry.Build(lc.Implementation(), adapter.Spec{Name: lc.Name, Pattern: lc.Pattern})
		if err != nil {
			orch.problems[name] = err
			orch.logger.Warn("Linter adapter unavailable",
				slog.String("linter", name),
				slog.String("adapter", lc.Implementation()),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, c := range lc.Capabilities {
			if !adapter.Supports(impl, c) {
				orch.logger.Debug("Declared capability not implemented",
					slog.String("linter", name),
					slog.String("capability", string(c)),
					slog.String("function", adapter.FunctionFor(c)),
				)
			}
		}
		orch.entries[lc.Name] = entry{config: lc, adapter: impl}
	}

	return orch, nil
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() *config.Config {
	return o.cfg
}

// Collection returns the diagnostic collection.
func (o *Orchestrator) Collection() *diagnostics.Collection {
	return o.diags
}

// LinterStatus describes one configured linter.
type LinterStatus struct {
	Name           string               `json:"name"`
	Implementation string               `json:"implementation"`
	Languages      []string             `json:"languages"`
	Enabled        bool                 `json:"enabled"`
	Capabilities   []adapter.Capability `json:"capabilities,omitempty"`
	Origin         string               `json:"origin"`

	// Available is false when the adapter could not be built or the
	// configuration failed validation.
	Available bool   `json:"available"`
	Problem   string `json:"problem,omitempty"`
}

// Linters lists every configured linter, sorted by name.
func (o *Orchestrator) Linters() []LinterStatus {
	names := o.cfg.Names()
	out := make([]LinterStatus, 0, len(names))
	for _, name := range names {
		lc := o.cfg.Linters[name]
		status := LinterStatus{
			Name:           name,
			Implementation: lc.Implementation(),
			Languages:      slices.Clone(lc.Languages),
			Enabled:        lc.Enabled,
			Capabilities:   slices.Clone(lc.Capabilities),
			Origin:         lc.Origin,
			Available:      true,
		}
		if err, ok := o.cfg.Problems[name]; ok && err != nil {
			status.Available = false
			status.Problem = err.Error()
		}
		if err, ok := o.problems[name]; ok {
			status.Available = false
			status.Problem = err.Error()
		}
		out = append(out, status)
	}
	return out
}

// ClearCache removes cached results of linter, or of every linter when
// linter is empty. It is a no-op without a store.
func (o *Orchestrator) ClearCache(linter string) error {
	if o.store == nil {
		return nil
	}
	if err := o.store.Clear(linter); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// lookup returns the entry that produced offenses with source name.
func (o *Orchestrator) lookup(name string) (entry, error) {
	e, ok := o.entries[name]
	if !ok {
		return entry{}, fmt.Errorf("%w: %q", ErrUnknownLinter, name)
	}
	return e, nil
}

// selectFor returns the enabled, buildable linters for languageID, sorted
// by name.
func (o *Orchestrator) selectFor(languageID string) []entry {
	var out []entry
	for _, lc := range o.cfg.ForLanguage(languageID) {
		if e, ok := o.entries[lc.Name]; ok {
			out = append(out, e)
		}
	}
	return out
}

// nextGeneration starts a new generation for uri. Callers hold o.mu.
func (o *Orchestrator) nextGeneration(uri string) uint64 {
	o.generations[uri]++
	return o.generations[uri]
}

// Generation returns the current generation of uri, 0 before any run.
func (o *Orchestrator) Generation(uri string) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generations[uri]
}
