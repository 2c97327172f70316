// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adapter

import (
	"fmt"
	"sort"
	"sync"
)

// PatternSpec configures the line-pattern adapter that companion
// extensions can use without shipping code.
type PatternSpec struct {
	// Regex matches one finding per line. Named groups line, column,
	// endLine, endColumn, severity, code and message are recognized.
	Regex string `yaml:"regex" json:"regex" validate:"required"`

	// Stream selects "stdout" (default) or "stderr".
	Stream string `yaml:"stream,omitempty" json:"stream,omitempty" validate:"omitempty,oneof=stdout stderr"`

	// Severity is used when the regex has no severity group.
	Severity string `yaml:"severity,omitempty" json:"severity,omitempty"`

	// DocsURL may contain "{code}", replaced with the rule code.
	DocsURL string `yaml:"docs_url,omitempty" json:"docs_url,omitempty"`
}

// Spec is what a Factory needs to build a linter instance.
type Spec struct {
	// Name is the linter name offenses carry as their source.
	Name string

	// Pattern is set for pattern-based linters.
	Pattern *PatternSpec
}

// Factory builds a linter from its spec.
type Factory func(spec Spec) (Linter, error)

// Registry maps implementation names to factories.
//
// Description:
//
//	Populated once at startup by typed registration calls. Linter configs
//	select an implementation by name, which lets a companion configuration
//	reuse an existing implementation under a new linter name.
//
// Thread Safety: Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAdapter, name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is like Register but panics on duplicates. Intended for
// init-time registration of built-in linters.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Build instantiates the implementation registered under impl.
func (r *Registry) Build(impl string, spec Spec) (Linter, error) {
	r.mu.RLock()
	factory, ok := r.factories[impl]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, impl)
	}
	return factory(spec)
}

// Has reports whether impl is registered.
func (r *Registry) Has(impl string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[impl]
	return ok
}

// Names returns the registered implementation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
