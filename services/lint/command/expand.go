// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package command

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/singleflight"
)

// ArgSpec declares a derived argument flag.
//
// The flag is true unless it is restricted by Languages or Extensions and
// the context's $language or $extension is not listed.
type ArgSpec struct {
	Languages  []string `yaml:"languages,omitempty" json:"languages,omitempty"`
	Extensions []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// Request is everything one expansion needs.
type Request struct {
	// Command is the template to render.
	Command Template

	// Args declares derived argument flags by name.
	Args map[string]ArgSpec

	// When lists preconditions that must all be truthy.
	When []string

	// Context holds the caller-provided variables. It is not modified.
	Context Context
}

// Expander renders command templates.
//
// Thread Safety: Safe for concurrent use.
type Expander struct {
	shimDir    string
	predicates map[string]Predicate
	evals      singleflight.Group
	logger     *slog.Logger
}

// Option configures the Expander.
type Option func(*Expander)

// WithShimDir sets the directory searched for "<binary>-shim" overrides.
func WithShimDir(dir string) Option {
	return func(e *Expander) {
		e.shimDir = dir
	}
}

// WithPredicate registers or replaces a computed predicate.
func WithPredicate(name string, p Predicate) Option {
	return func(e *Expander) {
		e.predicates[name] = p
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) {
		e.logger = logger
	}
}

// NewExpander creates an expander with the built-in computed predicates.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		predicates: DefaultPredicates(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand renders a template into an argument vector.
//
// Description:
//
//	Resolves derived flags, computed predicates and negated twins on a copy
//	of the request context, evaluates the when preconditions, renders the
//	template and applies shim substitution. The same request always yields
//	the same result for the same filesystem state.
//
// Inputs:
//
//	req - The template, arg declarations, preconditions and context
//
// Outputs:
//
//	[]string - The argument vector, argv[0] being the executable. Nil when
//	           a precondition fails or the template renders to nothing.
//
// Thread Safety: Safe for concurrent use.
func (e *Expander) Expand(req Request) []string {
	vars := e.Resolve(req)

	for _, name := range req.When {
		if !vars.Truthy(name) {
			e.logger.Debug("Command precondition not met",
				slog.String("precondition", name),
			)
			return nil
		}
	}

	argv := render(req.Command, vars)
	if len(argv) == 0 {
		return nil
	}

	return e.substituteShim(argv)
}

// Resolve returns the fully resolved variable set for a request: the
// caller's context plus derived flags, computed predicates and negated
// twins.
func (e *Expander) Resolve(req Request) Context {
	vars := req.Context.Clone()

	language := vars.String(VarLanguage)
	extension := vars.String(VarExtension)
	for name, spec := range req.Args {
		value := true
		if len(spec.Languages) > 0 {
			value = value && slices.Contains(spec.Languages, language)
		}
		if len(spec.Extensions) > 0 {
			value = value && slices.Contains(spec.Extensions, extension)
		}
		vars[name] = value
	}

	rootDir := vars.String(VarRootDir)
	for _, name := range referencedNames(req) {
		if _, ok := vars[name]; ok {
			continue
		}
		predicate, ok := e.predicates[name]
		if !ok {
			continue
		}
		vars[name] = e.evaluate(name, rootDir, predicate)
	}

	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	for _, key := range keys {
		vars["!"+key] = !Truthy(vars[key])
	}

	return vars
}

// evaluate runs a predicate, collapsing concurrent evaluations of the same
// predicate against the same root into one filesystem walk.
func (e *Expander) evaluate(name, rootDir string, predicate Predicate) bool {
	v, _, _ := e.evals.Do(name+"\x00"+rootDir, func() (any, error) {
		return predicate(rootDir), nil
	})
	return v.(bool)
}

func (e *Expander) substituteShim(argv []string) []string {
	if e.shimDir == "" {
		return argv
	}
	shim := filepath.Join(e.shimDir, filepath.Base(argv[0])+"-shim")
	if info, err := os.Stat(shim); err == nil && !info.IsDir() {
		e.logger.Debug("Using shim",
			slog.String("binary", argv[0]),
			slog.String("shim", shim),
		)
		argv[0] = shim
	}
	return argv
}

// referencedNames lists every name in the template and the when list,
// with a leading "!" stripped so negated references resolve their base.
func referencedNames(req Request) []string {
	names := append(req.Command.Names(), req.When...)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, strings.TrimPrefix(name, "!"))
	}
	return out
}

// render flattens the template against resolved variables.
func render(tmpl Template, vars Context) []string {
	var argv []string
	emit := func(v any) {
		if Truthy(v) {
			argv = append(argv, stringify(v))
		}
	}

	for _, entry := range tmpl {
		if !entry.IsGroup() {
			if v := vars[entry.Token]; Truthy(v) {
				emit(v)
			} else {
				emit(entry.Token)
			}
			continue
		}

		if !vars.Truthy(entry.Group[0]) {
			continue
		}
		for _, item := range entry.Group[1:] {
			if v, ok := vars[item]; ok && v != nil {
				emit(v)
			} else {
				emit(item)
			}
		}
	}

	return argv
}
