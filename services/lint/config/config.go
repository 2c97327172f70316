// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the linter configuration map and global settings.
//
// Three layers are merged per linter name: the embedded defaults, the
// user configuration file, and companion extension manifests. A later
// layer overrides only the fields it sets. The merged Config is treated
// as read-only and passed explicitly to the pipeline.
package config

import (
	"slices"
	"time"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/command"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings are the global switches consumed by the pipeline.
type Settings struct {
	// Enabled turns linting off entirely when false.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Cache enables replaying the last results before a fresh run.
	Cache bool `yaml:"cache" json:"cache"`

	// CacheBackend is "file", "badger" or "memory".
	CacheBackend string `yaml:"cache_backend" json:"cacheBackend" validate:"omitempty,oneof=file badger memory"`

	// CacheDir overrides the cache root. Empty uses the temp directory.
	CacheDir string `yaml:"cache_dir,omitempty" json:"cacheDir,omitempty"`

	// Debug lowers the log level and sets $debug for command templates.
	Debug bool `yaml:"debug" json:"debug"`

	// Timeout bounds each linter process.
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`

	// Concurrency caps linter processes run at once per document.
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"gte=0"`

	// DiscardStale drops results of superseded runs instead of merging
	// them.
	DiscardStale bool `yaml:"discard_stale" json:"discardStale"`

	// ShimDir holds "<tool>-shim" overrides for linter executables.
	ShimDir string `yaml:"shim_dir,omitempty" json:"shimDir,omitempty"`

	// ExtensionsDir is scanned for companion extension manifests.
	ExtensionsDir string `yaml:"extensions_dir,omitempty" json:"extensionsDir,omitempty"`

	// Delay is the debounce interval for file system triggers.
	Delay time.Duration `yaml:"delay" json:"delay" validate:"gte=0"`

	// RunOnTextChange lints on every buffer change, not only on save.
	RunOnTextChange bool `yaml:"run_on_text_change" json:"runOnTextChange"`
}

// =============================================================================
// LINTER CONFIG
// =============================================================================

// LinterConfig is the static description of one linter.
type LinterConfig struct {
	// Name is the linter name and the source of its offenses.
	Name string `yaml:"name" json:"name" validate:"required"`

	// URL is the linter's home page.
	URL string `yaml:"url,omitempty" json:"url,omitempty" validate:"omitempty,url"`

	// Languages are the language identifiers the linter applies to.
	Languages []string `yaml:"languages" json:"languages" validate:"required,min=1,dive,required"`

	// Enabled turns the linter on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Capabilities lists the fix and ignore operations offered.
	Capabilities []adapter.Capability `yaml:"capabilities,omitempty" json:"capabilities,omitempty" validate:"dive,capability"`

	// Command is the invocation template.
	Command command.Template `yaml:"command" json:"command" validate:"required,min=1"`

	// ConfigFiles are searched up the directory tree to set $config.
	ConfigFiles []string `yaml:"config_files,omitempty" json:"configFiles,omitempty"`

	// Args declares derived flags available to the template.
	Args map[string]command.ArgSpec `yaml:"args,omitempty" json:"args,omitempty"`

	// When lists variables that must all be truthy for the linter to run.
	When []string `yaml:"when,omitempty" json:"when,omitempty"`

	// Adapter names the registered implementation. Defaults to Name.
	Adapter string `yaml:"adapter,omitempty" json:"adapter,omitempty"`

	// Pattern configures the pattern adapter.
	Pattern *adapter.PatternSpec `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Origin records the layer that last touched the entry: "default",
	// "user" or "extension:<name>".
	Origin string `yaml:"-" json:"origin"`
}

// Implementation returns the registered adapter name for the linter.
func (c LinterConfig) Implementation() string {
	if c.Adapter != "" {
		return c.Adapter
	}
	return c.Name
}

// Has reports whether the linter declares capability want.
func (c LinterConfig) Has(want adapter.Capability) bool {
	return slices.Contains(c.Capabilities, want)
}

// AppliesTo reports whether the linter handles languageID.
func (c LinterConfig) AppliesTo(languageID string) bool {
	return slices.Contains(c.Languages, languageID)
}

// Request builds the command expansion request for ctx.
func (c LinterConfig) Request(ctx command.Context) command.Request {
	return command.Request{
		Command: c.Command,
		Args:    c.Args,
		When:    c.When,
		Context: ctx,
	}
}

// Clone returns a deep copy, so decoding a layer over it never mutates
// the source.
func (c LinterConfig) Clone() LinterConfig {
	out := c
	out.Languages = slices.Clone(c.Languages)
	out.Capabilities = slices.Clone(c.Capabilities)
	out.Command = c.Command.Clone()
	out.ConfigFiles = slices.Clone(c.ConfigFiles)
	out.When = slices.Clone(c.When)
	if c.Args != nil {
		out.Args = make(map[string]command.ArgSpec, len(c.Args))
		for k, v := range c.Args {
			out.Args[k] = command.ArgSpec{
				Languages:  slices.Clone(v.Languages),
				Extensions: slices.Clone(v.Extensions),
			}
		}
	}
	if c.Pattern != nil {
		p := *c.Pattern
		out.Pattern = &p
	}
	return out
}

// =============================================================================
// CONFIG
// =============================================================================

// Config is the merged configuration.
type Config struct {
	Settings Settings
	Linters  map[string]LinterConfig

	// Problems records linters disabled by validation, keyed by name.
	Problems map[string]error
}

// Names returns the linter names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Linters))
	for name := range c.Linters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Linter returns the named linter config.
func (c *Config) Linter(name string) (LinterConfig, bool) {
	l, ok := c.Linters[name]
	return l, ok
}

// ForLanguage returns the enabled linters that apply to languageID,
// sorted by name.
func (c *Config) ForLanguage(languageID string) []LinterConfig {
	var out []LinterConfig
	for _, name := range c.Names() {
		l := c.Linters[name]
		if l.Enabled && l.AppliesTo(languageID) {
			out = append(out, l)
		}
	}
	return out
}
