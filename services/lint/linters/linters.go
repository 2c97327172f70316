// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package linters

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// =============================================================================
// REGISTRATION
// =============================================================================

// builtins maps implementation names to constructors.
var builtins = map[string]func(name string) adapter.Linter{
	"brakeman":         func(name string) adapter.Linter { return &Brakeman{base{name}} },
	"cargo-clippy":     func(name string) adapter.Linter { return &Clippy{base{name}} },
	"credo":            func(name string) adapter.Linter { return &Credo{base{name}} },
	"dart":             func(name string) adapter.Linter { return &Dart{base{name}} },
	"erb_lint":         func(name string) adapter.Linter { return &ERBLint{base{name}} },
	"eslint":           func(name string) adapter.Linter { return &ESLint{base{name}} },
	"gherkin-lint":     func(name string) adapter.Linter { return &GherkinLint{base{name}} },
	"hadolint":         func(name string) adapter.Linter { return &Hadolint{base{name}} },
	"language-tool":    func(name string) adapter.Linter { return &LanguageTool{base{name}} },
	"luacheck":         func(name string) adapter.Linter { return &Luacheck{base{name}} },
	"markdownlint":     func(name string) adapter.Linter { return &Markdownlint{base{name}} },
	"php-code-sniffer": func(name string) adapter.Linter { return &PHPCodeSniffer{base{name}} },
	"proselint":        func(name string) adapter.Linter { return &Proselint{base{name}} },
	"pylint":           func(name string) adapter.Linter { return &Pylint{base{name}} },
	"reek":             func(name string) adapter.Linter { return &Reek{base{name}} },
	"rubocop":          func(name string) adapter.Linter { return &Rubocop{base{name}} },
	"ruby":             func(name string) adapter.Linter { return &Ruby{base{name}} },
	"shellcheck":       func(name string) adapter.Linter { return &Shellcheck{base{name}} },
	"sqlfluff":         func(name string) adapter.Linter { return &SQLFluff{base{name}} },
	"stylelint":        func(name string) adapter.Linter { return &Stylelint{base{name}} },
	"swiftlint":        func(name string) adapter.Linter { return &SwiftLint{base{name}} },
	"textlint":         func(name string) adapter.Linter { return &Textlint{base{name}} },
	"vale":             func(name string) adapter.Linter { return &Vale{base{name}} },
	"yamllint":         func(name string) adapter.Linter { return &Yamllint{base{name}} },
}

// PatternAdapter is the implementation name of the data-driven adapter.
const PatternAdapter = "pattern"

// RegisterAll adds every built-in adapter and the pattern adapter to reg.
//
// Description:
//
//	Registers each adapter under its tool name. The factory uses the
//	spec's name as the offense source, falling back to the tool name, so
//	a renamed configuration can reuse an implementation.
//
// Inputs:
//
//	reg - The registry to populate
//
// Outputs:
//
//	error - Non-nil if a name is already registered
func RegisterAll(reg *adapter.Registry) error {
	for impl, build := range builtins {
		if err := reg.Register(impl, factoryFor(impl, build)); err != nil {
			return err
		}
	}
	return reg.Register(PatternAdapter, NewPattern)
}

// NewRegistry returns a registry holding every built-in adapter.
func NewRegistry() *adapter.Registry {
	reg := adapter.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		panic(err)
	}
	return reg
}

func factoryFor(impl string, build func(string) adapter.Linter) adapter.Factory {
	return func(spec adapter.Spec) (adapter.Linter, error) {
		name := spec.Name
		if name == "" {
			name = impl
		}
		return build(name), nil
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// base carries the linter name used as the offense source.
type base struct {
	name string
}

// Name returns the linter name.
func (b base) Name() string {
	return b.name
}

// decodeJSON unmarshals a report. Blank output is not an error and
// reports false.
func (b base) decodeJSON(data string, v any) (bool, error) {
	if strings.TrimSpace(data) == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return false, adapter.NewParseError(b.name, err)
	}
	return true, nil
}

// offense creates an offense sourced from this linter.
func (b base) offense(code, message string, severity offense.Severity, loc offense.Location) offense.Offense {
	return offense.Offense{
		Source:   b.name,
		Code:     code,
		Message:  message,
		Severity: severity,
		Location: loc,
	}
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// splitLines splits output on LF or CRLF.
func splitLines(s string) []string {
	return lineBreak.Split(s, -1)
}

// severityOf looks up a tool severity, falling back when unmapped.
func severityOf(table map[string]offense.Severity, key string, fallback offense.Severity) offense.Severity {
	if s, ok := table[strings.ToLower(key)]; ok {
		return s
	}
	return fallback
}

// placeAround renders the standard insertion rule for a new pragma line:
// before the text when the offense is on the first line, after it
// otherwise.
func placeAround(number int, text, pragma string) string {
	if number == 0 {
		return pragma + "\n" + text
	}
	return text + "\n" + pragma
}

// pathMatches reports whether a path reported by a tool refers to the
// document being linted. Tools report relative, absolute or stdin names,
// so the reported path must equal the document path or be a suffix of it
// starting at a path element.
func pathMatches(documentPath, reported string) bool {
	if reported == "" {
		return true
	}
	doc := strings.ReplaceAll(documentPath, `\`, "/")
	rep := strings.TrimPrefix(strings.ReplaceAll(reported, `\`, "/"), "./")
	if doc == rep {
		return true
	}
	return strings.HasSuffix(doc, rep) && (strings.HasPrefix(rep, "/") || doc[len(doc)-len(rep)-1] == '/')
}
