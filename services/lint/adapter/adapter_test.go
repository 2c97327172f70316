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
	"errors"
	"testing"

	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bareLinter struct{ name string }

func (l bareLinter) Name() string { return l.name }

func (l bareLinter) Offenses(Report) ([]offense.Offense, error) { return nil, nil }

type fullLinter struct{ bareLinter }

func (fullLinter) ParseFixOutput(in FixInput) string { return in.Stdout }
func (fullLinter) IgnoreFilePragma(PragmaInput) (string, bool) { return "", false }
func (fullLinter) IgnoreLinePragma(PragmaInput) (string, bool) { return "", false }
func (fullLinter) IgnoreEolPragma(in PragmaInput) (string, bool) { return in.Line.Text, true }

func TestSupports(t *testing.T) {
	bare := bareLinter{name: "bare"}
	full := fullLinter{bareLinter{name: "full"}}

	for _, c := range Capabilities {
		t.Run(string(c), func(t *testing.T) {
			assert.True(t, Supports(full, c))
			assert.Equal(t, c == CapFixInline, Supports(bare, c))
		})
	}
	assert.False(t, Supports(full, Capability("bogus")))
}

func TestCapability_Kinds(t *testing.T) {
	assert.True(t, CapFixOne.IsFix())
	assert.False(t, CapFixInline.IsFix())
	assert.True(t, CapIgnoreEol.IsIgnore())
	assert.False(t, CapFixAll.IsIgnore())
	assert.Equal(t, "ParseFixOutput", FunctionFor(CapFixCategory))
	assert.Equal(t, "IgnoreLinePragma", FunctionFor(CapIgnoreLine))
	assert.Equal(t, "", FunctionFor(CapFixInline))
}

func TestCapabilityError(t *testing.T) {
	err := &CapabilityError{Linter: "shellcheck", Capability: CapFixAll, Function: "ParseFixOutput"}
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.Contains(t, err.Error(), "ParseFixOutput")
	assert.Contains(t, err.Error(), "shellcheck")
}

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := NewParseError("eslint", cause)
	assert.True(t, errors.Is(err, ErrParseOutput))
	assert.True(t, errors.Is(err, cause))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	factory := func(spec Spec) (Linter, error) { return bareLinter{name: spec.Name}, nil }

	require.NoError(t, r.Register("rubocop", factory))
	assert.ErrorIs(t, r.Register("rubocop", factory), ErrDuplicateAdapter)
	assert.Panics(t, func() { r.MustRegister("rubocop", factory) })

	l, err := r.Build("rubocop", Spec{Name: "rubocop-daemon"})
	require.NoError(t, err)
	assert.Equal(t, "rubocop-daemon", l.Name())

	_, err = r.Build("missing", Spec{Name: "missing"})
	assert.ErrorIs(t, err, ErrUnknownAdapter)

	require.NoError(t, r.Register("eslint", factory))
	assert.Equal(t, []string{"eslint", "rubocop"}, r.Names())
	assert.True(t, r.Has("eslint"))
	assert.False(t, r.Has("pylint"))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "    ", Indent("    foo()"))
	assert.Equal(t, "\t", Indent("\tfoo()"))
	assert.Equal(t, "", Indent("foo()"))
	assert.Equal(t, "  ", Indent("  "))
}

func TestSplitCodes(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, SplitCodes("A, B"))
	assert.Equal(t, []string{"no-console", "eqeqeq"}, SplitCodes("no-console,eqeqeq"))
	assert.Empty(t, SplitCodes("   "))
	assert.Equal(t, []string{"a", "b"}, SplitCodes("\n    a,\r\n    b\n"))
}

func TestMergeCodes(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, MergeCodes([]string{"C", "A"}, "B"))
	assert.Equal(t, []string{"A", "B"}, MergeCodes([]string{"B", "A"}, "A"))
	assert.Equal(t, []string{"X"}, MergeCodes(nil, "X"))
	assert.Equal(t, []string{"A"}, MergeCodes([]string{"A"}, ""))
}
