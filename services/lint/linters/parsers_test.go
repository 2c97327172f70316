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
	"testing"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, impl string) adapter.Linter {
	t.Helper()
	l, err := NewRegistry().Build(impl, adapter.Spec{})
	require.NoError(t, err)
	return l
}

func TestRegistry_Builtins(t *testing.T) {
	reg := NewRegistry()
	for impl := range builtins {
		assert.True(t, reg.Has(impl), impl)
	}
	assert.True(t, reg.Has(PatternAdapter))

	l, err := reg.Build("eslint", adapter.Spec{Name: "eslint_d"})
	require.NoError(t, err)
	assert.Equal(t, "eslint_d", l.Name())

	l, err = reg.Build("rubocop", adapter.Spec{})
	require.NoError(t, err)
	assert.Equal(t, "rubocop", l.Name())
}

func TestOffenses_BlankAndInvalidOutput(t *testing.T) {
	for _, impl := range []string{
		"rubocop", "eslint", "shellcheck", "pylint", "vale", "stylelint",
		"textlint", "erb_lint", "php-code-sniffer", "brakeman", "language-tool",
	} {
		t.Run(impl, func(t *testing.T) {
			l := build(t, impl)

			got, err := l.Offenses(adapter.Report{Stdout: "  \n"})
			require.NoError(t, err)
			assert.Empty(t, got)

			_, err = l.Offenses(adapter.Report{Stdout: "{not json"})
			assert.ErrorIs(t, err, adapter.ErrParseOutput)
		})
	}
}

func TestRubocop_Offenses(t *testing.T) {
	stdout := `{"files":[{"path":"a.rb","offenses":[{"cop_name":"Style/StringLiterals",
		"message":"Prefer single quotes.","correctable":true,"severity":"convention",
		"location":{"start_line":5,"start_column":3,"last_line":5,"last_column":8}}]}]}`

	got, err := build(t, "rubocop").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 1)

	o := got[0]
	assert.Equal(t, "rubocop", o.Source)
	assert.Equal(t, "Style/StringLiterals", o.Code)
	assert.Equal(t, offense.SeverityError, o.Severity)
	assert.Equal(t, offense.Location{LineStart: 4, ColumnStart: 2, LineEnd: 4, ColumnEnd: 7}, o.Location)
	assert.True(t, o.Correctable)
	assert.Equal(t, "https://docs.rubocop.org/rubocop/cops_style.html#stylestringliterals", o.DocsURL)
}

func TestRubocop_DocsURL(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"Lint/UselessAssignment", "https://docs.rubocop.org/rubocop/cops_lint.html#lintuselessassignment"},
		{"RSpec/Rails/HttpStatus", "https://docs.rubocop.org/rubocop-rspec/cops_rspec/rails.html#rspecrailshttpstatus"},
		{"Custom/Thing", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, rubocopDocsURL(tt.code))
		})
	}
}

func TestESLint_Offenses(t *testing.T) {
	stdout := `[{"filePath":"<text>","messages":[{"ruleId":"semi","severity":2,
		"message":"Missing semicolon.","line":1,"column":10,"endLine":1,"endColumn":11,
		"fix":{"range":[9,9],"text":";"}}],"output":"const a = 1;\n"}]`

	l := build(t, "eslint")
	got, err := l.Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 1)

	o := got[0]
	assert.Equal(t, offense.SeverityError, o.Severity)
	assert.Equal(t, offense.Location{LineStart: 0, ColumnStart: 9, LineEnd: 0, ColumnEnd: 10}, o.Location)
	assert.Equal(t, "https://eslint.org/docs/latest/rules/semi", o.DocsURL)
	require.NotNil(t, o.InlineFix)
	assert.Equal(t, &offense.OffsetSpan{Start: 9, End: 9}, o.InlineFix.Offset)
	assert.Equal(t, ";", o.InlineFix.Replacement)

	fixer := l.(adapter.FixOutputParser)
	assert.Equal(t, "const a = 1;\n", fixer.ParseFixOutput(adapter.FixInput{Input: "const a = 1\n", Stdout: stdout}))
	assert.Equal(t, "same", fixer.ParseFixOutput(adapter.FixInput{Input: "same", Stdout: `[{"messages":[]}]`}))
}

func TestESLint_DocsURL(t *testing.T) {
	assert.Equal(t, "https://typescript-eslint.io/rules/no-explicit-any", eslintDocsURL("@typescript-eslint/no-explicit-any"))
	assert.Equal(t, "https://github.com/jsx-eslint/eslint-plugin-react/blob/master/docs/rules/jsx-key.md", eslintDocsURL("react/jsx-key"))
	assert.Equal(t, "", eslintDocsURL("unknown/rule"))
}

func TestShellcheck_Offenses(t *testing.T) {
	stdout := `{"comments":[
		{"file":"-","line":3,"endLine":3,"column":6,"endColumn":10,"level":"warning","code":2034,"message":"foo appears unused."},
		{"file":"lib/other.sh","line":1,"endLine":1,"column":1,"endColumn":2,"level":"error","code":1091,"message":"Not following."}]}`

	got, err := build(t, "shellcheck").Offenses(adapter.Report{Stdout: stdout, Path: "/proj/script.sh"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SC2034", got[0].Code)
	assert.Equal(t, offense.Location{LineStart: 2, ColumnStart: 5, LineEnd: 2, ColumnEnd: 9}, got[0].Location)
	assert.Equal(t, "https://www.shellcheck.net/wiki/SC2034", got[0].DocsURL)

	array := `[{"file":"-","line":1,"column":1,"level":"style","code":2086,"message":"Quote this."}]`
	got, err = build(t, "shellcheck").Offenses(adapter.Report{Stdout: array})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offense.SeverityHint, got[0].Severity)
}

func TestPylint_Offenses(t *testing.T) {
	stdout := `[
		{"type":"warning","module":"m","obj":"","line":1,"column":0,"endLine":1,"endColumn":9,
		 "path":"pkg/m.py","symbol":"unused-import","message":"Unused import os","message-id":"W0611"},
		{"type":"error","module":"n","obj":"","line":2,"column":4,"endLine":null,"endColumn":null,
		 "path":"pkg/n.py","symbol":"undefined-variable","message":"Undefined variable 'x'","message-id":"E0602"}]`

	got, err := build(t, "pylint").Offenses(adapter.Report{Stdout: stdout, Path: "/src/pkg/m.py"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	o := got[0]
	assert.Equal(t, "unused-import - W0611", o.Code)
	assert.Equal(t, offense.SeverityWarning, o.Severity)
	assert.Equal(t, offense.Location{LineStart: 0, ColumnStart: 0, LineEnd: 0, ColumnEnd: 9}, o.Location)
	assert.Equal(t, "https://pylint.readthedocs.io/en/stable/user_guide/messages/warning/unused-import.html", o.DocsURL)
}

func TestHadolint_Offenses(t *testing.T) {
	stdout := `[{"line":2,"code":"DL3008","message":"Pin versions in apt get install.","column":1,"file":"-","level":"warning"}]`

	got, err := build(t, "hadolint").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offense.Location{LineStart: 1, ColumnStart: 0, LineEnd: 1, ColumnEnd: 0}, got[0].Location)
	assert.Equal(t, "https://github.com/hadolint/hadolint/wiki/DL3008", got[0].DocsURL)
}

func TestTextFormats(t *testing.T) {
	tests := []struct {
		name   string
		impl   string
		report adapter.Report
		want   []offense.Offense
	}{
		{
			name:   "luacheck",
			impl:   "luacheck",
			report: adapter.Report{Stdout: "Checking stdin\nstdin:3:7-9: (W211) unused variable 'x'\n"},
			want: []offense.Offense{{
				Source: "luacheck", Code: "W211", Message: "unused variable 'x'",
				Severity: offense.SeverityWarning,
				Location: offense.Location{LineStart: 2, ColumnStart: 6, LineEnd: 2, ColumnEnd: 9},
				DocsURL:  "https://luacheck.readthedocs.io/en/stable/warnings.html#unused-variables-2xx-and-values-3xx",
			}},
		},
		{
			name:   "yamllint",
			impl:   "yamllint",
			report: adapter.Report{Stdout: "stdin:4:1: [error] too many blank lines (3 > 2) (empty-lines)\r\n"},
			want: []offense.Offense{{
				Source: "yamllint", Code: "empty-lines", Message: "too many blank lines (3 > 2)",
				Severity: offense.SeverityError,
				Location: offense.Location{LineStart: 3, ColumnStart: 0, LineEnd: 3, ColumnEnd: 0},
				DocsURL:  "https://yamllint.readthedocs.io/en/stable/rules.html#module-yamllint.rules.empty-lines",
			}},
		},
		{
			name:   "ruby",
			impl:   "ruby",
			report: adapter.Report{Stderr: "-:2: warning: assigned but unused variable - x\n-:5: syntax error, unexpected end-of-input\n"},
			want: []offense.Offense{
				{
					Source: "ruby", Message: "assigned but unused variable - x",
					Severity: offense.SeverityWarning,
					Location: offense.Location{LineStart: 1, ColumnStart: 0, LineEnd: 1, ColumnEnd: 0},
				},
				{
					Source: "ruby", Message: "syntax error, unexpected end-of-input",
					Severity: offense.SeverityError,
					Location: offense.Location{LineStart: 4, ColumnStart: 0, LineEnd: 4, ColumnEnd: 0},
				},
			},
		},
		{
			name: "dart",
			impl: "dart",
			report: adapter.Report{Stdout: "Analyzing a.dart...\n" +
				"  info - lib/a.dart:3:7 - Unused import: 'x'. Try removing the import directive. - unused_import\n" +
				"error - lib/a.dart:9:1 - Expected to find ';'. - expected_token\n\n2 issues found.\n"},
			want: []offense.Offense{
				{
					Source: "dart", Code: "unused_import",
					Message:  "Unused import: 'x'. Try removing the import directive.",
					Severity: offense.SeverityInformation,
					Location: offense.Location{LineStart: 2, ColumnStart: 6, LineEnd: 2, ColumnEnd: 6},
					DocsURL:  "https://dart.dev/tools/linter-rules#unused_import",
				},
				{
					Source: "dart", Code: "expected_token", Message: "Expected to find ';'.",
					Severity: offense.SeverityError,
					Location: offense.Location{LineStart: 8, ColumnStart: 0, LineEnd: 8, ColumnEnd: 0},
					DocsURL:  "https://dart.dev/tools/linter-rules#expected_token",
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := build(t, tt.impl).Offenses(tt.report)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkdownlint_Offenses(t *testing.T) {
	stderr := `[{"fileName":"stdin","lineNumber":3,"ruleNames":["MD009","no-trailing-spaces"],
		"ruleDescription":"Trailing spaces","ruleInformation":"https://github.com/DavidAnson/markdownlint/blob/v0.33.0/doc/md009.md",
		"errorDetail":"Expected: 0; Actual: 2","errorContext":null,"errorRange":[10,2]}]`

	l := build(t, "markdownlint")
	got, err := l.Offenses(adapter.Report{Stdout: "ignored", Stderr: stderr})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MD009", got[0].Code)
	assert.Equal(t, "Trailing spaces [Expected: 0; Actual: 2]", got[0].Message)
	assert.Equal(t, offense.Location{LineStart: 2, ColumnStart: 9, LineEnd: 2, ColumnEnd: 11}, got[0].Location)

	fixer := l.(adapter.FixOutputParser)
	assert.Equal(t, "# Title\n", fixer.ParseFixOutput(adapter.FixInput{Input: "# Title  \n", Stdout: "# Title\n"}))
	assert.Equal(t, "# Title  \n", fixer.ParseFixOutput(adapter.FixInput{Input: "# Title  \n"}))
}

func TestStylelint_Offenses(t *testing.T) {
	stdout := `[{"source":"<input css 1>","warnings":[
		{"line":2,"column":3,"endLine":2,"endColumn":9,"rule":"color-no-invalid-hex","severity":"error",
		 "text":"Unexpected invalid hex color \"#ffz\" (color-no-invalid-hex)"},
		{"line":4,"column":1,"rule":"plugin/thing","severity":1,"text":"Legacy (plugin/thing)"}]}]`

	got, err := build(t, "stylelint").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, `Unexpected invalid hex color "#ffz"`, got[0].Message)
	assert.Equal(t, offense.SeverityError, got[0].Severity)
	assert.Equal(t, offense.Location{LineStart: 1, ColumnStart: 2, LineEnd: 1, ColumnEnd: 8}, got[0].Location)
	assert.Equal(t, "https://stylelint.io/user-guide/rules/color-no-invalid-hex", got[0].DocsURL)

	assert.Equal(t, "Legacy", got[1].Message)
	assert.Equal(t, offense.SeverityWarning, got[1].Severity)
	assert.Empty(t, got[1].DocsURL)
}

func TestCredo_Offenses(t *testing.T) {
	stdout := `{"issues":[
		{"category":"readability","check":"Credo.Check.Readability.ModuleDoc","column":11,"column_end":15,
		 "filename":"lib/foo.ex","line_no":1,"message":"Modules should have a @moduledoc tag.","priority":1},
		{"category":"warning","check":"Credo.Check.Warning.IoInspect","column":5,"column_end":15,
		 "filename":"lib/bar.ex","line_no":3,"message":"There should be no calls to IO.inspect/1.","priority":1}]}`

	got, err := build(t, "credo").Offenses(adapter.Report{Stdout: stdout, Path: "/app/lib/foo.ex"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offense.SeverityInformation, got[0].Severity)
	assert.Equal(t, offense.Location{LineStart: 0, ColumnStart: 10, LineEnd: 0, ColumnEnd: 14}, got[0].Location)
}

func TestVale_Offenses(t *testing.T) {
	stdout := `{
		"docs/other.md":[{"Check":"Vale.Terms","Line":1,"Span":[1,3],"Message":"x","Severity":"warning"}],
		"docs/guide.md":[{"Check":"Vale.Spelling","Line":2,"Span":[5,9],"Message":"Did you really mean 'teh'?",
		 "Severity":"error","Link":"https://vale.sh/spelling"},
		 {"Check":"Google.Will","Line":3,"Span":[1,4],"Message":"Avoid using 'will'.","Severity":"suggestion"}]}`

	got, err := build(t, "vale").Offenses(adapter.Report{Stdout: stdout, Path: "/repo/docs/guide.md"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Vale.Spelling", got[0].Code)
	assert.Equal(t, offense.Location{LineStart: 1, ColumnStart: 4, LineEnd: 1, ColumnEnd: 9}, got[0].Location)
	assert.Equal(t, "https://vale.sh/spelling", got[0].DocsURL)
	assert.Equal(t, offense.SeverityHint, got[1].Severity)

	got, err = build(t, "vale").Offenses(adapter.Report{Stdout: `{"stdin.md":[{"Check":"A","Line":1,"Span":[1,1],"Message":"m","Severity":"error"}]}`})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Code)
}

func TestProselint_Offenses(t *testing.T) {
	stdout := `{"status":"success","data":{"errors":[{"check":"typography.symbols.ellipsis","column":12,
		"end":20,"extent":3,"line":1,"message":"'...' is an approximation.","severity":"warning","start":17}]}}`

	got, err := build(t, "proselint").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offense.Location{LineStart: 0, ColumnStart: 11, LineEnd: 0, ColumnEnd: 14}, got[0].Location)
}

func TestReek_Offenses(t *testing.T) {
	stdout := `[{"context":"Foo#bar","lines":[3,7],"message":"has unused parameter 'x'",
		"smell_type":"UnusedParameters","documentation_link":"https://github.com/troessner/reek/blob/master/docs/Unused-Parameters.md"}]`

	got, err := build(t, "reek").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "UnusedParameters", got[0].Code)
	assert.Equal(t, "Foo#bar has unused parameter 'x'", got[0].Message)
	assert.Equal(t, 2, got[0].Location.LineStart)
}

func TestSQLFluff_Offenses(t *testing.T) {
	stdout := `[{"filepath":"stdin","violations":[
		{"start_line_no":1,"start_line_pos":8,"end_line_no":1,"end_line_pos":9,"code":"LT01",
		 "description":"Expected single whitespace.","name":"layout.spacing","warning":false},
		{"line_no":2,"line_pos":1,"code":"AM04","description":"Query produces an unknown number of result columns.","warning":true}]}]`

	got, err := build(t, "sqlfluff").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, offense.SeverityError, got[0].Severity)
	assert.Equal(t, offense.Location{LineStart: 0, ColumnStart: 7, LineEnd: 0, ColumnEnd: 8}, got[0].Location)
	assert.Equal(t, offense.SeverityWarning, got[1].Severity)
	assert.Equal(t, offense.Location{LineStart: 1, ColumnStart: 0, LineEnd: 1, ColumnEnd: 0}, got[1].Location)
}

func TestSwiftLint_Offenses(t *testing.T) {
	stdout := `[{"character":null,"file":null,"line":3,"reason":"Lines should not have trailing whitespace",
		"rule_id":"trailing_whitespace","severity":"Warning","type":"Trailing Whitespace"}]`

	got, err := build(t, "swiftlint").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offense.SeverityWarning, got[0].Severity)
	assert.Equal(t, offense.Location{LineStart: 2, ColumnStart: 0, LineEnd: 2, ColumnEnd: 0}, got[0].Location)
}

func TestClippy_Offenses(t *testing.T) {
	stdout := `   Compiling demo v0.1.0
{"reason":"compiler-artifact","target":{"name":"demo"}}
{"reason":"compiler-message","message":{"message":"redundant clone","level":"warning","code":{"code":"clippy::redundant_clone"},"spans":[{"file_name":"src/main.rs","line_start":4,"line_end":4,"column_start":14,"column_end":22,"is_primary":true,"suggested_replacement":null}],"children":[{"message":"for further information visit https://rust-lang.github.io/rust-clippy/master/index.html#redundant_clone","level":"help","spans":[],"children":[]},{"message":"remove this","level":"help","spans":[{"file_name":"src/main.rs","line_start":4,"line_end":4,"column_start":14,"column_end":22,"is_primary":true,"suggested_replacement":""}],"children":[]}]}}
{"reason":"compiler-message","message":{"message":"unused variable","level":"warning","code":{"code":"unused_variables"},"spans":[{"file_name":"src/lib.rs","line_start":1,"line_end":1,"column_start":1,"column_end":2,"is_primary":true}],"children":[]}}
{"reason":"build-finished","success":true}`

	got, err := build(t, "cargo-clippy").Offenses(adapter.Report{Stdout: stdout, Path: "/home/u/demo/src/main.rs"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	o := got[0]
	assert.Equal(t, "clippy::redundant_clone", o.Code)
	assert.Equal(t, offense.Location{LineStart: 3, ColumnStart: 13, LineEnd: 3, ColumnEnd: 21}, o.Location)
	assert.Equal(t, "https://rust-lang.github.io/rust-clippy/master/index.html#redundant_clone", o.DocsURL)
	assert.True(t, o.Correctable)
	require.NotNil(t, o.InlineFix)
	require.NotNil(t, o.InlineFix.Span)
	assert.Equal(t, offense.LineColumn{Line: 3, Column: 13}, o.InlineFix.Span.Start)
	assert.Equal(t, offense.LineColumn{Line: 3, Column: 21}, o.InlineFix.Span.End)
	assert.Equal(t, "", o.InlineFix.Replacement)
}

func TestTextlint_Offenses(t *testing.T) {
	stdout := `[{"filePath":"<text>","messages":[
		{"ruleId":"no-todo","message":"Found TODO: 'TODO: fix' ","line":2,"column":3,"severity":2},
		{"ruleId":"ja-space","message":"Remove space","line":1,"column":5,"severity":1,
		 "fix":{"range":[4,5],"text":""}}]}]`

	got, err := build(t, "textlint").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "no-todo", got[0].Code)
	assert.Equal(t, "Found TODO: 'TODO: fix'", got[0].Message)
	assert.Equal(t, offense.SeverityError, got[0].Severity)
	assert.Equal(t, offense.Location{LineStart: 1, ColumnStart: 2, LineEnd: 1, ColumnEnd: 2}, got[0].Location)
	assert.Nil(t, got[0].InlineFix)

	assert.Equal(t, offense.SeverityWarning, got[1].Severity)
	assert.True(t, got[1].Correctable)
	require.NotNil(t, got[1].InlineFix)
	assert.Equal(t, &offense.OffsetSpan{Start: 4, End: 5}, got[1].InlineFix.Offset)
}

func TestERBLint_Offenses(t *testing.T) {
	stdout := `{"metadata":{},"files":[{"path":"app/views/a.html.erb","offenses":[
		{"linter":"SpaceAroundErbTag","message":"Use 1 space after <%=.",
		 "location":{"start_line":4,"start_column":3,"last_line":4,"last_column":5}}]}],
		"summary":{"offenses":1}}`

	got, err := build(t, "erb_lint").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SpaceAroundErbTag", got[0].Code)
	assert.Equal(t, offense.SeverityError, got[0].Severity)
	assert.Equal(t, offense.Location{LineStart: 3, ColumnStart: 3, LineEnd: 3, ColumnEnd: 5}, got[0].Location)
}

func TestPHPCodeSniffer_Offenses(t *testing.T) {
	stdout := `{"totals":{"errors":1,"warnings":1},"files":{"STDIN":{"errors":1,"warnings":1,"messages":[
		{"message":"Missing file doc comment","source":"PEAR.Commenting.FileComment.Missing",
		 "severity":5,"fixable":false,"type":"ERROR","line":2,"column":1},
		{"message":"Line exceeds 85 characters","source":"Generic.Files.LineLength.TooLong",
		 "severity":5,"fixable":true,"type":"WARNING","line":7,"column":86}]}}}`

	got, err := build(t, "php-code-sniffer").Offenses(adapter.Report{Stdout: stdout})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "PEAR.Commenting.FileComment.Missing", got[0].Code)
	assert.Equal(t, offense.SeverityError, got[0].Severity)
	assert.False(t, got[0].Correctable)
	assert.Equal(t, offense.Location{LineStart: 1, ColumnStart: 0, LineEnd: 1, ColumnEnd: 0}, got[0].Location)

	assert.Equal(t, offense.SeverityWarning, got[1].Severity)
	assert.True(t, got[1].Correctable)
	assert.Equal(t, 85, got[1].Location.ColumnStart)
}

func TestGherkinLint_Offenses(t *testing.T) {
	stderr := `[{"filePath":"/proj/features/login.feature","errors":[
		{"message":"Missing Feature name","rule":"no-unnamed-features","line":1}]},
		{"filePath":"/proj/features/other.feature","errors":[
		{"message":"Trailing spaces are not allowed","rule":"no-trailing-spaces","line":4}]}]`

	l := build(t, "gherkin-lint")
	got, err := l.Offenses(adapter.Report{Stdout: "ignored", Stderr: stderr, Path: "/proj/features/login.feature"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "no-unnamed-features", got[0].Code)
	assert.Equal(t, offense.SeverityError, got[0].Severity)
	assert.Equal(t, offense.Location{}, got[0].Location)

	got, err = l.Offenses(adapter.Report{Stderr: " "})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = l.Offenses(adapter.Report{Stderr: "not json"})
	assert.ErrorIs(t, err, adapter.ErrParseOutput)
}

func TestLanguageTool_Offenses(t *testing.T) {
	stdout := "Expected text language: English (US)\nWorking on STDIN...\n" +
		`{"software":{"name":"LanguageTool"},"matches":[
		{"message":"Possible spelling mistake found. ","offset":14,"length":3,
		 "replacements":[{"value":"the"}],"rule":{"id":"MORFOLOGIK_RULE_EN_US"}},
		{"message":"Use a comma.","offset":4,"length":2,"replacements":[],"rule":{"id":"COMMA"}}]}`
	input := "Hi 😀\nThis is teh end."

	got, err := build(t, "language-tool").Offenses(adapter.Report{Stdout: stdout, Input: input})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "MORFOLOGIK_RULE_EN_US", got[0].Code)
	assert.Equal(t, "Possible spelling mistake found.", got[0].Message)
	assert.Equal(t, offense.SeverityWarning, got[0].Severity)
	assert.True(t, got[0].Correctable)
	assert.Equal(t, offense.Location{LineStart: 1, ColumnStart: 8, LineEnd: 1, ColumnEnd: 11}, got[0].Location)

	// The emoji is two UTF-16 units but a single column.
	assert.False(t, got[1].Correctable)
	assert.Equal(t, offense.Location{LineStart: 0, ColumnStart: 3, LineEnd: 0, ColumnEnd: 4}, got[1].Location)

	_, err = build(t, "language-tool").Offenses(adapter.Report{Stdout: "Working on STDIN..."})
	assert.ErrorIs(t, err, adapter.ErrParseOutput)
}

func TestBrakeman_Offenses(t *testing.T) {
	stdout := `{"scan_info":{"app_path":"/proj"},"warnings":[
		{"warning_type":"SQL Injection","check_name":"SQL","message":"Possible SQL injection",
		 "file":"app/models/user.rb","line":12,"link":"https://brakemanscanner.org/docs/warning_types/sql_injection/",
		 "confidence":"High"},
		{"warning_type":"Cross-Site Scripting","check_name":"CrossSiteScripting","message":"Unescaped model attribute",
		 "file":"app/views/users/show.html.erb","line":3,"link":"https://brakemanscanner.org/docs/warning_types/cross_site_scripting/",
		 "confidence":"Medium"},
		{"warning_type":"SQL Injection","check_name":"SQL","message":"Possible SQL injection",
		 "file":"app/models/admin_user.rb","line":4,"link":"","confidence":"Weak"}]}`

	got, err := build(t, "brakeman").Offenses(adapter.Report{Stdout: stdout, Path: "/proj/app/models/user.rb"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SQL", got[0].Code)
	assert.Equal(t, offense.SeverityWarning, got[0].Severity)
	assert.Equal(t, offense.Location{LineStart: 11, LineEnd: 11}, got[0].Location)
	assert.Equal(t, "https://brakemanscanner.org/docs/warning_types/sql_injection/", got[0].DocsURL)
}

func TestPattern(t *testing.T) {
	spec := adapter.Spec{
		Name: "mylint",
		Pattern: &adapter.PatternSpec{
			Regex:   `^(?P<line>\d+):(?P<column>\d+) (?P<severity>\w+) (?P<code>[A-Z]+\d+) (?P<message>.+)$`,
			DocsURL: "https://example.com/rules/{code}",
		},
	}
	l, err := NewRegistry().Build(PatternAdapter, spec)
	require.NoError(t, err)

	got, err := l.Offenses(adapter.Report{Stdout: "3:5 error AB12 bad thing\nnoise\n"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offense.Offense{
		Source:   "mylint",
		Code:     "AB12",
		Message:  "bad thing",
		Severity: offense.SeverityError,
		Location: offense.Location{LineStart: 2, ColumnStart: 4, LineEnd: 2, ColumnEnd: 4},
		DocsURL:  "https://example.com/rules/AB12",
	}, got[0])

	stderrSpec := adapter.Spec{Name: "errlint", Pattern: &adapter.PatternSpec{
		Regex: `^line (?P<line>\d+): (?P<message>.+)$`, Stream: "stderr", Severity: "info",
	}}
	l, err = NewPattern(stderrSpec)
	require.NoError(t, err)
	got, err = l.Offenses(adapter.Report{Stdout: "line 1: ignored", Stderr: "line 7: tabs found"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offense.SeverityInformation, got[0].Severity)
	assert.Equal(t, 6, got[0].Location.LineStart)
	assert.Equal(t, 0, got[0].Location.ColumnStart)

	_, err = NewPattern(adapter.Spec{Name: "broken"})
	assert.ErrorIs(t, err, ErrMissingPattern)

	_, err = NewPattern(adapter.Spec{Name: "broken", Pattern: &adapter.PatternSpec{Regex: "("}})
	assert.Error(t, err)
}

func TestPathMatches(t *testing.T) {
	assert.True(t, pathMatches("/a/b/c.go", "b/c.go"))
	assert.True(t, pathMatches("/a/b/c.go", "./b/c.go"))
	assert.True(t, pathMatches(`C:\a\b\c.go`, "b/c.go"))
	assert.True(t, pathMatches("/a/b/c.go", ""))
	assert.False(t, pathMatches("/a/b/c.go", "d.go"))
	assert.True(t, pathMatches("/a/b/c.go", "/a/b/c.go"))
	assert.True(t, pathMatches("c.go", "c.go"))
	assert.True(t, pathMatches("/a/b/c.go", "c.go"))
	assert.False(t, pathMatches("/foo/xbar.rb", "bar.rb"))
	assert.False(t, pathMatches("/a/xb/c.go", "b/c.go"))
}
