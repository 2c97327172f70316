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

// Clippy adapts `cargo clippy --message-format json`.
//
// Cargo checks the whole crate and prints one JSON object per line.
// Only compiler messages whose primary span is in the linted file are
// kept. Machine-applicable suggestions become line/column inline fixes.
type Clippy struct{ base }

type clippySpan struct {
	FileName             string  `json:"file_name"`
	LineStart            int     `json:"line_start"`
	LineEnd              int     `json:"line_end"`
	ColumnStart          int     `json:"column_start"`
	ColumnEnd            int     `json:"column_end"`
	IsPrimary            bool    `json:"is_primary"`
	SuggestedReplacement *string `json:"suggested_replacement"`
}

type clippyDiagnostic struct {
	Message string `json:"message"`
	Level   string `json:"level"`
	Code    *struct {
		Code string `json:"code"`
	} `json:"code"`
	Spans    []clippySpan       `json:"spans"`
	Children []clippyDiagnostic `json:"children"`
}

type clippyLine struct {
	Reason  string           `json:"reason"`
	Message clippyDiagnostic `json:"message"`
}

var clippySeverity = map[string]offense.Severity{
	"error":                          offense.SeverityError,
	"error: internal compiler error": offense.SeverityError,
	"warning":                        offense.SeverityWarning,
	"note":                           offense.SeverityInformation,
	"help":                           offense.SeverityHint,
}

var clippyDocsLink = regexp.MustCompile(`https?://\S+`)

// Offenses parses the newline-delimited JSON stream. Lines that are not
// JSON, such as build progress, are skipped.
func (l *Clippy) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var offenses []offense.Offense
	for _, raw := range splitLines(report.Stdout) {
		raw = strings.TrimSpace(raw)
		if raw == "" || raw[0] != '{' {
			continue
		}
		var line clippyLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, adapter.NewParseError(l.name, err)
		}
		if line.Reason != "compiler-message" {
			continue
		}
		diag := line.Message
		span, ok := primarySpan(diag.Spans)
		if !ok || !pathMatches(report.Path, span.FileName) {
			continue
		}

		code := ""
		if diag.Code != nil {
			code = diag.Code.Code
		}
		o := l.offense(code, diag.Message,
			severityOf(clippySeverity, diag.Level, offense.SeverityWarning),
			offense.NewLocation(span.LineStart, span.ColumnStart, span.LineEnd, span.ColumnEnd))
		o.DocsURL = clippyDocsURL(diag)
		if fix := clippyFix(span, diag.Children); fix != nil {
			o.Correctable = true
			o.InlineFix = fix
		}
		offenses = append(offenses, o)
	}
	return offenses, nil
}

func primarySpan(spans []clippySpan) (clippySpan, bool) {
	for _, s := range spans {
		if s.IsPrimary {
			return s, true
		}
	}
	if len(spans) > 0 {
		return spans[0], true
	}
	return clippySpan{}, false
}

// clippyFix takes the replacement from the primary span or from a child
// span covering the same range.
func clippyFix(primary clippySpan, children []clippyDiagnostic) *offense.InlineFix {
	candidates := []clippySpan{primary}
	for _, child := range children {
		candidates = append(candidates, child.Spans...)
	}
	for _, s := range candidates {
		if s.SuggestedReplacement == nil {
			continue
		}
		if s.LineStart != primary.LineStart || s.ColumnStart != primary.ColumnStart ||
			s.LineEnd != primary.LineEnd || s.ColumnEnd != primary.ColumnEnd {
			continue
		}
		return offense.NewSpanFix(
			offense.LineColumn{Line: offense.ZeroBased(s.LineStart), Column: offense.ZeroBased(s.ColumnStart)},
			offense.LineColumn{Line: offense.ZeroBased(s.LineEnd), Column: offense.ZeroBased(s.ColumnEnd)},
			*s.SuggestedReplacement,
		)
	}
	return nil
}

func clippyDocsURL(diag clippyDiagnostic) string {
	for _, child := range diag.Children {
		if child.Level != "help" && child.Level != "note" {
			continue
		}
		if !strings.Contains(child.Message, "for further information") {
			continue
		}
		if link := clippyDocsLink.FindString(child.Message); link != "" {
			return link
		}
	}
	return ""
}

// clippyAllowLineWidth is where the file pragma wraps onto several lines.
const clippyAllowLineWidth = 80

var clippyAllow = regexp.MustCompile(`(?s)^#!\[allow\((.*)\)\]$`)

// FilePragmaLines returns the number of leading lines taken by an existing
// "#![allow(...)]", which is wrapped when it grows past
// clippyAllowLineWidth.
func (l *Clippy) FilePragmaLines(lines []string) int {
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "#![allow(") {
		return 1
	}
	for i, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(line), ")]") {
			return i + 1
		}
	}
	return 1
}

// IgnoreFilePragma adds or merges a crate-level "#![allow(...)]". Line.Text
// holds the whole existing block when the pragma is wrapped.
func (l *Clippy) IgnoreFilePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := clippyAllow.FindStringSubmatch(strings.TrimSpace(text))

	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	codes := adapter.MergeCodes(existing, in.Code)

	pragma := "#![allow(" + strings.Join(codes, ", ") + ")]"
	if len(pragma) > clippyAllowLineWidth {
		pragma = "#![allow(\n    " + strings.Join(codes, ",\n    ") + "\n)]"
	}

	if m != nil {
		return pragma, true
	}
	return pragma + "\n" + text, true
}
