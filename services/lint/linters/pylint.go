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
	"regexp"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Pylint adapts `pylint --output-format=json --from-stdin`.
//
// Offense codes are "symbol - message-id" (e.g. "unused-import - W0611").
// Messages for modules other than the linted path are dropped.
type Pylint struct{ base }

type pylintItem struct {
	Type      string `json:"type"`
	Module    string `json:"module"`
	Obj       string `json:"obj"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   *int   `json:"endLine"`
	EndColumn *int   `json:"endColumn"`
	Path      string `json:"path"`
	Symbol    string `json:"symbol"`
	Message   string `json:"message"`
	MessageID string `json:"message-id"`
}

var pylintSeverity = map[string]offense.Severity{
	"fatal":      offense.SeverityError,
	"error":      offense.SeverityError,
	"warning":    offense.SeverityWarning,
	"convention": offense.SeverityInformation,
	"refactor":   offense.SeverityInformation,
	"info":       offense.SeverityHint,
}

// Offenses parses the JSON array report. Pylint columns are already
// zero-based; lines are one-based.
func (l *Pylint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var items []pylintItem
	if ok, err := l.decodeJSON(report.Stdout, &items); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, item := range items {
		if item.Path != "" && item.Path != "-" && !pathMatches(report.Path, item.Path) {
			continue
		}
		loc := offense.Location{
			LineStart:   offense.ZeroBased(item.Line),
			ColumnStart: max(0, item.Column),
		}
		loc.LineEnd, loc.ColumnEnd = loc.LineStart, loc.ColumnStart
		if item.EndLine != nil && item.EndColumn != nil {
			loc.LineEnd = offense.ZeroBased(*item.EndLine)
			loc.ColumnEnd = max(0, *item.EndColumn)
		}

		o := l.offense(item.Symbol+" - "+item.MessageID, item.Message,
			severityOf(pylintSeverity, item.Type, offense.SeverityWarning), loc)
		if item.MessageID != "" {
			o.DocsURL = "https://pylint.readthedocs.io/en/stable/user_guide/messages/" +
				pylintCategory(item.Type) + "/" + item.Symbol + ".html"
		}
		offenses = append(offenses, o)
	}
	return offenses, nil
}

func pylintCategory(kind string) string {
	switch kind {
	case "fatal", "error", "warning", "convention", "refactor", "info":
		return kind
	default:
		return "warning"
	}
}

var pylintFilePragma = regexp.MustCompile(`^#\s*pylint:\s*disable=(.*?)$`)

// IgnoreFilePragma adds or merges "# pylint: disable=a, b" on the first line.
// Only the symbol part of the code is used.
func (l *Pylint) IgnoreFilePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := pylintFilePragma.FindStringSubmatch(text)

	symbol, _, _ := strings.Cut(in.Code, " - ")
	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	pragma := "# pylint: disable=" + strings.Join(adapter.MergeCodes(existing, symbol), ", ")

	if m != nil {
		return pragma, true
	}
	return placeAround(in.Line.Number, text, pragma), true
}
