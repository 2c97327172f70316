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

// Hadolint adapts `hadolint --format json -`.
//
// The report covers the single stdin file, so no path filtering is done.
type Hadolint struct{ base }

type hadolintItem struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Column  int    `json:"column"`
	File    string `json:"file"`
	Level   string `json:"level"`
}

var hadolintSeverity = map[string]offense.Severity{
	"error":   offense.SeverityError,
	"warning": offense.SeverityWarning,
	"info":    offense.SeverityInformation,
	"style":   offense.SeverityHint,
}

// Offenses parses the JSON array report.
func (l *Hadolint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var items []hadolintItem
	if ok, err := l.decodeJSON(report.Stdout, &items); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, item := range items {
		o := l.offense(item.Code, item.Message,
			severityOf(hadolintSeverity, item.Level, offense.SeverityWarning),
			offense.NewLocation(item.Line, item.Column, 0, 0))
		o.DocsURL = "https://github.com/hadolint/hadolint/wiki/" + item.Code
		offenses = append(offenses, o)
	}
	return offenses, nil
}

var hadolintLinePragma = regexp.MustCompile(`^\s*# hadolint ignore=(.+)$`)

// IgnoreLinePragma adds or merges "# hadolint ignore=DL3000,DL3008". A new
// pragma is separated from the preceding instruction by a blank line.
func (l *Hadolint) IgnoreLinePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := hadolintLinePragma.FindStringSubmatch(text)

	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	pragma := in.Indent + "# hadolint ignore=" + strings.Join(adapter.MergeCodes(existing, in.Code), ",")

	switch {
	case m != nil:
		return pragma, true
	case in.Line.Number == 0:
		return pragma + "\n" + text, true
	default:
		return text + "\n\n" + pragma, true
	}
}
