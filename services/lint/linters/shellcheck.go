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
	"strconv"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Shellcheck adapts `shellcheck --format=json -` and `--format=json1 -`.
//
// Comments whose file is not the linted document (sourced files) are
// dropped.
type Shellcheck struct{ base }

type shellcheckComment struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	EndLine   int    `json:"endLine"`
	Column    int    `json:"column"`
	EndColumn int    `json:"endColumn"`
	Level     string `json:"level"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
}

var shellcheckSeverity = map[string]offense.Severity{
	"error":   offense.SeverityError,
	"warning": offense.SeverityWarning,
	"info":    offense.SeverityInformation,
	"style":   offense.SeverityHint,
}

// Offenses parses either the json (array) or json1 (object) format.
func (l *Shellcheck) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var raw json.RawMessage
	if ok, err := l.decodeJSON(report.Stdout, &raw); !ok {
		return nil, err
	}

	var comments []shellcheckComment
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		var wrapped struct {
			Comments []shellcheckComment `json:"comments"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, adapter.NewParseError(l.name, err)
		}
		comments = wrapped.Comments
	} else if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, adapter.NewParseError(l.name, err)
	}

	var offenses []offense.Offense
	for _, c := range comments {
		if c.File != "-" && !pathMatches(report.Path, c.File) {
			continue
		}
		code := "SC" + strconv.Itoa(c.Code)
		o := l.offense(code, c.Message,
			severityOf(shellcheckSeverity, c.Level, offense.SeverityWarning),
			offense.NewLocation(c.Line, c.Column, c.EndLine, c.EndColumn))
		o.DocsURL = "https://www.shellcheck.net/wiki/" + code
		offenses = append(offenses, o)
	}
	return offenses, nil
}

var shellcheckLinePragma = regexp.MustCompile(`^\s*#\s*shellcheck\s+disable=(\S+)\s*$`)

// IgnoreLinePragma adds or merges "# shellcheck disable=SC1000,SC2000".
func (l *Shellcheck) IgnoreLinePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := shellcheckLinePragma.FindStringSubmatch(text)

	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	pragma := in.Indent + "# shellcheck disable=" + strings.Join(adapter.MergeCodes(existing, in.Code), ",")

	if m != nil {
		return pragma, true
	}
	// A shebang must stay on the first line.
	if in.Line.Number == 0 && strings.HasPrefix(text, "#!") {
		return text + "\n" + pragma, true
	}
	return placeAround(in.Line.Number, text, pragma), true
}
