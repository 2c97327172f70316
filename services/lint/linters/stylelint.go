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
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Stylelint adapts `stylelint --formatter json --stdin-filename FILE`.
//
// The report covers the single stdin file, so no path filtering is done.
type Stylelint struct{ base }

type stylelintResult struct {
	Source   string `json:"source"`
	Warnings []struct {
		Line      int             `json:"line"`
		Column    int             `json:"column"`
		EndLine   int             `json:"endLine"`
		EndColumn int             `json:"endColumn"`
		Rule      string          `json:"rule"`
		Severity  json.RawMessage `json:"severity"`
		Text      string          `json:"text"`
	} `json:"warnings"`
}

var stylelintSeverity = map[string]offense.Severity{
	"1":       offense.SeverityWarning,
	"2":       offense.SeverityError,
	"warning": offense.SeverityWarning,
	"error":   offense.SeverityError,
}

// Offenses parses the JSON report. Severity is a string in current
// releases and a number in old ones. The trailing " (rule)" is stripped
// from messages.
func (l *Stylelint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var results []stylelintResult
	if ok, err := l.decodeJSON(report.Stdout, &results); !ok {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	var offenses []offense.Offense
	for _, w := range results[0].Warnings {
		severity := strings.Trim(string(w.Severity), `"`)
		message := strings.Replace(w.Text, " ("+w.Rule+")", "", 1)
		o := l.offense(w.Rule, message,
			severityOf(stylelintSeverity, severity, offense.SeverityWarning),
			offense.NewLocation(w.Line, w.Column, w.EndLine, w.EndColumn))
		if w.Rule != "" && !strings.Contains(w.Rule, "/") {
			o.DocsURL = "https://stylelint.io/user-guide/rules/" + w.Rule
		}
		offenses = append(offenses, o)
	}
	return offenses, nil
}

// ParseFixOutput returns stdout, which holds the fixed stylesheet.
func (l *Stylelint) ParseFixOutput(in adapter.FixInput) string {
	if in.Stdout == "" {
		return in.Input
	}
	return in.Stdout
}
