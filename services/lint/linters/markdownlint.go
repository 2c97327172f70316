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
	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Markdownlint adapts `markdownlint --json --stdin`, which writes its
// report to stderr.
//
// The report covers the single stdin file, so no path filtering is done.
type Markdownlint struct{ base }

type markdownlintItem struct {
	FileName        string   `json:"fileName"`
	LineNumber      int      `json:"lineNumber"`
	RuleNames       []string `json:"ruleNames"`
	RuleDescription string   `json:"ruleDescription"`
	RuleInformation string   `json:"ruleInformation"`
	ErrorDetail     string   `json:"errorDetail"`

	// ErrorRange is [column, length], both one-based columns.
	ErrorRange []int `json:"errorRange"`
}

// Offenses parses the JSON array on stderr.
func (l *Markdownlint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var items []markdownlintItem
	if ok, err := l.decodeJSON(report.Stderr, &items); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, item := range items {
		loc := offense.NewLocation(item.LineNumber, 0, 0, 0)
		if len(item.ErrorRange) == 2 {
			loc.ColumnStart = offense.ZeroBased(item.ErrorRange[0])
			loc.ColumnEnd = loc.ColumnStart + item.ErrorRange[1]
		}

		code := ""
		if len(item.RuleNames) > 0 {
			code = item.RuleNames[0]
		}
		message := item.RuleDescription
		if item.ErrorDetail != "" {
			message += " [" + item.ErrorDetail + "]"
		}

		o := l.offense(code, message, offense.SeverityError, loc)
		o.DocsURL = item.RuleInformation
		offenses = append(offenses, o)
	}
	return offenses, nil
}

// ParseFixOutput returns stdout, which holds the fixed document.
func (l *Markdownlint) ParseFixOutput(in adapter.FixInput) string {
	if in.Stdout == "" {
		return in.Input
	}
	return in.Stdout
}
