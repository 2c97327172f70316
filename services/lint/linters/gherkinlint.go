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

// GherkinLint adapts `gherkin-lint --format json FILE`.
//
// The report is written to stderr. Entries for other files are dropped.
type GherkinLint struct{ base }

type gherkinLintFile struct {
	FilePath string `json:"filePath"`
	Errors   []struct {
		Message string `json:"message"`
		Rule    string `json:"rule"`
		Line    int    `json:"line"`
	} `json:"errors"`
}

// Offenses parses the stderr payload. Findings mark the start of a line.
func (l *GherkinLint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var files []gherkinLintFile
	if ok, err := l.decodeJSON(report.Stderr, &files); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, file := range files {
		if !pathMatches(report.Path, file.FilePath) {
			continue
		}
		for _, e := range file.Errors {
			offenses = append(offenses, l.offense(e.Rule, e.Message, offense.SeverityError,
				offense.NewLocation(e.Line, 1, 0, 0)))
		}
	}
	return offenses, nil
}
