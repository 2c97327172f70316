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

// ERBLint adapts `erb_lint --format json --stdin FILE`.
//
// The report covers the single stdin document, so every file entry is read.
type ERBLint struct{ base }

type erbLintPayload struct {
	Files []struct {
		Path     string `json:"path"`
		Offenses []struct {
			Linter   string `json:"linter"`
			Message  string `json:"message"`
			Location struct {
				StartLine   int `json:"start_line"`
				StartColumn int `json:"start_column"`
				LastLine    int `json:"last_line"`
				LastColumn  int `json:"last_column"`
			} `json:"location"`
		} `json:"offenses"`
	} `json:"files"`
}

// Offenses parses the JSON payload. Lines are one-based and columns are
// already zero-based.
func (l *ERBLint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var payload erbLintPayload
	if ok, err := l.decodeJSON(report.Stdout, &payload); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, file := range payload.Files {
		for _, item := range file.Offenses {
			loc := item.Location
			lastLine := loc.LastLine
			if lastLine <= 0 {
				lastLine = loc.StartLine
			}
			offenses = append(offenses, l.offense(item.Linter, item.Message, offense.SeverityError,
				offense.Location{
					LineStart:   offense.ZeroBased(loc.StartLine),
					ColumnStart: max(0, loc.StartColumn),
					LineEnd:     offense.ZeroBased(lastLine),
					ColumnEnd:   max(0, loc.LastColumn),
				}))
		}
	}
	return offenses, nil
}
