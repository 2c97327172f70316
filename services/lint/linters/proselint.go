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
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Proselint adapts `proselint --json -`.
//
// The report covers the single stdin document, so no path filtering is done.
type Proselint struct{ base }

type proselintPayload struct {
	Status string `json:"status"`
	Data   struct {
		Errors []struct {
			Check    string `json:"check"`
			Column   int    `json:"column"`
			Start    int    `json:"start"`
			End      int    `json:"end"`
			Extent   int    `json:"extent"`
			Line     int    `json:"line"`
			Message  string `json:"message"`
			Severity string `json:"severity"`
		} `json:"errors"`
	} `json:"data"`
}

var proselintSeverity = map[string]offense.Severity{
	"error":      offense.SeverityError,
	"warning":    offense.SeverityWarning,
	"suggestion": offense.SeverityHint,
}

// Offenses parses the JSON payload. The range spans the matched extent.
func (l *Proselint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var payload proselintPayload
	if ok, err := l.decodeJSON(report.Stdout, &payload); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, e := range payload.Data.Errors {
		loc := offense.NewLocation(e.Line, e.Column, 0, 0)
		extent := e.Extent
		if extent == 0 {
			extent = e.End - e.Start
		}
		loc.ColumnEnd = loc.ColumnStart + max(0, extent)

		o := l.offense(e.Check, strings.TrimSpace(e.Message),
			severityOf(proselintSeverity, e.Severity, offense.SeverityWarning), loc)
		offenses = append(offenses, o)
	}
	return offenses, nil
}
