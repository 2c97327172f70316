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

// Brakeman adapts `brakeman --format json --quiet --no-pager --path ROOT`.
//
// Brakeman scans the whole application and reports root-relative paths,
// so warnings for other files are dropped.
type Brakeman struct{ base }

type brakemanPayload struct {
	Warnings []struct {
		WarningType string `json:"warning_type"`
		CheckName   string `json:"check_name"`
		Message     string `json:"message"`
		File        string `json:"file"`
		Line        int    `json:"line"`
		Link        string `json:"link"`
		Confidence  string `json:"confidence"`
	} `json:"warnings"`
}

// Offenses parses the JSON payload. Warnings mark the start of a line.
func (l *Brakeman) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var payload brakemanPayload
	if ok, err := l.decodeJSON(report.Stdout, &payload); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, w := range payload.Warnings {
		if w.File == "" || !pathMatches(report.Path, w.File) {
			continue
		}
		o := l.offense(w.CheckName, w.Message, offense.SeverityWarning,
			offense.NewLocation(w.Line, 1, 0, 0))
		o.DocsURL = w.Link
		offenses = append(offenses, o)
	}
	return offenses, nil
}
