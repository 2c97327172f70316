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
	"sort"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Vale adapts `vale --output JSON --ext .md`.
//
// The report is keyed by file name. The entry matching the linted path is
// used; otherwise the first entry in name order, which is the stdin entry
// for single-document runs.
type Vale struct{ base }

type valeAlert struct {
	Check       string `json:"Check"`
	Description string `json:"Description"`
	Line        int    `json:"Line"`
	Link        string `json:"Link"`
	Message     string `json:"Message"`
	Severity    string `json:"Severity"`
	Span        []int  `json:"Span"`
	Match       string `json:"Match"`
}

var valeSeverity = map[string]offense.Severity{
	"error":      offense.SeverityError,
	"warning":    offense.SeverityWarning,
	"suggestion": offense.SeverityHint,
}

// Offenses parses the alerts of one file entry.
func (l *Vale) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var payload map[string][]valeAlert
	if ok, err := l.decodeJSON(report.Stdout, &payload); !ok {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	key := names[0]
	for _, name := range names {
		if pathMatches(report.Path, name) {
			key = name
			break
		}
	}

	var offenses []offense.Offense
	for _, alert := range payload[key] {
		loc := offense.NewLocation(alert.Line, 1, 0, 0)
		if len(alert.Span) == 2 {
			loc.ColumnStart = offense.ZeroBased(alert.Span[0])
			loc.ColumnEnd = alert.Span[1]
		}
		o := l.offense(alert.Check, strings.TrimSpace(alert.Message),
			severityOf(valeSeverity, alert.Severity, offense.SeverityWarning), loc)
		o.DocsURL = alert.Link
		offenses = append(offenses, o)
	}
	return offenses, nil
}
