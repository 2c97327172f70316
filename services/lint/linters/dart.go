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
	"strconv"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Dart adapts `dart analyze --format human FILE`.
type Dart struct{ base }

var dartLine = regexp.MustCompile(`^(error|warning|info) - .*?:(\d+):(\d+) - (.+) - (.+)$`)

var dartSeverity = map[string]offense.Severity{
	"error":   offense.SeverityError,
	"warning": offense.SeverityWarning,
	"info":    offense.SeverityInformation,
}

// Offenses parses the text report. Findings are single points.
func (l *Dart) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var offenses []offense.Offense
	for _, line := range splitLines(report.Stdout) {
		m := dartLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		column, _ := strconv.Atoi(m[3])

		o := l.offense(m[5], m[4], severityOf(dartSeverity, m[1], offense.SeverityWarning),
			offense.NewLocation(lineNo, column, 0, 0))
		o.DocsURL = "https://dart.dev/tools/linter-rules#" + m[5]
		offenses = append(offenses, o)
	}
	return offenses, nil
}
