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

// Ruby adapts `ruby -wc`, the interpreter's own syntax and warning check.
//
// Findings are written to stderr as "-:LINE: warning: message". Ruby only
// checks its input, so no path filtering is done.
type Ruby struct{ base }

var rubyLine = regexp.MustCompile(`^[^:]+:(\d+):\s*(?:(warning|error):)?\s*(.*?)$`)

// Offenses parses stderr. Lines without a severity are errors.
func (l *Ruby) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var offenses []offense.Offense
	for _, line := range splitLines(report.Stderr) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := rubyLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[1])

		severity := offense.SeverityError
		if m[2] == "warning" {
			severity = offense.SeverityWarning
		}
		offenses = append(offenses, l.offense("", m[3], severity, offense.NewLocation(lineNo, 1, 0, 0)))
	}
	return offenses, nil
}
