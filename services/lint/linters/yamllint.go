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

// Yamllint adapts `yamllint --format parsable -`.
//
// Lines are "stdin:LINE:COL: [level] message (rule)". No path filtering is
// done.
type Yamllint struct{ base }

var yamllintLine = regexp.MustCompile(`^.*?:(\d+):(\d+): \[(.*?)\] (.+) \((.*?)\)$`)

var yamllintSeverity = map[string]offense.Severity{
	"warning": offense.SeverityWarning,
	"error":   offense.SeverityError,
}

// Offenses parses the parsable text format. Lines that do not match are skipped.
func (l *Yamllint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var offenses []offense.Offense
	for _, line := range splitLines(report.Stdout) {
		m := yamllintLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[1])
		column, _ := strconv.Atoi(m[2])
		o := l.offense(m[5], m[4],
			severityOf(yamllintSeverity, m[3], offense.SeverityWarning),
			offense.NewLocation(lineNo, column, 0, 0))
		o.DocsURL = "https://yamllint.readthedocs.io/en/stable/rules.html#module-yamllint.rules." + m[5]
		offenses = append(offenses, o)
	}
	return offenses, nil
}

var yamllintLinePragma = regexp.MustCompile(`^\s*# yamllint disable-line(?: (.*?))?$`)

// IgnoreLinePragma adds or merges "# yamllint disable-line rule:a rule:b".
func (l *Yamllint) IgnoreLinePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := yamllintLinePragma.FindStringSubmatch(text)

	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	pragma := in.Indent + "# yamllint disable-line " + strings.Join(adapter.MergeCodes(existing, "rule:"+in.Code), " ")

	if m != nil {
		return pragma, true
	}
	return placeAround(in.Line.Number, text, pragma), true
}
