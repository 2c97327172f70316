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

// Luacheck adapts `luacheck --formatter plain --codes --ranges -`.
//
// Only "stdin:" lines are parsed, which excludes every other file.
type Luacheck struct{ base }

var luacheckLine = regexp.MustCompile(`^stdin:(\d+):(\d+)-(\d+): \((.*?)\) (.+)$`)

// Offenses parses the plain text report. The reported end column is
// inclusive and one-based, which equals the exclusive zero-based end.
func (l *Luacheck) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var offenses []offense.Offense
	for _, line := range splitLines(report.Stdout) {
		m := luacheckLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[1])
		colStart, _ := strconv.Atoi(m[2])
		colEnd, _ := strconv.Atoi(m[3])
		code := m[4]

		severity := offense.SeverityWarning
		if strings.HasPrefix(code, "E") {
			severity = offense.SeverityError
		}

		o := l.offense(code, m[5], severity, offense.Location{
			LineStart:   offense.ZeroBased(lineNo),
			ColumnStart: offense.ZeroBased(colStart),
			LineEnd:     offense.ZeroBased(lineNo),
			ColumnEnd:   colEnd,
		})
		o.DocsURL = luacheckDocsURL(code)
		offenses = append(offenses, o)
	}
	return offenses, nil
}

func luacheckDocsURL(code string) string {
	const docs = "https://luacheck.readthedocs.io/en/stable/warnings.html#"
	if len(code) < 2 || code[0] != 'W' {
		return ""
	}
	switch code[1] {
	case '1':
		return docs + "global-variables-1xx"
	case '2', '3':
		return docs + "unused-variables-2xx-and-values-3xx"
	case '4':
		return docs + "shadowing-declarations-4xx"
	case '5':
		return docs + "control-flow-and-data-flow-issues-5xx"
	case '6':
		return docs + "formatting-issues-6xx"
	default:
		return ""
	}
}
