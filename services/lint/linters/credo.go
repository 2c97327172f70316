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
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Credo adapts `mix credo --format json --read-from-stdin`.
//
// Issues for files other than the linted path are dropped.
type Credo struct{ base }

type credoPayload struct {
	Issues []struct {
		Category  string `json:"category"`
		Check     string `json:"check"`
		Column    int    `json:"column"`
		ColumnEnd int    `json:"column_end"`
		Filename  string `json:"filename"`
		LineNo    int    `json:"line_no"`
		Message   string `json:"message"`
		Priority  int    `json:"priority"`
	} `json:"issues"`
}

// Offenses parses the issues list. Credo has no severity; issues in the
// warning category are warnings and the rest are information.
func (l *Credo) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var payload credoPayload
	if ok, err := l.decodeJSON(report.Stdout, &payload); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, issue := range payload.Issues {
		if issue.Filename != "stdin" && !pathMatches(report.Path, issue.Filename) {
			continue
		}
		severity := offense.SeverityInformation
		if issue.Category == "warning" {
			severity = offense.SeverityWarning
		}
		o := l.offense(issue.Check, issue.Message, severity,
			offense.NewLocation(issue.LineNo, issue.Column, issue.LineNo, issue.ColumnEnd))
		offenses = append(offenses, o)
	}
	return offenses, nil
}

var (
	credoFilePragma = regexp.MustCompile(`^# credo:disable-for-this-file(?:\s+(.+))?$`)
	credoLinePragma = regexp.MustCompile(`^\s*# credo:disable-for-next-line(?:\s+(.+))?$`)
)

// FilePragmaLines returns the number of leading "disable-for-this-file"
// lines.
func (l *Credo) FilePragmaLines(lines []string) int {
	n := 0
	for n < len(lines) && credoFilePragma.MatchString(lines[n]) {
		n++
	}
	return max(1, n)
}

// IgnoreFilePragma adds "# credo:disable-for-this-file Check" above the
// first line. Credo pragmas name a single check, so the leading block holds
// one line per check, sorted. A check already listed, or a bare pragma
// disabling every check, leaves the block unchanged.
func (l *Credo) IgnoreFilePragma(in adapter.PragmaInput) (string, bool) {
	var existing, rest []string
	for _, line := range strings.Split(in.Line.Text, "\n") {
		m := credoFilePragma.FindStringSubmatch(line)
		switch {
		case m == nil:
			rest = append(rest, line)
		case m[1] == "":
			return in.Line.Text, true
		default:
			existing = append(existing, strings.TrimSpace(m[1]))
		}
	}

	checks := adapter.MergeCodes(existing, in.Code)
	if len(checks) == len(existing) {
		return in.Line.Text, true
	}
	lines := make([]string, 0, len(checks)+len(rest))
	for _, check := range checks {
		lines = append(lines, "# credo:disable-for-this-file "+check)
	}
	return strings.Join(append(lines, rest...), "\n"), true
}

// IgnoreLinePragma inserts "# credo:disable-for-next-line Check". When a
// next-line pragma for another check already exists it is widened to all
// checks, since credo cannot list several.
func (l *Credo) IgnoreLinePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	pragma := in.Indent + "# credo:disable-for-next-line " + in.Code

	if credoFilePragma.MatchString(text) {
		return text + "\n" + pragma, true
	}
	if m := credoLinePragma.FindStringSubmatch(text); m != nil {
		if m[1] == in.Code {
			return text, true
		}
		return in.Indent + "# credo:disable-for-next-line", true
	}
	return placeAround(in.Line.Number, text, pragma), true
}
