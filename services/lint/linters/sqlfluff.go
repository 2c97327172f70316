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

// SQLFluff adapts `sqlfluff lint --format json -`.
//
// Only the first file entry is read; stdin input produces exactly one.
type SQLFluff struct{ base }

type sqlfluffFile struct {
	Filepath   string `json:"filepath"`
	Violations []struct {
		LineNo       int    `json:"line_no"`
		LinePos      int    `json:"line_pos"`
		StartLineNo  int    `json:"start_line_no"`
		StartLinePos int    `json:"start_line_pos"`
		EndLineNo    int    `json:"end_line_no"`
		EndLinePos   int    `json:"end_line_pos"`
		Code         string `json:"code"`
		Description  string `json:"description"`
		Name         string `json:"name"`
		Warning      bool   `json:"warning"`
	} `json:"violations"`
}

// Offenses parses the report. Both the legacy line_no/line_pos fields and
// the start/end fields of newer releases are understood.
func (l *SQLFluff) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var files []sqlfluffFile
	if ok, err := l.decodeJSON(report.Stdout, &files); !ok {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	var offenses []offense.Offense
	for _, v := range files[0].Violations {
		line, column := v.StartLineNo, v.StartLinePos
		if line == 0 {
			line, column = v.LineNo, v.LinePos
		}
		severity := offense.SeverityError
		if v.Warning {
			severity = offense.SeverityWarning
		}
		o := l.offense(v.Code, v.Description, severity,
			offense.NewLocation(line, column, v.EndLineNo, v.EndLinePos))
		o.DocsURL = "https://docs.sqlfluff.com/en/stable/reference/rules.html#rule-" + v.Code
		offenses = append(offenses, o)
	}
	return offenses, nil
}

// ParseFixOutput returns stdout, which holds the fixed statement text.
func (l *SQLFluff) ParseFixOutput(in adapter.FixInput) string {
	if in.Stdout == "" {
		return in.Input
	}
	return in.Stdout
}

var sqlfluffEolPragma = regexp.MustCompile(`^(.*?)(?:\s+--\s*noqa:\s*disable=(.+))?$`)

// IgnoreEolPragma appends or merges "-- noqa: disable=AL01, LT02".
func (l *SQLFluff) IgnoreEolPragma(in adapter.PragmaInput) (string, bool) {
	m := sqlfluffEolPragma.FindStringSubmatch(in.Line.Text)
	prefix, existing := in.Line.Text, ""
	if m != nil {
		prefix, existing = m[1], m[2]
	}
	codes := adapter.MergeCodes(adapter.SplitCodes(existing), in.Code)
	return prefix + " -- noqa: disable=" + strings.Join(codes, ", "), true
}
