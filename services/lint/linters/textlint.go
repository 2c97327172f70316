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
	"strconv"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// Textlint adapts `textlint --format json --stdin --stdin-filename FILE`.
//
// The report covers the single stdin document, so only the first result
// is read.
type Textlint struct{ base }

type textlintResult struct {
	FilePath string `json:"filePath"`
	Messages []struct {
		RuleID   string `json:"ruleId"`
		Message  string `json:"message"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
		Severity int    `json:"severity"`
		Fix      *struct {
			Range [2]int `json:"range"`
			Text  string `json:"text"`
		} `json:"fix"`
	} `json:"messages"`
}

var textlintSeverity = map[string]offense.Severity{
	"1": offense.SeverityWarning,
	"2": offense.SeverityError,
}

// Offenses parses the first result. Fixes carry UTF-16 offsets into the
// buffer, the same shape eslint reports.
func (l *Textlint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var results []textlintResult
	if ok, err := l.decodeJSON(report.Stdout, &results); !ok {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	var offenses []offense.Offense
	for _, m := range results[0].Messages {
		o := l.offense(m.RuleID, strings.TrimSpace(m.Message),
			severityOf(textlintSeverity, strconv.Itoa(m.Severity), offense.SeverityWarning),
			offense.NewLocation(m.Line, m.Column, 0, 0))
		if m.Fix != nil {
			o.Correctable = true
			o.InlineFix = offense.NewOffsetFix(m.Fix.Range[0], m.Fix.Range[1], m.Fix.Text)
		}
		offenses = append(offenses, o)
	}
	return offenses, nil
}
