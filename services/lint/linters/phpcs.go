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

// PHPCodeSniffer adapts `phpcs --report=json -q --stdin-path=FILE -`.
//
// The report covers the single stdin document, so every file entry is read.
type PHPCodeSniffer struct{ base }

type phpcsPayload struct {
	Files map[string]struct {
		Messages []struct {
			Message  string `json:"message"`
			Source   string `json:"source"`
			Severity int    `json:"severity"`
			Fixable  bool   `json:"fixable"`
			Type     string `json:"type"`
			Line     int    `json:"line"`
			Column   int    `json:"column"`
		} `json:"messages"`
	} `json:"files"`
}

var phpcsSeverity = map[string]offense.Severity{
	"ERROR":   offense.SeverityError,
	"WARNING": offense.SeverityWarning,
}

// Offenses parses the JSON payload. File entries are visited in name order
// so the result is stable.
func (l *PHPCodeSniffer) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var payload phpcsPayload
	if ok, err := l.decodeJSON(report.Stdout, &payload); !ok {
		return nil, err
	}

	names := make([]string, 0, len(payload.Files))
	for name := range payload.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	var offenses []offense.Offense
	for _, name := range names {
		for _, m := range payload.Files[name].Messages {
			o := l.offense(m.Source, strings.TrimSpace(m.Message),
				severityOf(phpcsSeverity, strings.ToUpper(m.Type), offense.SeverityWarning),
				offense.NewLocation(m.Line, m.Column, 0, 0))
			o.Correctable = m.Fixable
			offenses = append(offenses, o)
		}
	}
	return offenses, nil
}
