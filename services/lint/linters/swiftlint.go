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

// SwiftLint adapts `swiftlint lint --reporter json --use-stdin`.
//
// The report covers the single stdin file, so no path filtering is done.
type SwiftLint struct{ base }

type swiftlintItem struct {
	Character *int   `json:"character"`
	Line      int    `json:"line"`
	Reason    string `json:"reason"`
	RuleID    string `json:"rule_id"`
	Severity  string `json:"severity"`
	Type      string `json:"type"`
}

var swiftlintSeverity = map[string]offense.Severity{
	"error":   offense.SeverityError,
	"warning": offense.SeverityWarning,
}

// Offenses parses the JSON array report. Character is null for
// whole-line findings.
func (l *SwiftLint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var items []swiftlintItem
	if ok, err := l.decodeJSON(report.Stdout, &items); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, item := range items {
		column := 0
		if item.Character != nil {
			column = *item.Character
		}
		o := l.offense(item.RuleID, item.Reason,
			severityOf(swiftlintSeverity, item.Severity, offense.SeverityWarning),
			offense.NewLocation(item.Line, column, 0, 0))
		o.DocsURL = "https://realm.github.io/SwiftLint/" + item.RuleID + ".html"
		offenses = append(offenses, o)
	}
	return offenses, nil
}

var (
	swiftlintFilePragma = regexp.MustCompile(`^//\s*swiftlint:disable(?:\s+(.+))?$`)
	swiftlintLinePragma = regexp.MustCompile(`^\s*//\s*swiftlint:disable:next(?:\s+(.+))?$`)
)

// IgnoreFilePragma adds or merges "// swiftlint:disable a b".
func (l *SwiftLint) IgnoreFilePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := swiftlintFilePragma.FindStringSubmatch(text)

	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	pragma := "// swiftlint:disable " + strings.Join(adapter.MergeCodes(existing, in.Code), " ")

	if m != nil {
		return pragma, true
	}
	return placeAround(in.Line.Number, text, pragma), true
}

// IgnoreLinePragma adds or merges "// swiftlint:disable:next a b".
func (l *SwiftLint) IgnoreLinePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := swiftlintLinePragma.FindStringSubmatch(text)

	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	pragma := in.Indent + "// swiftlint:disable:next " + strings.Join(adapter.MergeCodes(existing, in.Code), " ")

	if m != nil {
		return pragma, true
	}
	if in.Line.Number == 0 && swiftlintFilePragma.MatchString(text) {
		return text + "\n" + pragma, true
	}
	return placeAround(in.Line.Number, text, pragma), true
}
