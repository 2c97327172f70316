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

// Reek adapts `reek --format json --stdin-filename FILE`.
//
// The report covers the single stdin file, so no path filtering is done.
type Reek struct{ base }

type reekSmell struct {
	Context           string `json:"context"`
	Lines             []int  `json:"lines"`
	Message           string `json:"message"`
	SmellType         string `json:"smell_type"`
	DocumentationLink string `json:"documentation_link"`
}

// Offenses parses the smell list. A smell spanning several lines is
// reported on its first line.
func (l *Reek) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var smells []reekSmell
	if ok, err := l.decodeJSON(report.Stdout, &smells); !ok {
		return nil, err
	}

	var offenses []offense.Offense
	for _, smell := range smells {
		line := 1
		if len(smell.Lines) > 0 {
			line = smell.Lines[0]
		}
		o := l.offense(smell.SmellType, smell.Context+" "+smell.Message,
			offense.SeverityWarning, offense.NewLocation(line, 1, 0, 0))
		o.DocsURL = smell.DocumentationLink
		offenses = append(offenses, o)
	}
	return offenses, nil
}

var reekLinePragma = regexp.MustCompile(`^\s*#\s*((?::reek:\S+\s*)+)$`)

// IgnoreLinePragma adds a ":reek:Smell" magic comment before the offense,
// or adds the smell to a magic comment already there.
func (l *Reek) IgnoreLinePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	if m := reekLinePragma.FindStringSubmatch(text); m != nil {
		var existing []string
		for _, field := range strings.Fields(m[1]) {
			existing = append(existing, strings.TrimPrefix(field, ":reek:"))
		}
		smells := adapter.MergeCodes(existing, in.Code)
		for i, smell := range smells {
			smells[i] = ":reek:" + smell
		}
		return adapter.Indent(text) + "# " + strings.Join(smells, " "), true
	}
	return placeAround(in.Line.Number, text, in.Indent+"# :reek:"+in.Code), true
}
