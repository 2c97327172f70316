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
	"errors"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// LanguageTool adapts `languagetool --json -`.
//
// The command line client prints a banner before the payload, so parsing
// starts at the first brace. Matches are located by UTF-16 offsets into
// the input text.
type LanguageTool struct{ base }

var errNoPayload = errors.New("no JSON object in output")

type languageToolPayload struct {
	Matches []struct {
		Message      string `json:"message"`
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Rule struct {
			ID string `json:"id"`
		} `json:"rule"`
	} `json:"matches"`
}

// Offenses parses the JSON payload and maps offsets onto report.Input.
func (l *LanguageTool) Offenses(report adapter.Report) ([]offense.Offense, error) {
	out := report.Stdout
	start := strings.IndexByte(out, '{')
	if start < 0 {
		if strings.TrimSpace(out) == "" {
			return nil, nil
		}
		return nil, adapter.NewParseError(l.name, errNoPayload)
	}

	var payload languageToolPayload
	if ok, err := l.decodeJSON(out[start:], &payload); !ok {
		return nil, err
	}

	doc := textdoc.Document{Text: report.Input}
	var offenses []offense.Offense
	for _, m := range payload.Matches {
		from := doc.PositionAtUTF16(m.Offset)
		to := doc.PositionAtUTF16(m.Offset + max(0, m.Length))
		o := l.offense(m.Rule.ID, strings.TrimSpace(m.Message), offense.SeverityWarning,
			offense.Location{
				LineStart:   from.Line,
				ColumnStart: from.Character,
				LineEnd:     to.Line,
				ColumnEnd:   to.Character,
			})
		o.Correctable = len(m.Replacements) > 0
		offenses = append(offenses, o)
	}
	return offenses, nil
}
