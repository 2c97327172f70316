// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/lintbridge/pkg/ux"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// fileReport is the lint outcome of one file.
type fileReport struct {
	Path     string            `json:"path"`
	URI      string            `json:"uri"`
	Language string            `json:"language"`
	Results  []linterResult    `json:"results"`
	Offenses []offense.Offense `json:"offenses"`
}

type linterResult struct {
	Linter     string          `json:"linter"`
	Status     pipeline.Status `json:"status"`
	Offenses   int             `json:"offenses"`
	Error      string          `json:"error,omitempty"`
	DurationMs int64           `json:"durationMs"`
}

func newFileReport(doc textdoc.Document, results []pipeline.Result, offenses []offense.Offense) fileReport {
	r := fileReport{
		Path:     doc.Path,
		URI:      doc.URI,
		Language: doc.LanguageID,
		Results:  make([]linterResult, 0, len(results)),
		Offenses: offenses,
	}
	if r.Offenses == nil {
		r.Offenses = []offense.Offense{}
	}
	for _, res := range results {
		lr := linterResult{
			Linter:     res.Linter,
			Status:     res.Status,
			Offenses:   len(res.Offenses),
			DurationMs: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			lr.Error = res.Err.Error()
		}
		r.Results = append(r.Results, lr)
	}
	return r
}

// renderReport formats one file's offenses for level. Positions are
// shown one-based.
func renderReport(level ux.Level, r fileReport) string {
	var b strings.Builder

	if level == ux.LevelMachine {
		for _, o := range r.Offenses {
			fmt.Fprintf(&b, "%s:%d:%d: %s: %s [%s]\n",
				r.Path, o.Location.LineStart+1, o.Location.ColumnStart+1,
				o.Severity, o.Message, ruleName(o))
		}
		return b.String()
	}

	failed := failedResults(r.Results)
	if len(r.Offenses) == 0 && len(failed) == 0 {
		return ""
	}

	if level == ux.LevelRich {
		b.WriteString(ux.Styles.Bold.Render(r.Path))
	} else {
		b.WriteString(r.Path)
	}
	b.WriteByte('\n')

	for _, o := range r.Offenses {
		pos := fmt.Sprintf("%d:%d", o.Location.LineStart+1, o.Location.ColumnStart+1)
		rule := ruleName(o)
		icon := severityIcon(o.Severity)
		if level == ux.LevelRich {
			fmt.Fprintf(&b, "  %s %s  %s  %s\n",
				icon.Render(), ux.Styles.Muted.Render(fmt.Sprintf("%-7s", pos)),
				o.Message, ux.Styles.Muted.Render(rule))
			continue
		}
		fmt.Fprintf(&b, "  %s %-7s  %s  %s\n", icon, pos, o.Message, rule)
	}

	for _, res := range failed {
		line := fmt.Sprintf("%s failed: %s", res.Linter, res.Error)
		if level == ux.LevelRich {
			line = ux.Styles.Muted.Render(line)
		}
		fmt.Fprintf(&b, "  %s %s\n", ux.IconWarning, line)
	}
	return b.String()
}

func failedResults(results []linterResult) []linterResult {
	var out []linterResult
	for _, r := range results {
		if r.Status == pipeline.StatusFailed {
			out = append(out, r)
		}
	}
	return out
}

func ruleName(o offense.Offense) string {
	if o.Code == "" {
		return o.Source
	}
	return o.Source + "/" + o.Code
}

func severityIcon(s offense.Severity) ux.Icon {
	switch s {
	case offense.SeverityError:
		return ux.IconError
	case offense.SeverityWarning:
		return ux.IconWarning
	case offense.SeverityInformation:
		return ux.IconInfo
	default:
		return ux.IconHint
	}
}

// severityCounts splits offenses into errors, warnings and the rest.
func severityCounts(reports []fileReport) (errs, warnings, others int) {
	for _, r := range reports {
		for _, o := range r.Offenses {
			switch o.Severity {
			case offense.SeverityError:
				errs++
			case offense.SeverityWarning:
				warnings++
			default:
				others++
			}
		}
	}
	return errs, warnings, others
}

// failThreshold parses --fail-level. "none" disables failing.
func failThreshold(name string) (offense.Severity, bool, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return 0, false, nil
	case "error", "warning", "information", "info", "hint":
		return offense.SeverityFromString(name), true, nil
	default:
		return 0, false, fmt.Errorf("unknown fail level %q", name)
	}
}

// reachesThreshold reports whether any offense is at least as severe as
// threshold.
func reachesThreshold(reports []fileReport, threshold offense.Severity) bool {
	for _, r := range reports {
		for _, o := range r.Offenses {
			if o.Severity <= threshold {
				return true
			}
		}
	}
	return false
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
