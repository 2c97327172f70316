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

// Rubocop adapts `rubocop --format json --stdin`.
//
// The report covers the single stdin file, so no path filtering is done.
type Rubocop struct{ base }

type rubocopReport struct {
	Files []struct {
		Path     string `json:"path"`
		Offenses []struct {
			CopName     string `json:"cop_name"`
			Message     string `json:"message"`
			Correctable bool   `json:"correctable"`
			Severity    string `json:"severity"`
			Location    struct {
				StartLine   int `json:"start_line"`
				StartColumn int `json:"start_column"`
				LastLine    int `json:"last_line"`
				LastColumn  int `json:"last_column"`
			} `json:"location"`
		} `json:"offenses"`
	} `json:"files"`
}

var rubocopSeverity = map[string]offense.Severity{
	"warning":    offense.SeverityWarning,
	"convention": offense.SeverityError,
	"error":      offense.SeverityError,
	"fatal":      offense.SeverityError,
	"info":       offense.SeverityInformation,
	"refactor":   offense.SeverityInformation,
}

// Offenses parses the first file of the report.
func (l *Rubocop) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var result rubocopReport
	if ok, err := l.decodeJSON(report.Stdout, &result); !ok {
		return nil, err
	}
	if len(result.Files) == 0 {
		return nil, nil
	}

	var offenses []offense.Offense
	for _, item := range result.Files[0].Offenses {
		loc := item.Location
		o := l.offense(item.CopName, item.Message,
			severityOf(rubocopSeverity, item.Severity, offense.SeverityWarning),
			offense.NewLocation(loc.StartLine, loc.StartColumn, loc.LastLine, loc.LastColumn))
		o.Correctable = item.Correctable
		o.DocsURL = rubocopDocsURL(item.CopName)
		offenses = append(offenses, o)
	}
	return offenses, nil
}

// ParseFixOutput returns stdout, which holds the corrected source when
// rubocop runs with --stderr.
func (l *Rubocop) ParseFixOutput(in adapter.FixInput) string {
	if in.Stdout == "" {
		return in.Input
	}
	return in.Stdout
}

var rubocopEolPragma = regexp.MustCompile(`^(.*?)(?:\s*#\s*rubocop:disable\s*(.*?))?$`)

// IgnoreEolPragma appends or merges "# rubocop:disable A, B".
func (l *Rubocop) IgnoreEolPragma(in adapter.PragmaInput) (string, bool) {
	m := rubocopEolPragma.FindStringSubmatch(in.Line.Text)
	prefix, existing := "", ""
	if m != nil {
		prefix, existing = m[1], m[2]
	}
	codes := adapter.MergeCodes(adapter.SplitCodes(existing), in.Code)
	return prefix + " # rubocop:disable " + strings.Join(codes, ", "), true
}

var rubocopDocs = map[string]string{
	"bundler":         "https://docs.rubocop.org/rubocop/cops_bundler.html#",
	"gemspec":         "https://docs.rubocop.org/rubocop/cops_gemspec.html#",
	"layout":          "https://docs.rubocop.org/rubocop/cops_layout.html#",
	"lint":            "https://docs.rubocop.org/rubocop/cops_lint.html#",
	"metrics":         "https://docs.rubocop.org/rubocop/cops_metrics.html#",
	"migration":       "https://docs.rubocop.org/rubocop/cops_migration.html#",
	"minitest":        "https://docs.rubocop.org/rubocop-minitest/cops_minitest.html#",
	"naming":          "https://docs.rubocop.org/rubocop/cops_naming.html#",
	"performance":     "https://docs.rubocop.org/rubocop-performance/cops_performance.html#",
	"rails":           "https://docs.rubocop.org/rubocop-rails/cops_rails.html#",
	"rspec":           "https://docs.rubocop.org/rubocop-rspec/cops_rspec.html#",
	"rspeccapybara":   "https://docs.rubocop.org/rubocop-rspec/cops_rspec/capybara.html#",
	"rspecfactorybot": "https://docs.rubocop.org/rubocop-rspec/cops_rspec/factorybot.html#",
	"rspecrails":      "https://docs.rubocop.org/rubocop-rspec/cops_rspec/rails.html#",
	"security":        "https://docs.rubocop.org/rubocop/cops_security.html#",
	"sorbet":          "https://github.com/Shopify/rubocop-sorbet/blob/master/manual/cops_sorbet.md#",
	"style":           "https://docs.rubocop.org/rubocop/cops_style.html#",
}

// rubocopDocsURL maps "Department/Name" (or "RSpec/Rails/Name") to the
// department's documentation page.
func rubocopDocsURL(code string) string {
	if code == "" {
		return ""
	}
	parts := strings.Split(code, "/")
	department := parts[0]
	if len(parts) > 2 {
		department = parts[0] + parts[1]
	}
	prefix, ok := rubocopDocs[strings.ToLower(department)]
	if !ok {
		return ""
	}
	return prefix + strings.ToLower(strings.ReplaceAll(code, "/", ""))
}
