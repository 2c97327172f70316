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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// ErrMissingPattern is returned when the pattern adapter is configured
// without a pattern.
var ErrMissingPattern = errors.New("pattern adapter requires a pattern")

// Pattern is a data-driven adapter for tools that print one finding per
// line. It lets companion configurations add a linter without code.
//
// Description:
//
//	Each line of the selected stream is matched against the configured
//	regex. The named groups line, column, endLine, endColumn, severity,
//	code and message fill the offense; missing groups fall back to line
//	1, column 1 and the configured severity. Lines that do not match are
//	ignored.
//
// Thread Safety: Safe for concurrent use.
type Pattern struct {
	base
	re       *regexp.Regexp
	stderr   bool
	severity offense.Severity
	docsURL  string
}

// NewPattern builds a Pattern adapter from spec.Pattern.
//
// Inputs:
//
//	spec - Spec with Name and a non-nil Pattern
//
// Outputs:
//
//	adapter.Linter - The adapter
//	error - ErrMissingPattern, or the regex compile error
func NewPattern(spec adapter.Spec) (adapter.Linter, error) {
	if spec.Pattern == nil || spec.Pattern.Regex == "" {
		return nil, fmt.Errorf("%s: %w", spec.Name, ErrMissingPattern)
	}
	re, err := regexp.Compile(spec.Pattern.Regex)
	if err != nil {
		return nil, fmt.Errorf("%s: compile pattern: %w", spec.Name, err)
	}
	severity := offense.SeverityWarning
	if spec.Pattern.Severity != "" {
		severity = offense.SeverityFromString(spec.Pattern.Severity)
	}
	return &Pattern{
		base:     base{spec.Name},
		re:       re,
		stderr:   spec.Pattern.Stream == "stderr",
		severity: severity,
		docsURL:  spec.Pattern.DocsURL,
	}, nil
}

// Offenses matches every output line against the pattern.
func (p *Pattern) Offenses(report adapter.Report) ([]offense.Offense, error) {
	output := report.Stdout
	if p.stderr {
		output = report.Stderr
	}

	var offenses []offense.Offense
	for _, line := range splitLines(output) {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		group := func(name string) string {
			if i := p.re.SubexpIndex(name); i > 0 {
				return m[i]
			}
			return ""
		}
		number := func(name string, fallback int) int {
			n, err := strconv.Atoi(group(name))
			if err != nil {
				return fallback
			}
			return n
		}

		severity := p.severity
		if s := group("severity"); s != "" {
			severity = offense.SeverityFromString(s)
		}
		message := strings.TrimSpace(group("message"))
		if message == "" {
			message = strings.TrimSpace(line)
		}
		code := group("code")

		o := p.offense(code, message, severity, offense.NewLocation(
			number("line", 1), number("column", 1), number("endLine", 0), number("endColumn", 0)))
		if p.docsURL != "" && code != "" {
			o.DocsURL = strings.ReplaceAll(p.docsURL, "{code}", code)
		}
		offenses = append(offenses, o)
	}
	return offenses, nil
}
