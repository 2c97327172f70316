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
	"strconv"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// ESLint adapts `eslint --format json --stdin`.
//
// The report covers the single stdin file, so no path filtering is done.
// Autofixable messages carry an offset-addressed inline fix.
type ESLint struct{ base }

type eslintResult struct {
	FilePath string  `json:"filePath"`
	Output   *string `json:"output"`
	Messages []struct {
		RuleID    string `json:"ruleId"`
		Severity  int    `json:"severity"`
		Message   string `json:"message"`
		Line      int    `json:"line"`
		Column    int    `json:"column"`
		EndLine   int    `json:"endLine"`
		EndColumn int    `json:"endColumn"`
		Fix       *struct {
			Range [2]int `json:"range"`
			Text  string `json:"text"`
		} `json:"fix"`
	} `json:"messages"`
}

var eslintSeverity = map[string]offense.Severity{
	"1": offense.SeverityWarning,
	"2": offense.SeverityError,
}

// Offenses parses the first result of the report.
func (l *ESLint) Offenses(report adapter.Report) ([]offense.Offense, error) {
	var results []eslintResult
	if ok, err := l.decodeJSON(report.Stdout, &results); !ok {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	var offenses []offense.Offense
	for _, item := range results[0].Messages {
		o := l.offense(item.RuleID, item.Message,
			severityOf(eslintSeverity, strconv.Itoa(item.Severity), offense.SeverityWarning),
			offense.NewLocation(item.Line, item.Column, item.EndLine, item.EndColumn))
		o.DocsURL = eslintDocsURL(item.RuleID)
		if item.Fix != nil {
			o.Correctable = true
			o.InlineFix = offense.NewOffsetFix(item.Fix.Range[0], item.Fix.Range[1], item.Fix.Text)
		}
		offenses = append(offenses, o)
	}
	return offenses, nil
}

// ParseFixOutput reads the fixed source from the first result's output
// field. ESLint omits the field when nothing changed.
func (l *ESLint) ParseFixOutput(in adapter.FixInput) string {
	var results []eslintResult
	if ok, _ := l.decodeJSON(in.Stdout, &results); !ok || len(results) == 0 || results[0].Output == nil {
		return in.Input
	}
	return *results[0].Output
}

var (
	eslintFilePragma = regexp.MustCompile(`^/\*\s*eslint-disable(?:\s+(.*?))?\s*\*/$`)
	eslintLinePragma = regexp.MustCompile(`^\s*//\s*eslint-disable-next-line(?:\s+(.*?))?$`)
)

// IgnoreLinePragma adds or merges "// eslint-disable-next-line a, b".
func (l *ESLint) IgnoreLinePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := eslintLinePragma.FindStringSubmatch(text)

	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	pragma := in.Indent + "// eslint-disable-next-line " + strings.Join(adapter.MergeCodes(existing, in.Code), ", ")

	if m != nil {
		return pragma, true
	}
	if in.Line.Number == 0 && eslintFilePragma.MatchString(text) {
		return text + "\n" + pragma, true
	}
	return placeAround(in.Line.Number, text, pragma), true
}

// IgnoreFilePragma adds or merges "/* eslint-disable a, b */".
func (l *ESLint) IgnoreFilePragma(in adapter.PragmaInput) (string, bool) {
	text := in.Line.Text
	m := eslintFilePragma.FindStringSubmatch(text)

	var existing []string
	if m != nil {
		existing = adapter.SplitCodes(m[1])
	}
	pragma := "/* eslint-disable " + strings.Join(adapter.MergeCodes(existing, in.Code), ", ") + " */"

	if m != nil {
		return pragma, true
	}
	return placeAround(in.Line.Number, text, pragma), true
}

var eslintPluginDocs = map[string]string{
	"@typescript-eslint": "https://typescript-eslint.io/rules/",
	"react":              "https://github.com/jsx-eslint/eslint-plugin-react/blob/master/docs/rules/",
	"jsx-a11y":           "https://github.com/jsx-eslint/eslint-plugin-jsx-a11y/blob/master/docs/rules/",
	"jest":               "https://github.com/jest-community/eslint-plugin-jest/blob/HEAD/docs/rules/",
	"import":             "https://github.com/import-js/eslint-plugin-import/blob/HEAD/docs/rules/",
	"unicorn":            "https://github.com/sindresorhus/eslint-plugin-unicorn/blob/HEAD/docs/rules/",
	"lodash":             "https://github.com/wix/eslint-plugin-lodash/blob/HEAD/docs/rules/",
}

// eslintDocsURL maps core rules to eslint.org and plugin rules to the
// plugin's rule documentation.
func eslintDocsURL(ruleID string) string {
	if ruleID == "" {
		return ""
	}
	plugin, rule, scoped := strings.Cut(ruleID, "/")
	if !scoped {
		return "https://eslint.org/docs/latest/rules/" + ruleID
	}
	prefix, ok := eslintPluginDocs[plugin]
	if !ok {
		return ""
	}
	if plugin == "@typescript-eslint" {
		return prefix + rule
	}
	return prefix + rule + ".md"
}
