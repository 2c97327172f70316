// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adapter

import (
	"regexp"
	"slices"
	"strings"
)

var leadingWhitespace = regexp.MustCompile(`^(\s+)`)

// Indent returns the leading whitespace of line.
func Indent(line string) string {
	if m := leadingWhitespace.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// SplitCodes parses a rule list such as "A, B" or "A,B" into its codes.
func SplitCodes(list string) []string {
	var codes []string
	for _, part := range strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) {
		if part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}

// MergeCodes appends code to existing, removes duplicates and sorts. An
// empty code is not added.
func MergeCodes(existing []string, code string) []string {
	merged := slices.Clone(existing)
	if code != "" {
		merged = append(merged, code)
	}
	slices.Sort(merged)
	return slices.Compact(merged)
}
