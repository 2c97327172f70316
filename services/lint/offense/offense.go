// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package offense

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the offense package.
var (
	// ErrInvalidOffense indicates an offense that violates a structural invariant.
	ErrInvalidOffense = errors.New("invalid offense")

	// ErrAmbiguousFix indicates an inline fix carrying both or neither of its shapes.
	ErrAmbiguousFix = errors.New("inline fix must carry exactly one shape")
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of an offense.
type Severity int

const (
	// SeverityError represents problems the tool considers errors.
	SeverityError Severity = iota

	// SeverityWarning represents problems that should be noted.
	SeverityWarning

	// SeverityInformation represents informational findings.
	SeverityInformation

	// SeverityHint represents style hints.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// SeverityFromString parses a severity string.
//
// Description:
//
//	Parses common severity strings used across linters. Unknown values
//	default to SeverityWarning.
//
// Inputs:
//
//	s - Severity string (e.g., "error", "warning", "info"). Case-insensitive.
//
// Outputs:
//
//	Severity - The parsed severity level
func SeverityFromString(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "err", "fatal", "critical":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "information", "info", "note":
		return SeverityInformation
	case "hint", "style", "suggestion":
		return SeverityHint
	default:
		return SeverityWarning
	}
}

// MarshalText implements encoding.TextMarshaler so cached offenses stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityError || s > SeverityHint {
		return nil, fmt.Errorf("%w: severity %d", ErrInvalidOffense, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = SeverityFromString(string(text))
	return nil
}

// =============================================================================
// LOCATION
// =============================================================================

// Location is a zero-based range inside a document.
type Location struct {
	LineStart   int `json:"lineStart"`
	ColumnStart int `json:"columnStart"`
	LineEnd     int `json:"lineEnd"`
	ColumnEnd   int `json:"columnEnd"`
}

// ZeroBased converts a tool's one-based line or column number to the
// zero-based convention, clamping at zero.
func ZeroBased(n int) int {
	return max(0, n-1)
}

// NewLocation builds a Location from one-based tool coordinates.
//
// Description:
//
//	Converts all four coordinates with ZeroBased. When the tool omits the
//	end position (reported as zero), the end collapses onto the start.
//
// Inputs:
//
//	line, column - One-based start position
//	endLine, endColumn - One-based end position, zero when unknown
//
// Outputs:
//
//	Location - The normalized location
func NewLocation(line, column, endLine, endColumn int) Location {
	if endLine <= 0 {
		endLine = line
	}
	if endColumn <= 0 {
		endColumn = column
	}
	return Location{
		LineStart:   ZeroBased(line),
		ColumnStart: ZeroBased(column),
		LineEnd:     ZeroBased(endLine),
		ColumnEnd:   ZeroBased(endColumn),
	}
}

// Before reports whether l starts before other.
func (l Location) Before(other Location) bool {
	if l.LineStart != other.LineStart {
		return l.LineStart < other.LineStart
	}
	return l.ColumnStart < other.ColumnStart
}

// =============================================================================
// INLINE FIX
// =============================================================================

// OffsetSpan is a half-open offset range [Start, End) counted in UTF-16
// code units from the start of the buffer.
type OffsetSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LineColumn is a zero-based position.
type LineColumn struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ColumnSpan is a line/column range.
type ColumnSpan struct {
	Start LineColumn `json:"start"`
	End   LineColumn `json:"end"`
}

// InlineFix is a text replacement a tool attached to one offense.
//
// Exactly one of Offset or Span is set. Use NewOffsetFix or NewSpanFix to
// construct values that satisfy this.
type InlineFix struct {
	Offset      *OffsetSpan `json:"offset,omitempty"`
	Span        *ColumnSpan `json:"span,omitempty"`
	Replacement string      `json:"replacement"`
}

// NewOffsetFix creates an inline fix addressed by UTF-16 offsets.
func NewOffsetFix(start, end int, replacement string) *InlineFix {
	return &InlineFix{
		Offset:      &OffsetSpan{Start: start, End: end},
		Replacement: replacement,
	}
}

// NewSpanFix creates an inline fix addressed by zero-based line/column positions.
func NewSpanFix(start, end LineColumn, replacement string) *InlineFix {
	return &InlineFix{
		Span:        &ColumnSpan{Start: start, End: end},
		Replacement: replacement,
	}
}

// Validate checks the one-shape invariant and range ordering.
func (f *InlineFix) Validate() error {
	if (f.Offset == nil) == (f.Span == nil) {
		return ErrAmbiguousFix
	}
	if f.Offset != nil && (f.Offset.Start < 0 || f.Offset.End < f.Offset.Start) {
		return fmt.Errorf("%w: offset range [%d, %d)", ErrInvalidOffense, f.Offset.Start, f.Offset.End)
	}
	if f.Span != nil {
		s, e := f.Span.Start, f.Span.End
		if s.Line < 0 || s.Column < 0 || e.Line < s.Line || (e.Line == s.Line && e.Column < s.Column) {
			return fmt.Errorf("%w: span %d:%d-%d:%d", ErrInvalidOffense, s.Line, s.Column, e.Line, e.Column)
		}
	}
	return nil
}

// =============================================================================
// OFFENSE
// =============================================================================

// Offense is one normalized finding produced by a linter.
//
// Thread Safety: Treat as immutable after creation.
type Offense struct {
	// Source is the linter name that produced the offense (e.g., "rubocop").
	Source string `json:"source"`

	// Code is the tool-defined rule identifier. May be empty.
	Code string `json:"code"`

	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Location Location `json:"location"`

	// Correctable is true when the tool claims this specific instance can
	// be auto-fixed.
	Correctable bool `json:"correctable"`

	DocsURL   string     `json:"docsUrl,omitempty"`
	InlineFix *InlineFix `json:"inlineFix,omitempty"`
}

// Validate checks structural invariants.
func (o Offense) Validate() error {
	if o.Source == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidOffense)
	}
	l := o.Location
	if l.LineStart < 0 || l.ColumnStart < 0 || l.LineEnd < 0 || l.ColumnEnd < 0 {
		return fmt.Errorf("%w: negative position in %+v", ErrInvalidOffense, l)
	}
	if o.InlineFix != nil {
		return o.InlineFix.Validate()
	}
	return nil
}

// Sort orders offenses by position, then source, then code. The sort is
// stable so equal offenses keep the order the tool reported.
func Sort(offenses []Offense) {
	sort.SliceStable(offenses, func(i, j int) bool {
		a, b := offenses[i], offenses[j]
		if a.Location != b.Location {
			return a.Location.Before(b.Location)
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Code < b.Code
	})
}
