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
	"errors"
	"fmt"

	"github.com/AleutianAI/lintbridge/services/lint/offense"
)

// =============================================================================
// CAPABILITIES
// =============================================================================

// Capability names an optional operation a linter supports.
type Capability string

const (
	CapFixAll      Capability = "fix-all"
	CapFixCategory Capability = "fix-category"
	CapFixOne      Capability = "fix-one"
	CapFixInline   Capability = "fix-inline"
	CapIgnoreFile  Capability = "ignore-file"
	CapIgnoreLine  Capability = "ignore-line"
	CapIgnoreEol   Capability = "ignore-eol"
)

// Capabilities lists every known capability.
var Capabilities = []Capability{
	CapFixAll, CapFixCategory, CapFixOne, CapFixInline,
	CapIgnoreFile, CapIgnoreLine, CapIgnoreEol,
}

// IsFix reports whether c is one of the process-based fix capabilities.
func (c Capability) IsFix() bool {
	return c == CapFixAll || c == CapFixCategory || c == CapFixOne
}

// IsIgnore reports whether c is one of the ignore capabilities.
func (c Capability) IsIgnore() bool {
	return c == CapIgnoreFile || c == CapIgnoreLine || c == CapIgnoreEol
}

// =============================================================================
// ERRORS
// =============================================================================

// Sentinel errors for the adapter package.
var (
	// ErrUnsupported indicates a linter lacks an optional capability.
	ErrUnsupported = errors.New("capability not supported")

	// ErrUnknownAdapter indicates no implementation is registered under a name.
	ErrUnknownAdapter = errors.New("unknown adapter")

	// ErrDuplicateAdapter indicates a second registration under the same name.
	ErrDuplicateAdapter = errors.New("adapter already registered")

	// ErrParseOutput indicates the tool's report could not be parsed.
	ErrParseOutput = errors.New("failed to parse linter output")
)

// CapabilityError reports a missing optional capability.
//
// Thread Safety: Immutable after creation.
type CapabilityError struct {
	Linter     string
	Capability Capability

	// Function is the contract operation that is missing.
	Function string
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %v: %s (%s)", e.Linter, ErrUnsupported, e.Capability, e.Function)
}

// Unwrap returns ErrUnsupported.
func (e *CapabilityError) Unwrap() error {
	return ErrUnsupported
}

// ParseError wraps a malformed report from a specific linter.
type ParseError struct {
	Linter string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Linter, ErrParseOutput, e.Err)
}

// Unwrap returns the underlying error. errors.Is(err, ErrParseOutput) also holds.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParseOutput, e.Err}
}

// NewParseError creates a ParseError.
func NewParseError(linter string, err error) *ParseError {
	return &ParseError{Linter: linter, Err: err}
}

// =============================================================================
// CONTRACT
// =============================================================================

// Report is the captured output of one linter process.
type Report struct {
	Stdout   string
	Stderr   string
	ExitCode int

	// Path is the document the linter was asked about.
	Path string

	// Input is the buffer text sent to the tool, for reports that locate
	// findings by character offset.
	Input string
}

// Linter parses a tool's native report into offenses.
//
// Offenses must tolerate empty or malformed output: it returns no offenses
// and, for malformed output, a *ParseError describing the problem. Positions
// are converted to zero-based coordinates. Each implementation documents
// whether it drops findings that belong to other files.
type Linter interface {
	Name() string
	Offenses(report Report) ([]offense.Offense, error)
}

// FixInput is the output of a fix-mode run.
type FixInput struct {
	// Input is the buffer content that was fed to the tool.
	Input  string
	Stdout string
	Stderr string
	Path   string
}

// FixOutputParser returns the corrected content in full. When the output
// cannot be understood it returns Input unchanged.
type FixOutputParser interface {
	ParseFixOutput(in FixInput) string
}

// Line is one line of a document.
type Line struct {
	// Number is the zero-based line number of the offense the pragma is for.
	Number int
	Text   string
}

// PragmaInput is the request passed to pragma providers.
type PragmaInput struct {
	// Line is the target line whose text is replaced.
	Line Line

	// Code is the rule to suppress.
	Code string

	// Indent is the leading whitespace of the offending line.
	Indent string
}

// FilePragmaProvider adds or merges a file-wide suppression into the first line.
type FilePragmaProvider interface {
	IgnoreFilePragma(in PragmaInput) (string, bool)
}

// FilePragmaBlock is implemented by file pragma providers whose existing
// pragma can span several leading lines. FilePragmaLines returns how many of
// the document's first lines belong to it. Those lines reach
// IgnoreFilePragma joined by "\n" in Line.Text and are replaced as a unit.
type FilePragmaBlock interface {
	FilePragmaLines(lines []string) int
}

// LinePragmaProvider adds or merges a suppression on the line preceding the
// offense. When Line.Number is 0 the target is the offending line itself and
// the pragma goes before it.
type LinePragmaProvider interface {
	IgnoreLinePragma(in PragmaInput) (string, bool)
}

// EolPragmaProvider appends or merges a suppression at the end of the
// offending line.
type EolPragmaProvider interface {
	IgnoreEolPragma(in PragmaInput) (string, bool)
}

// Supports reports whether l implements the operation behind c. Capabilities
// that need no adapter code (fix-inline) always report true.
func Supports(l Linter, c Capability) bool {
	switch c {
	case CapFixAll, CapFixCategory, CapFixOne:
		_, ok := l.(FixOutputParser)
		return ok
	case CapIgnoreFile:
		_, ok := l.(FilePragmaProvider)
		return ok
	case CapIgnoreLine:
		_, ok := l.(LinePragmaProvider)
		return ok
	case CapIgnoreEol:
		_, ok := l.(EolPragmaProvider)
		return ok
	case CapFixInline:
		return true
	default:
		return false
	}
}

// FunctionFor names the contract operation that backs a capability.
func FunctionFor(c Capability) string {
	switch c {
	case CapFixAll, CapFixCategory, CapFixOne:
		return "ParseFixOutput"
	case CapIgnoreFile:
		return "IgnoreFilePragma"
	case CapIgnoreLine:
		return "IgnoreLinePragma"
	case CapIgnoreEol:
		return "IgnoreEolPragma"
	default:
		return ""
	}
}
