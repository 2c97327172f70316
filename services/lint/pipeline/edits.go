// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/process"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// =============================================================================
// FIX
// =============================================================================

// Fix runs the offense's linter in fix mode and returns the edit that
// replaces the buffer with the corrected content.
//
// Description:
//
//	Rebuilds the linter's command with the fix flag for kind set and $code
//	set to the offense's rule, feeds the current buffer on stdin and hands
//	the output to the adapter's ParseFixOutput. The linter must declare
//	kind and its adapter must implement ParseFixOutput; otherwise one log
//	entry names the missing capability and no edit is produced.
//
// Inputs:
//
//	ctx - Context for the process
//	doc - The current buffer
//	off - The offense to fix. Its source selects the linter.
//	kind - CapFixAll, CapFixOne or CapFixCategory
//
// Outputs:
//
//	[]textdoc.TextEdit - One whole-buffer edit, or nil when the content is
//	                     unchanged
//	error - ErrInvalidKind, ErrUnknownLinter, *adapter.CapabilityError,
//	        ErrSkipped, or the process error
//
// Thread Safety: Safe for concurrent use.
func (o *Orchestrator) Fix(ctx context.Context, doc textdoc.Document, off offense.Offense, kind adapter.Capability) (edits []textdoc.TextEdit, err error) {
	if !kind.IsFix() {
		return nil, fmt.Errorf("%w: %q is not a fix", ErrInvalidKind, kind)
	}
	e, err := o.lookup(off.Source)
	if err != nil {
		return nil, err
	}

	ctx, span := startEditSpan(ctx, "Fix", off.Source, off.Code)
	defer span.End()
	defer func() {
		recordEditMetrics(ctx, string(kind), off.Source, err == nil)
	}()

	parser, ok := e.adapter.(adapter.FixOutputParser)
	if !ok || !e.config.Has(kind) {
		return nil, o.unsupported(off.Source, kind)
	}

	argv := o.expander.Expand(e.config.Request(o.fixContext(doc, e.config, kind, off.Code)))
	if len(argv) == 0 {
		o.logger.Warn("Fix command skipped",
			slog.String("linter", off.Source),
			slog.String("capability", string(kind)),
		)
		return nil, ErrSkipped
	}

	result, err := o.executor.Run(ctx, process.Invocation{
		Argv:  argv,
		Dir:   o.rootDir(doc.Path),
		Stdin: doc.Text,
	})
	if err != nil {
		o.logFailure("", off.Source, argv, err)
		return nil, err
	}

	fixed := safeFixOutput(parser, adapter.FixInput{
		Input:  doc.Text,
		Stdout: result.Stdout,
		Stderr: result.Stderr,
		Path:   doc.Path,
	})
	if fixed == doc.Text {
		o.logger.Debug("Fix produced no change",
			slog.String("linter", off.Source),
			slog.String("capability", string(kind)),
		)
		return nil, nil
	}
	return []textdoc.TextEdit{textdoc.ReplaceAll(doc, fixed)}, nil
}

// safeFixOutput calls the parser, returning the input when it panics.
func safeFixOutput(p adapter.FixOutputParser, in adapter.FixInput) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = in.Input
		}
	}()
	return p.ParseFixOutput(in)
}

// unsupported logs a missing capability and returns its error.
func (o *Orchestrator) unsupported(linter string, c adapter.Capability) error {
	err := &adapter.CapabilityError{
		Linter:     linter,
		Capability: c,
		Function:   adapter.FunctionFor(c),
	}
	o.logger.Warn("Capability not supported",
		slog.String("linter", linter),
		slog.String("capability", string(c)),
		slog.String("function", err.Function),
	)
	return err
}

// =============================================================================
// INLINE FIX
// =============================================================================

// InlineFix returns the edit carried by the offense itself. No process
// is started.
//
// Inputs:
//
//	doc - The buffer the offense was reported for
//	off - An offense with an inline fix
//
// Outputs:
//
//	[]textdoc.TextEdit - The single replacement
//	error - ErrNoInlineFix, or offense.ErrInvalidOffense for a malformed fix
func (o *Orchestrator) InlineFix(doc textdoc.Document, off offense.Offense) ([]textdoc.TextEdit, error) {
	fix := off.InlineFix
	if fix == nil {
		return nil, ErrNoInlineFix
	}
	if err := fix.Validate(); err != nil {
		o.logger.Warn("Invalid inline fix",
			slog.String("linter", off.Source),
			slog.String("code", off.Code),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	var r textdoc.Range
	if fix.Offset != nil {
		r = textdoc.Range{
			Start: doc.PositionAtUTF16(fix.Offset.Start),
			End:   doc.PositionAtUTF16(fix.Offset.End),
		}
	} else {
		r = textdoc.Range{
			Start: textdoc.Position{Line: fix.Span.Start.Line, Character: fix.Span.Start.Column},
			End:   textdoc.Position{Line: fix.Span.End.Line, Character: fix.Span.End.Column},
		}
	}
	recordEditMetrics(context.Background(), string(adapter.CapFixInline), off.Source, true)
	return []textdoc.TextEdit{{Range: r, NewText: fix.Replacement}}, nil
}

// =============================================================================
// IGNORE
// =============================================================================

// Ignore returns the edit inserting or merging a suppression pragma.
//
// Description:
//
//	Picks the target line for kind: the offending line for CapIgnoreEol,
//	the first line for CapIgnoreFile and the line before the offense for
//	CapIgnoreLine (the offending line itself when the offense is on the
//	first line). The adapter's pragma function returns the full
//	replacement text of the target line. A missing pragma function or an
//	empty answer is a logged no-op.
//
// Inputs:
//
//	ctx - Context for the span
//	doc - The current buffer
//	off - The offense to suppress. Its source selects the linter.
//	kind - CapIgnoreFile, CapIgnoreLine or CapIgnoreEol
//
// Outputs:
//
//	[]textdoc.TextEdit - One line replacement, or nil when the line
//	                     already carries the pragma
//	error - ErrInvalidKind, ErrUnknownLinter, *adapter.CapabilityError,
//	        ErrNoPragma, or offense.ErrInvalidOffense when the offense lies
//	        outside doc
//
// Thread Safety: Safe for concurrent use.
func (o *Orchestrator) Ignore(ctx context.Context, doc textdoc.Document, off offense.Offense, kind adapter.Capability) (edits []textdoc.TextEdit, err error) {
	if !kind.IsIgnore() {
		return nil, fmt.Errorf("%w: %q is not an ignore", ErrInvalidKind, kind)
	}
	e, err := o.lookup(off.Source)
	if err != nil {
		return nil, err
	}

	ctx, span := startEditSpan(ctx, "Ignore", off.Source, off.Code)
	defer span.End()
	defer func() {
		recordEditMetrics(ctx, string(kind), off.Source, err == nil)
	}()

	provide, ok := pragmaFunc(e.adapter, kind)
	if !ok {
		return nil, o.unsupported(off.Source, kind)
	}

	lineStart := off.Location.LineStart
	offending, ok := doc.LineAt(lineStart)
	if !ok {
		return nil, fmt.Errorf("%w: line %d is outside the document", offense.ErrInvalidOffense, lineStart)
	}

	target, number := lineStart, lineStart
	switch kind {
	case adapter.CapIgnoreFile:
		target, number = 0, 0
	case adapter.CapIgnoreLine:
		target = max(0, lineStart-1)
	}
	text, _ := doc.LineAt(target)

	// A file pragma may already span several leading lines.
	last := target
	if block, ok := e.adapter.(adapter.FilePragmaBlock); ok && kind == adapter.CapIgnoreFile {
		lines := doc.Lines()
		n := min(max(1, block.FilePragmaLines(lines)), len(lines))
		last = n - 1
		text = strings.Join(lines[:n], "\n")
	}

	replacement, ok := provide(adapter.PragmaInput{
		Line:   adapter.Line{Number: number, Text: text},
		Code:   off.Code,
		Indent: adapter.Indent(offending),
	})
	if !ok || replacement == "" {
		o.logger.Warn("No pragma produced",
			slog.String("linter", off.Source),
			slog.String("capability", string(kind)),
			slog.String("code", off.Code),
		)
		return nil, ErrNoPragma
	}
	if replacement == text {
		return nil, nil
	}
	return []textdoc.TextEdit{textdoc.ReplaceLines(doc, target, last, replacement)}, nil
}

// pragmaFunc returns the adapter's pragma function for kind.
func pragmaFunc(l adapter.Linter, kind adapter.Capability) (func(adapter.PragmaInput) (string, bool), bool) {
	switch kind {
	case adapter.CapIgnoreFile:
		if p, ok := l.(adapter.FilePragmaProvider); ok {
			return p.IgnoreFilePragma, true
		}
	case adapter.CapIgnoreLine:
		if p, ok := l.(adapter.LinePragmaProvider); ok {
			return p.IgnoreLinePragma, true
		}
	case adapter.CapIgnoreEol:
		if p, ok := l.(adapter.EolPragmaProvider); ok {
			return p.IgnoreEolPragma, true
		}
	}
	return nil, false
}
