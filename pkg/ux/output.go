// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the lintbridge CLI.
package ux

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorInfo    = lipgloss.Color("#5DADE2")
	ColorMuted   = lipgloss.Color("#7F8C8D")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	Highlight lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style

	DiffAdd    lipgloss.Style
	DiffRemove lipgloss.Style
	DiffHunk   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Info:      lipgloss.NewStyle().Foreground(ColorInfo),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),

	DiffAdd:    lipgloss.NewStyle().Foreground(ColorSuccess),
	DiffRemove: lipgloss.NewStyle().Foreground(ColorError),
	DiffHunk:   lipgloss.NewStyle().Foreground(ColorTealPrimary),
}

// Icon is a status glyph.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconInfo    Icon = "ℹ"
	IconHint    Icon = "•"
	IconArrow   Icon = "→"
)

// Render returns the icon with its style.
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconInfo:
		return Styles.Info.Render(string(i))
	case IconHint:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// =============================================================================
// PRINTER
// =============================================================================

// Printer writes styled output at a fixed Level.
//
// Thread Safety: Safe for concurrent use; each call writes whole lines.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	level Level
}

// NewPrinter creates a printer. Warnings and errors in machine mode go
// to errOut; everything else goes to out.
func NewPrinter(out, errOut io.Writer, level Level) *Printer {
	return &Printer{out: out, err: errOut, level: level}
}

// Level returns the printer's level.
func (p *Printer) Level() Level {
	return p.level
}

// Out returns the primary writer.
func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) write(w io.Writer, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// Title prints a styled title. Silent in machine mode.
func (p *Printer) Title(text string) {
	switch p.level {
	case LevelMachine:
		return
	case LevelMinimal:
		p.write(p.out, "%s\n", text)
	default:
		p.write(p.out, "%s\n", Styles.Title.Render(text))
	}
}

// Success prints a success line.
func (p *Printer) Success(text string) {
	switch p.level {
	case LevelMachine:
		p.write(p.out, "OK: %s\n", text)
	case LevelMinimal:
		p.write(p.out, "%s %s\n", IconSuccess, text)
	default:
		p.write(p.out, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	switch p.level {
	case LevelMachine:
		p.write(p.err, "WARN: %s\n", text)
	case LevelMinimal:
		p.write(p.out, "%s %s\n", IconWarning, text)
	default:
		p.write(p.out, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error line.
func (p *Printer) Error(text string) {
	switch p.level {
	case LevelMachine:
		p.write(p.err, "ERROR: %s\n", text)
	case LevelMinimal:
		p.write(p.out, "%s %s\n", IconError, text)
	default:
		p.write(p.out, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational line.
func (p *Printer) Info(text string) {
	if p.level == LevelMachine {
		p.write(p.out, "%s\n", text)
		return
	}
	p.write(p.out, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints secondary text. Silent in machine mode.
func (p *Printer) Muted(text string) {
	if p.level == LevelMachine {
		return
	}
	p.write(p.out, "%s\n", Styles.Muted.Render(text))
}

// Line prints text as is.
func (p *Printer) Line(text string) {
	p.write(p.out, "%s\n", text)
}

// Box prints text in a rounded box.
func (p *Printer) Box(title, content string) {
	if p.level != LevelRich {
		p.write(p.out, "%s: %s\n", title, content)
		return
	}
	p.write(p.out, "%s\n", Styles.Box.Render(Styles.Title.Render(title)+"\n"+content))
}

// Diff prints a unified diff with added and removed lines colored.
func (p *Printer) Diff(unified string) {
	if p.level != LevelRich {
		p.write(p.out, "%s", unified)
		return
	}
	var b strings.Builder
	for _, line := range strings.SplitAfter(unified, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
			b.WriteString(Styles.Bold.Render(text))
		case strings.HasPrefix(text, "@@"):
			b.WriteString(Styles.DiffHunk.Render(text))
		case strings.HasPrefix(text, "+"):
			b.WriteString(Styles.DiffAdd.Render(text))
		case strings.HasPrefix(text, "-"):
			b.WriteString(Styles.DiffRemove.Render(text))
		default:
			b.WriteString(text)
		}
		b.WriteByte('\n')
	}
	p.write(p.out, "%s", b.String())
}

// Summary prints the closing count line of a lint report.
func (p *Printer) Summary(files, errors, warnings, others int) {
	switch p.level {
	case LevelMachine:
		p.write(p.out, "SUMMARY: files=%d errors=%d warnings=%d other=%d\n", files, errors, warnings, others)
	case LevelMinimal:
		p.write(p.out, "\n%d files, %d errors, %d warnings, %d other\n", files, errors, warnings, others)
	default:
		p.write(p.out, "\n%s %s  %s %s  %s %s  %s %s\n",
			Styles.Bold.Render(fmt.Sprint(files)), Styles.Muted.Render("files"),
			Styles.Error.Render(fmt.Sprint(errors)), Styles.Muted.Render("errors"),
			Styles.Warning.Render(fmt.Sprint(warnings)), Styles.Muted.Render("warnings"),
			Styles.Info.Render(fmt.Sprint(others)), Styles.Muted.Render("other"),
		)
	}
}
