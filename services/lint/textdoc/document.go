// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package textdoc

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// =============================================================================
// POSITIONS
// =============================================================================

// Position is a zero-based line and rune column.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p comes strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Range is a half-open span of positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is an immutable snapshot of an editor buffer.
type Document struct {
	// URI identifies the document. Diagnostics are keyed by it.
	URI string `json:"uri"`

	// Path is the file system path, empty for unsaved buffers.
	Path string `json:"path,omitempty"`

	// LanguageID is the editor language identifier, e.g. "ruby".
	LanguageID string `json:"languageId"`

	// Text is the full buffer content.
	Text string `json:"text"`
}

// New creates a document for a file path. The URI is derived from the
// absolute path.
func New(path, languageID, text string) Document {
	return Document{
		URI:        URIFromPath(path),
		Path:       path,
		LanguageID: languageID,
		Text:       text,
	}
}

// URIFromPath returns the file URI for path.
func URIFromPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String()
}

// WithText returns a copy of d holding text.
func (d Document) WithText(text string) Document {
	d.Text = text
	return d
}

// EOL returns "\r\n" when the document uses CRLF line breaks, otherwise "\n".
func (d Document) EOL() string {
	if strings.Contains(d.Text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Lines returns the document's lines without line terminators. An empty
// document has one empty line.
func (d Document) Lines() []string {
	lines := strings.Split(d.Text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// LineCount returns the number of lines.
func (d Document) LineCount() int {
	return strings.Count(d.Text, "\n") + 1
}

// LineAt returns line n, or false when n is out of range.
func (d Document) LineAt(n int) (string, bool) {
	lines := d.Lines()
	if n < 0 || n >= len(lines) {
		return "", false
	}
	return lines[n], true
}

// LineRange returns the range covering line n's text, excluding its
// terminator.
func (d Document) LineRange(n int) Range {
	text, _ := d.LineAt(n)
	return Range{
		Start: Position{Line: n},
		End:   Position{Line: n, Character: utf8.RuneCountInString(text)},
	}
}

// FullRange returns the range covering the whole document.
func (d Document) FullRange() Range {
	last := d.LineCount() - 1
	return Range{End: d.LineRange(last).End}
}

// PositionAt converts a rune offset into a position. Offsets past the end
// clamp to the end of the document.
func (d Document) PositionAt(offset int) Position {
	var pos Position
	if offset <= 0 {
		return pos
	}
	seen := 0
	for _, r := range d.Text {
		if seen == offset {
			return pos
		}
		seen++
		switch r {
		case '\n':
			pos.Line++
			pos.Character = 0
		case '\r':
			// Part of the line terminator.
		default:
			pos.Character++
		}
	}
	return pos
}

// PositionAtUTF16 converts an offset counted in UTF-16 code units, as
// JavaScript tools report them, into a position. A rune outside the Basic
// Multilingual Plane spans two units; an offset between them resolves to
// the start of the rune. Offsets past the end clamp to the end of the
// document.
func (d Document) PositionAtUTF16(offset int) Position {
	var pos Position
	seen := 0
	for _, r := range d.Text {
		width := utf16.RuneLen(r)
		if width < 1 {
			width = 1
		}
		if seen+width > offset {
			return pos
		}
		seen += width
		switch r {
		case '\n':
			pos.Line++
			pos.Character = 0
		case '\r':
		default:
			pos.Character++
		}
	}
	return pos
}

// byteOffset converts a position into a byte offset into d.Text. Columns
// past the end of a line clamp to the line end and lines past the end
// clamp to the document end.
func (d Document) byteOffset(p Position) int {
	start := 0
	for line := 0; line < p.Line; line++ {
		i := strings.IndexByte(d.Text[start:], '\n')
		if i < 0 {
			return len(d.Text)
		}
		start += i + 1
	}

	end := len(d.Text)
	if i := strings.IndexByte(d.Text[start:], '\n'); i >= 0 {
		end = start + i
	}
	if end > start && d.Text[end-1] == '\r' {
		end--
	}

	offset := start
	for col := 0; col < p.Character && offset < end; col++ {
		_, size := utf8.DecodeRuneInString(d.Text[offset:])
		offset += size
	}
	return offset
}
