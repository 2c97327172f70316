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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Lines(t *testing.T) {
	d := Document{Text: "a\r\nbé\r\n"}
	assert.Equal(t, []string{"a", "bé", ""}, d.Lines())
	assert.Equal(t, 3, d.LineCount())
	assert.Equal(t, "\r\n", d.EOL())

	line, ok := d.LineAt(1)
	require.True(t, ok)
	assert.Equal(t, "bé", line)
	_, ok = d.LineAt(3)
	assert.False(t, ok)

	assert.Equal(t, Range{Start: Position{1, 0}, End: Position{1, 2}}, d.LineRange(1))
	assert.Equal(t, Range{End: Position{2, 0}}, d.FullRange())
	assert.Equal(t, []string{""}, Document{}.Lines())
}

func TestDocument_PositionAt(t *testing.T) {
	d := Document{Text: "ab\nçd\n"}
	tests := []struct {
		offset int
		want   Position
	}{
		{-1, Position{0, 0}},
		{0, Position{0, 0}},
		{2, Position{0, 2}},
		{3, Position{1, 0}},
		{4, Position{1, 1}},
		{6, Position{2, 0}},
		{100, Position{2, 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.PositionAt(tt.offset), "offset %d", tt.offset)
	}
}

func TestDocument_PositionAtUTF16(t *testing.T) {
	d := Document{Text: "a😀b\r\nc"}
	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{1, Position{0, 1}},
		{2, Position{0, 1}},
		{3, Position{0, 2}},
		{4, Position{0, 3}},
		{6, Position{1, 0}},
		{7, Position{1, 1}},
		{100, Position{1, 1}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.PositionAtUTF16(tt.offset), "offset %d", tt.offset)
	}
}

func TestURIFromPath(t *testing.T) {
	assert.Equal(t, "", URIFromPath(""))
	assert.True(t, strings.HasPrefix(URIFromPath("/tmp/a b.rb"), "file:///tmp/a%20b.rb"))

	d := New("/tmp/x.rb", "ruby", "puts 1")
	assert.Equal(t, "file:///tmp/x.rb", d.URI)
	assert.Equal(t, "ruby", d.LanguageID)
}

func TestApply(t *testing.T) {
	d := Document{Text: "one\ntwo\nthree"}

	tests := []struct {
		name  string
		edits []TextEdit
		want  string
	}{
		{"no edits", nil, "one\ntwo\nthree"},
		{"replace line", []TextEdit{ReplaceLine(d, 1, "TWO")}, "one\nTWO\nthree"},
		{"insert line via newline", []TextEdit{ReplaceLine(d, 0, "# pragma\none")}, "# pragma\none\ntwo\nthree"},
		{"replace lines", []TextEdit{ReplaceLines(d, 0, 1, "ONE")}, "ONE\nthree"},
		{"replace all", []TextEdit{ReplaceAll(d, "x")}, "x"},
		{
			"several edits in any order",
			[]TextEdit{
				{Range: Range{Start: Position{0, 0}, End: Position{0, 1}}, NewText: "O"},
				{Range: Range{Start: Position{2, 3}, End: Position{2, 5}}, NewText: "EE"},
			},
			"One\ntwo\nthrEE",
		},
		{"column past line end clamps", []TextEdit{{Range: Range{Start: Position{0, 3}, End: Position{0, 99}}, NewText: "!"}}, "one!\ntwo\nthree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(d, tt.edits...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_CRLF(t *testing.T) {
	d := Document{Text: "a\r\nb\r\n"}
	got, err := Apply(d, ReplaceLine(d, 1, "# x\nb"))
	require.NoError(t, err)
	assert.Equal(t, "a\r\n# x\r\nb\r\n", got)
}

func TestApply_Errors(t *testing.T) {
	d := Document{Text: "abcdef"}

	_, err := Apply(d,
		TextEdit{Range: Range{Start: Position{0, 0}, End: Position{0, 3}}},
		TextEdit{Range: Range{Start: Position{0, 2}, End: Position{0, 4}}},
	)
	assert.ErrorIs(t, err, ErrOverlappingEdits)

	_, err = Apply(d, TextEdit{Range: Range{Start: Position{0, 3}, End: Position{0, 1}}})
	assert.ErrorIs(t, err, ErrInvalidRange)
}
