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
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrOverlappingEdits is returned when two edits touch the same text.
var ErrOverlappingEdits = errors.New("overlapping text edits")

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("invalid range")

// TextEdit replaces the text in Range with NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// ReplaceAll returns the edit replacing the whole document with text.
func ReplaceAll(d Document, text string) TextEdit {
	return TextEdit{Range: d.FullRange(), NewText: text}
}

// ReplaceLine returns the edit replacing line n's text with text. The
// line terminator is kept.
func ReplaceLine(d Document, n int, text string) TextEdit {
	return ReplaceLines(d, n, n, text)
}

// ReplaceLines returns the edit replacing lines from through to with text.
// The terminator of line to is kept.
func ReplaceLines(d Document, from, to int, text string) TextEdit {
	return TextEdit{
		Range:   Range{Start: d.LineRange(from).Start, End: d.LineRange(to).End},
		NewText: text,
	}
}

// Apply returns the text of d after applying edits.
//
// Description:
//
//	Edits are addressed against the original text and applied from the
//	last to the first so earlier offsets stay valid. Newlines inside
//	NewText are written using the document's line break style.
//
// Inputs:
//
//	d - The document to edit
//	edits - Non-overlapping edits in any order
//
// Outputs:
//
//	string - The edited text
//	error - ErrInvalidRange or ErrOverlappingEdits
func Apply(d Document, edits ...TextEdit) (string, error) {
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	for _, e := range sorted {
		if e.Range.End.Before(e.Range.Start) {
			return "", fmt.Errorf("%w: %+v", ErrInvalidRange, e.Range)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].Range.Start.Before(sorted[i].Range.Start)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Range.Start.Before(sorted[i].Range.End) {
			return "", ErrOverlappingEdits
		}
	}

	eol := d.EOL()
	text := d.Text
	for _, e := range sorted {
		start := d.byteOffset(e.Range.Start)
		end := d.byteOffset(e.Range.End)
		newText := e.NewText
		if eol != "\n" {
			newText = strings.ReplaceAll(strings.ReplaceAll(newText, "\r\n", "\n"), "\n", eol)
		}
		text = text[:start] + newText + text[end:]
	}
	return text, nil
}
