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

	"github.com/sourcegraph/go-diff/diff"
)

const (
	// diffContext is the number of unchanged lines around each hunk.
	diffContext = 3

	// maxDiffCells bounds the LCS table. Larger changes render as one
	// replacement hunk.
	maxDiffCells = 4_000_000
)

type diffOp struct {
	kind byte // ' ', '-' or '+'
	text string
}

// Diff computes the line diff between the document and newText.
//
// Description:
//
//	Returns a FileDiff whose hunks carry diffContext lines of context.
//	Both sides are compared line by line with terminators stripped, so a
//	change of line endings alone produces no hunks.
//
// Inputs:
//
//	d - The original document
//	newText - The replacement text
//
// Outputs:
//
//	*diff.FileDiff - Named a/<path> and b/<path>. Hunks is empty when the
//	                 texts are equal line by line.
func Diff(d Document, newText string) *diff.FileDiff {
	name := d.Path
	if name == "" {
		name = d.URI
	}
	fd := &diff.FileDiff{
		OrigName: "a/" + strings.TrimPrefix(name, "/"),
		NewName:  "b/" + strings.TrimPrefix(name, "/"),
	}
	ops := lineOps(splitLines(d.Text), splitLines(newText))
	fd.Hunks = hunks(ops)
	return fd
}

// UnifiedDiff renders Diff in unified format. It returns "" when nothing
// changed.
func UnifiedDiff(d Document, newText string) (string, error) {
	fd := Diff(d, newText)
	if len(fd.Hunks) == 0 {
		return "", nil
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// lineOps returns the edit script turning a into b.
func lineOps(a, b []string) []diffOp {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	ops := make([]diffOp, 0, len(a)+len(b))
	for _, line := range a[:prefix] {
		ops = append(ops, diffOp{' ', line})
	}
	ops = append(ops, middleOps(a[prefix:len(a)-suffix], b[prefix:len(b)-suffix])...)
	for _, line := range a[len(a)-suffix:] {
		ops = append(ops, diffOp{' ', line})
	}
	return ops
}

func middleOps(a, b []string) []diffOp {
	n, m := len(a), len(b)
	if n*m > maxDiffCells {
		ops := make([]diffOp, 0, n+m)
		for _, line := range a {
			ops = append(ops, diffOp{'-', line})
		}
		for _, line := range b {
			ops = append(ops, diffOp{'+', line})
		}
		return ops
	}

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int32, n+1)
	for i := range lcs {
		lcs[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]diffOp, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, diffOp{' ', a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, diffOp{'-', a[i]})
			i++
		default:
			ops = append(ops, diffOp{'+', b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, diffOp{'-', a[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, diffOp{'+', b[j]})
	}
	return ops
}

// hunks groups ops into hunks with diffContext lines of context.
func hunks(ops []diffOp) []*diff.Hunk {
	// origBefore[k] and newBefore[k] count lines of each side in ops[:k].
	origBefore := make([]int32, len(ops)+1)
	newBefore := make([]int32, len(ops)+1)
	for k, op := range ops {
		origBefore[k+1] = origBefore[k]
		newBefore[k+1] = newBefore[k]
		if op.kind != '+' {
			origBefore[k+1]++
		}
		if op.kind != '-' {
			newBefore[k+1]++
		}
	}

	var out []*diff.Hunk
	k := 0
	for k < len(ops) {
		if ops[k].kind == ' ' {
			k++
			continue
		}
		start := max(0, k-diffContext)
		end := k
		// Extend while the next change is within 2*diffContext lines.
		for end < len(ops) {
			if ops[end].kind != ' ' {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].kind == ' ' {
				run++
			}
			if run == len(ops) || run-end > 2*diffContext {
				end = min(len(ops), end+diffContext)
				break
			}
			end = run
		}
		out = append(out, newHunk(ops, start, end, origBefore, newBefore))
		k = end
	}
	return out
}

func newHunk(ops []diffOp, start, end int, origBefore, newBefore []int32) *diff.Hunk {
	var body strings.Builder
	for _, op := range ops[start:end] {
		body.WriteByte(op.kind)
		body.WriteString(op.text)
		body.WriteByte('\n')
	}
	h := &diff.Hunk{
		OrigLines: origBefore[end] - origBefore[start],
		NewLines:  newBefore[end] - newBefore[start],
		Body:      []byte(body.String()),
	}
	// A side without lines starts at the line before the hunk.
	h.OrigStartLine = origBefore[start]
	if h.OrigLines > 0 {
		h.OrigStartLine++
	}
	h.NewStartLine = newBefore[start]
	if h.NewLines > 0 {
		h.NewStartLine++
	}
	return h
}
