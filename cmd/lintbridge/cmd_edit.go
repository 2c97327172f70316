// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/lintbridge/pkg/ux"
	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

type editFlags struct {
	language    string
	linter      string
	code        string
	kind        string
	write       bool
	interactive bool
}

func (f *editFlags) register(cmd *cobra.Command, defaultKind, kindHelp string) {
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "language identifier (default guessed from the name)")
	cmd.Flags().StringVar(&f.linter, "linter", "", "only offenses from this linter")
	cmd.Flags().StringVar(&f.code, "code", "", "only offenses with this rule code")
	cmd.Flags().StringVar(&f.kind, "kind", defaultKind, kindHelp)
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, "write the result back to the file")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "show the diff and ask before writing")
}

// matches reports whether o passes the --linter and --code filters.
func (f *editFlags) matches(o offense.Offense) bool {
	return (f.linter == "" || o.Source == f.linter) && (f.code == "" || o.Code == f.code)
}

// =============================================================================
// FIX
// =============================================================================

func newFixCmd(flags *globalFlags) *cobra.Command {
	ef := &editFlags{}
	var inline bool
	cmd := &cobra.Command{
		Use:   "fix <file>",
		Short: "Fix offenses by running linters in fix mode",
		Long: `Fix runs linters in fix mode over the file and prints the resulting diff.
Pass --write to apply it or --interactive to confirm first.

fix-all fixes every offense a linter can fix. fix-one and fix-category
need --code and fix the first matching offense, or its whole category.
--inline applies the replacements linters embed in their reports without
running them again.`,
		Example: `  lintbridge fix --write app.rb
  lintbridge fix --linter rubocop --kind fix-one --code Style/StringLiterals -i app.rb
  lintbridge fix --inline --linter eslint src/index.js`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, flags, appOptions{})
			if err != nil {
				return usageError(err)
			}
			defer a.Close()

			doc, err := loadDocument(args[0], ef.language)
			if err != nil {
				return usageError(err)
			}

			var text string
			if inline {
				text, err = inlineFixes(cmd.Context(), a, doc, ef)
			} else {
				text, err = processFixes(cmd.Context(), a, doc, ef)
			}
			if err != nil {
				return usageError(err)
			}
			return commitEdit(a, doc, text, ef)
		},
	}
	ef.register(cmd, string(adapter.CapFixAll), "fix-all, fix-one or fix-category")
	cmd.Flags().BoolVar(&inline, "inline", false, "apply inline fixes from the lint report")
	return cmd
}

// processFixes runs the selected fix for each target linter in turn,
// feeding each the previous one's output.
func processFixes(ctx context.Context, a *app, doc textdoc.Document, ef *editFlags) (string, error) {
	kind := adapter.Capability(ef.kind)
	if !kind.IsFix() || kind == adapter.CapFixInline {
		return "", fmt.Errorf("--kind must be fix-all, fix-one or fix-category, got %q", ef.kind)
	}
	if kind != adapter.CapFixAll && ef.code == "" {
		return "", fmt.Errorf("--code is required for %s", kind)
	}

	var targets []offense.Offense
	if kind == adapter.CapFixAll && ef.linter != "" && ef.code == "" {
		targets = []offense.Offense{{Source: ef.linter}}
	} else {
		candidates, err := lintCandidates(ctx, a, doc, ef.matches)
		if err != nil {
			return "", err
		}
		if kind == adapter.CapFixAll {
			targets = firstPerLinter(candidates)
		} else if len(candidates) > 0 {
			targets = candidates[:1]
		}
	}
	if len(targets) == 0 {
		return doc.Text, nil
	}

	current := doc
	for _, target := range targets {
		var edits []textdoc.TextEdit
		err := a.busy(fmt.Sprintf("%s %s", target.Source, kind), func() error {
			var err error
			edits, err = a.orch.Fix(ctx, current, target, kind)
			return err
		})
		if err != nil {
			if len(targets) > 1 && errors.Is(err, adapter.ErrUnsupported) {
				continue
			}
			return "", err
		}
		text, err := textdoc.Apply(current, edits...)
		if err != nil {
			return "", err
		}
		current = current.WithText(text)
	}
	return current.Text, nil
}

// inlineFixes applies the embedded fixes of matching offenses. Fixes that
// overlap a later one in the document are skipped.
func inlineFixes(ctx context.Context, a *app, doc textdoc.Document, ef *editFlags) (string, error) {
	candidates, err := lintCandidates(ctx, a, doc, func(o offense.Offense) bool {
		return o.InlineFix != nil && ef.matches(o)
	})
	if err != nil {
		return "", err
	}

	var edits []textdoc.TextEdit
	for _, o := range candidates {
		e, err := a.orch.InlineFix(doc, o)
		if err != nil {
			a.logger.Warn("Skipping inline fix",
				slog.String("linter", o.Source),
				slog.String("code", o.Code),
				slog.String("error", err.Error()))
			continue
		}
		edits = append(edits, e...)
	}
	if len(edits) == 0 {
		return doc.Text, nil
	}
	return textdoc.Apply(doc, nonOverlapping(edits)...)
}

// nonOverlapping keeps, from the end of the document backwards, every
// edit that ends before the previously kept one starts.
func nonOverlapping(edits []textdoc.TextEdit) []textdoc.TextEdit {
	sorted := slices.Clone(edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].Range.Start.Before(sorted[i].Range.Start)
	})
	kept := make([]textdoc.TextEdit, 0, len(sorted))
	for _, e := range sorted {
		if len(kept) > 0 && kept[len(kept)-1].Range.Start.Before(e.Range.End) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func firstPerLinter(offenses []offense.Offense) []offense.Offense {
	seen := make(map[string]bool)
	var out []offense.Offense
	for _, o := range offenses {
		if !seen[o.Source] {
			seen[o.Source] = true
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// =============================================================================
// IGNORE
// =============================================================================

func newIgnoreCmd(flags *globalFlags) *cobra.Command {
	ef := &editFlags{}
	var line int
	cmd := &cobra.Command{
		Use:   "ignore <file>",
		Short: "Suppress an offense with the linter's pragma comment",
		Long: `Ignore inserts the suppression pragma for the first offense on --line
that matches --linter and --code. ignore-eol appends to the offending
line, ignore-line adds a line before it and ignore-file adds a file-level
pragma at the top.`,
		Example: `  lintbridge ignore --line 12 --code Style/Documentation -w app.rb
  lintbridge ignore --line 3 --kind ignore-file --linter shellcheck build.sh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if line < 1 {
				return usageError(fmt.Errorf("--line must be at least 1"))
			}
			kind := adapter.Capability(ef.kind)
			if !kind.IsIgnore() {
				return usageError(fmt.Errorf("--kind must be ignore-eol, ignore-line or ignore-file, got %q", ef.kind))
			}

			a, err := newApp(cmd.Context(), cmd, flags, appOptions{})
			if err != nil {
				return usageError(err)
			}
			defer a.Close()

			doc, err := loadDocument(args[0], ef.language)
			if err != nil {
				return usageError(err)
			}
			candidates, err := lintCandidates(cmd.Context(), a, doc, func(o offense.Offense) bool {
				return o.Location.LineStart == line-1 && ef.matches(o)
			})
			if err != nil {
				return usageError(err)
			}
			if len(candidates) == 0 {
				return usageError(fmt.Errorf("no matching offense on line %d", line))
			}

			edits, err := a.orch.Ignore(cmd.Context(), doc, candidates[0], kind)
			if err != nil {
				return usageError(err)
			}
			text, err := textdoc.Apply(doc, edits...)
			if err != nil {
				return usageError(err)
			}
			return commitEdit(a, doc, text, ef)
		},
	}
	ef.register(cmd, string(adapter.CapIgnoreEol), "ignore-eol, ignore-line or ignore-file")
	cmd.Flags().IntVar(&line, "line", 0, "one-based line of the offense")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}

// =============================================================================
// SHARED
// =============================================================================

// lintCandidates lints doc and returns the offenses accepted by keep.
func lintCandidates(ctx context.Context, a *app, doc textdoc.Document, keep func(offense.Offense) bool) ([]offense.Offense, error) {
	reports, err := lintDocuments(ctx, a, []textdoc.Document{doc}, false)
	if err != nil {
		return nil, err
	}
	var out []offense.Offense
	for _, o := range reports[0].Offenses {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

// busy runs fn behind a spinner when a person is watching a text report.
func (a *app) busy(message string, fn func() error) error {
	if a.flags.format == formatJSON || !a.interactive() {
		return fn()
	}
	return a.printer.WithSpinner(message, fn)
}

// editResult is the JSON output of fix and ignore.
type editResult struct {
	Path    string `json:"path"`
	Diff    string `json:"diff"`
	Changed bool   `json:"changed"`
	Written bool   `json:"written"`
}

// commitEdit shows the diff from doc to text and writes it when asked.
func commitEdit(a *app, doc textdoc.Document, text string, ef *editFlags) error {
	unified, err := textdoc.UnifiedDiff(doc, text)
	if err != nil {
		return err
	}
	res := editResult{Path: doc.Path, Diff: unified, Changed: unified != ""}

	if a.flags.format == formatJSON {
		if res.Changed && ef.write {
			if err := writeFile(doc.Path, text); err != nil {
				return err
			}
			res.Written = true
		}
		return writeJSON(a.out, res)
	}

	if !res.Changed {
		a.printer.Success("No changes")
		return nil
	}
	a.printer.Diff(unified)

	write := ef.write
	if ef.interactive {
		if !a.interactive() {
			return usageError(ux.ErrNotInteractive)
		}
		ok, err := a.printer.Confirm(fmt.Sprintf("Apply changes to %s?", displayPath(doc.Path)), "")
		if err != nil {
			return err
		}
		write = ok
	}
	if !write {
		a.printer.Muted("Not written. Pass --write to apply.")
		return nil
	}
	if err := writeFile(doc.Path, text); err != nil {
		return err
	}
	a.printer.Success("Updated " + displayPath(doc.Path))
	return nil
}

// writeFile replaces path's content, keeping its permissions.
func writeFile(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(text), mode)
}

// displayPath shortens path relative to the working directory.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && len(rel) < len(path) {
		return rel
	}
	return path
}
