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
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/lintbridge/pkg/ux"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

type lintFlags struct {
	language   string
	stdinPath  string
	failLevel  string
	noProgress bool
}

func newLintCmd(flags *globalFlags) *cobra.Command {
	lf := &lintFlags{}
	cmd := &cobra.Command{
		Use:   "lint [file...]",
		Short: "Lint files and print their offenses",
		Long: `Lint runs every enabled linter configured for each file's language and
prints the merged offenses. The exit status is 1 when an offense reaches
--fail-level.

With --stdin-path the text is read from standard input and linted as if
it were the named file.`,
		Example: `  lintbridge lint app/models/user.rb
  lintbridge lint --fail-level warning $(git diff --name-only)
  cat draft.md | lintbridge lint --stdin-path README.md --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && lf.stdinPath == "" {
				return usageError(fmt.Errorf("lint needs at least one file or --stdin-path"))
			}
			a, err := newApp(cmd.Context(), cmd, flags, appOptions{})
			if err != nil {
				return usageError(err)
			}
			defer a.Close()
			return runLint(cmd.Context(), a, cmd.InOrStdin(), args, lf)
		},
	}
	cmd.Flags().StringVarP(&lf.language, "language", "l", "", "language identifier for every file (default guessed from the name)")
	cmd.Flags().StringVar(&lf.stdinPath, "stdin-path", "", "lint standard input as this path")
	cmd.Flags().StringVar(&lf.failLevel, "fail-level", "error", "exit 1 at this severity or worse: error, warning, information, hint, none")
	cmd.Flags().BoolVar(&lf.noProgress, "no-progress", false, "disable the live progress view")
	return cmd
}

func runLint(ctx context.Context, a *app, stdin io.Reader, paths []string, lf *lintFlags) error {
	threshold, failing, err := failThreshold(lf.failLevel)
	if err != nil {
		return usageError(err)
	}

	docs := make([]textdoc.Document, 0, len(paths)+1)
	if lf.stdinPath != "" {
		text, err := io.ReadAll(stdin)
		if err != nil {
			return usageError(fmt.Errorf("read stdin: %w", err))
		}
		doc, err := newDocument(lf.stdinPath, lf.language, string(text))
		if err != nil {
			return usageError(err)
		}
		docs = append(docs, doc)
	}
	for _, path := range paths {
		doc, err := loadDocument(path, lf.language)
		if err != nil {
			return usageError(err)
		}
		docs = append(docs, doc)
	}

	reports, err := lintDocuments(ctx, a, docs, !lf.noProgress)
	if err != nil {
		return err
	}

	if a.flags.format == formatJSON {
		if err := writeJSON(a.out, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if text := renderReport(a.printer.Level(), r); text != "" {
				fmt.Fprint(a.out, text)
			}
		}
		errs, warnings, others := severityCounts(reports)
		a.printer.Summary(len(reports), errs, warnings, others)
	}

	if failing && reachesThreshold(reports, threshold) {
		return &ExitError{Code: ExitOffenses}
	}
	return nil
}

// lintDocuments lints docs concurrently and waits for every run.
//
// Description:
//
//	Runs at most Settings.Concurrency documents at once; each run
//	parallelizes its own linters. With more than one document and an
//	interactive terminal a live progress view is shown.
func lintDocuments(ctx context.Context, a *app, docs []textdoc.Document, progress bool) ([]fileReport, error) {
	reports := make([]fileReport, len(docs))

	var events chan ux.FileEvent
	uiDone := make(chan error, 1)
	if progress && len(docs) > 1 && a.interactive() {
		events = make(chan ux.FileEvent, len(docs)*2)
		paths := make([]string, len(docs))
		for i, d := range docs {
			paths[i] = d.Path
		}
		go func() {
			uiDone <- ux.RunProgress(a.out, "Linting", paths, events)
		}()
	}
	send := func(ev ux.FileEvent) {
		if events != nil {
			events <- ev
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Settings.Concurrency))
	for i, doc := range docs {
		g.Go(func() error {
			send(ux.FileEvent{Path: doc.Path, Status: ux.FileLinting})
			run := a.orch.Lint(gctx, doc)
			results, err := run.Wait(gctx)
			if err != nil {
				send(ux.FileEvent{Path: doc.Path, Status: ux.FileFailed})
				return err
			}
			reports[i] = newFileReport(doc, results, a.orch.Collection().Offenses(doc.URI))
			send(ux.FileEvent{
				Path:   doc.Path,
				Status: statusFor(results),
				Detail: fmt.Sprintf("%d offenses", len(reports[i].Offenses)),
			})
			return nil
		})
	}
	err := g.Wait()

	if events != nil {
		close(events)
		if uiErr := <-uiDone; uiErr != nil {
			a.logger.Debug("Progress view failed", slog.String("error", uiErr.Error()))
		}
	}
	return reports, err
}

func statusFor(results []pipeline.Result) ux.FileStatus {
	for _, r := range results {
		if r.Status == pipeline.StatusFailed {
			return ux.FileFailed
		}
	}
	return ux.FileDone
}

// loadDocument reads path into a document.
func loadDocument(path, language string) (textdoc.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return textdoc.Document{}, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return textdoc.Document{}, err
	}
	return newDocument(abs, language, string(content))
}

// newDocument builds a document for path, guessing the language when
// none is given.
func newDocument(path, language, text string) (textdoc.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return textdoc.Document{}, err
	}
	if language == "" {
		language = textdoc.LanguageFor(abs)
	}
	if language == "" {
		return textdoc.Document{}, fmt.Errorf("%s: unknown language, pass --language", path)
	}
	return textdoc.New(abs, language, text), nil
}
