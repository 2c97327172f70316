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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/lintbridge/pkg/telemetry"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
	"github.com/AleutianAI/lintbridge/services/lint/watch"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var (
		ignore      []string
		maxFileSize int64
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Lint files as they change on disk",
		Long: `Watch lints every file written under dir (default the working directory)
and prints its report. Changes are debounced by the delay setting and
stale runs for a file are discarded when discard_stale is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			root, err := filepath.Abs(root)
			if err != nil {
				return usageError(err)
			}
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				return usageError(fmt.Errorf("%s is not a directory", root))
			}

			a, err := newApp(cmd.Context(), cmd, flags, appOptions{metrics: metricsAddr != ""})
			if err != nil {
				return usageError(err)
			}
			defer a.Close()

			if metricsAddr != "" {
				stop, err := a.serveMetrics(metricsAddr)
				if err != nil {
					return err
				}
				defer stop()
			}
			return runWatch(cmd.Context(), a, root, ignore, maxFileSize)
		},
	}
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "extra base names or globs to skip")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", watch.DefaultMaxFileSize, "skip files larger than this many bytes")
	return cmd
}

// runWatch blocks until ctx is canceled.
func runWatch(ctx context.Context, a *app, root string, ignore []string, maxFileSize int64) error {
	trigger := watch.NewTrigger(a.orch,
		watch.WithLogger(a.logger.Slog()),
		watch.WithMaxFileSize(maxFileSize),
		watch.WithRunCallback(func(path string, run *pipeline.Run) {
			go a.reportRun(ctx, path, run)
		}),
	)

	opts := watch.DefaultOptions()
	opts.IgnorePatterns = append(opts.IgnorePatterns, ignore...)
	opts.Logger = a.logger.Slog()
	if a.cfg.Settings.Delay > 0 {
		opts.Debounce = a.cfg.Settings.Delay
	}

	w, err := watch.New(root, trigger.Handle, &opts)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	a.printer.Info(fmt.Sprintf("Watching %s (Ctrl+C to stop)", displayPath(root)))
	<-ctx.Done()
	return nil
}

// serveMetrics exposes /metrics on addr until the returned stop is called.
func (a *app) serveMetrics(addr string) (stop func(), err error) {
	if a.metricExporter != telemetry.ExporterPrometheus {
		return nil, fmt.Errorf("--metrics-addr needs the prometheus exporter, got %q", a.metricExporter)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("Metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	a.logger.Info("Serving metrics", slog.String("address", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// reportRun prints the report of a finished watch-triggered run. Runs
// superseded by a newer edit of the same file are not printed.
func (a *app) reportRun(ctx context.Context, path string, run *pipeline.Run) {
	results, err := run.Wait(ctx)
	if err != nil {
		return
	}
	if a.orch.Generation(run.URI) != run.Generation {
		return
	}
	doc := textdoc.Document{Path: path, URI: run.URI, LanguageID: textdoc.LanguageFor(path)}
	report := newFileReport(doc, results, a.orch.Collection().Offenses(run.URI))

	// One JSON object per line so consumers can stream the output.
	if a.flags.format == formatJSON {
		line, err := json.Marshal(report)
		if err != nil {
			a.logger.Warn("Failed to encode report", slog.String("error", err.Error()))
			return
		}
		a.printer.Line(string(line))
		return
	}
	if out := renderReport(a.printer.Level(), report); out != "" {
		a.printer.Line(strings.TrimSuffix(out, "\n"))
	} else {
		a.printer.Success(displayPath(path) + " is clean")
	}
}
