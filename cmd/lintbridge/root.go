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
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/lintbridge/pkg/logging"
	"github.com/AleutianAI/lintbridge/pkg/telemetry"
	"github.com/AleutianAI/lintbridge/pkg/ux"
	"github.com/AleutianAI/lintbridge/services/lint/cache"
	"github.com/AleutianAI/lintbridge/services/lint/config"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
)

// Output formats of the --format flag.
const (
	formatText = "text"
	formatJSON = "json"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	debug      bool
	logLevel   string
	logDir     string
	logJSON    bool
	output     string
	format     string
	trace      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "lintbridge",
		Short: "Run external linters and normalize their findings",
		Long: `lintbridge runs the linters configured for a file's language, merges
their findings into one diagnostic set and produces fix and suppression
edits. It also serves the pipeline over HTTP for editor integrations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "user configuration file (default $LINTBRIDGE_CONFIG or ~/.lintbridge/config.yaml)")
	pf.BoolVar(&flags.debug, "debug", false, "debug logging and $debug in command templates")
	pf.StringVar(&flags.logLevel, "log-level", "error", "console log level: debug, info, warn, error")
	pf.StringVar(&flags.logDir, "log-dir", "", "also write JSON logs to this directory")
	pf.BoolVar(&flags.logJSON, "log-json", false, "JSON console logs")
	pf.StringVar(&flags.output, "output", "", "output style: rich, minimal, machine (default detected)")
	pf.StringVar(&flags.format, "format", formatText, "report format: text or json")
	pf.BoolVar(&flags.trace, "trace", false, "print OpenTelemetry spans to stderr")

	root.AddCommand(
		newLintCmd(flags),
		newFixCmd(flags),
		newIgnoreCmd(flags),
		newWatchCmd(flags),
		newServeCmd(flags),
		newLintersCmd(flags),
		newCacheCmd(flags),
		newVersionCmd(),
	)
	return root
}

// =============================================================================
// APP
// =============================================================================

// app holds the services a command runs against.
type app struct {
	flags    *globalFlags
	logger   *logging.Logger
	cfg      *config.Config
	store    cache.Store
	orch     *pipeline.Orchestrator
	printer  *ux.Printer
	out      io.Writer
	shutdown func(context.Context) error

	// metricExporter is the exporter telemetry was started with.
	metricExporter string
}

// appOptions selects optional services.
type appOptions struct {
	// metrics enables the metric exporter from the environment.
	metrics bool

	// store opens the cache even when caching is disabled.
	store bool
}

// newApp loads configuration and builds the orchestrator.
//
// Description:
//
//	Sets up logging, loads the layered configuration, installs telemetry,
//	opens the result cache and builds the orchestrator with the process
//	working directory as workspace root. A cache that cannot be opened
//	is logged and linting continues without it.
//
// Inputs:
//
//	ctx - Context for telemetry exporters
//	cmd - The running command; its writers receive all output
//	flags - Persistent flags
//	opts - Optional services
//
// Outputs:
//
//	*app - Ready for use. Call Close when done.
//	error - Invalid flags or configuration
func newApp(ctx context.Context, cmd *cobra.Command, flags *globalFlags, opts appOptions) (*app, error) {
	if flags.format != formatText && flags.format != formatJSON {
		return nil, fmt.Errorf("unknown format %q", flags.format)
	}

	level, err := logging.ParseLevel(flags.logLevel)
	if err != nil {
		return nil, err
	}
	if flags.debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  flags.logDir,
		Service: "lintbridge",
		JSON:    flags.logJSON,
		Output:  cmd.ErrOrStderr(),
	})

	cfg, err := config.Load(config.LoadOptions{
		UserPath:    flags.configPath,
		HostVersion: version,
		Logger:      logger.Slog(),
	})
	if err != nil {
		logger.Close()
		return nil, err
	}
	if flags.debug {
		cfg.Settings.Debug = true
	}
	if cfg.Settings.Debug {
		logger.SetLevel(logging.LevelDebug)
	}

	a := &app{
		flags:   flags,
		logger:  logger,
		cfg:     cfg,
		out:     cmd.OutOrStdout(),
		printer: ux.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputLevel(cmd, flags)),
	}

	telCfg := telemetry.DefaultConfig(version)
	telCfg.Writer = cmd.ErrOrStderr()
	if flags.trace {
		telCfg.TraceExporter = telemetry.ExporterStdout
	}
	if !opts.metrics {
		telCfg.MetricExporter = telemetry.ExporterNone
	}
	a.metricExporter = telCfg.MetricExporter
	a.shutdown, err = telemetry.Init(ctx, telCfg)
	if err != nil {
		logger.Close()
		return nil, err
	}

	if cfg.Settings.Cache || opts.store {
		store, err := cache.Open(cache.Options{
			Backend: cfg.Settings.CacheBackend,
			Dir:     cfg.Settings.CacheDir,
			Logger:  logger.Slog(),
		})
		if err != nil {
			logger.Warn("Result cache unavailable",
				slog.String("backend", cfg.Settings.CacheBackend),
				slog.String("error", err.Error()))
		} else {
			a.store = store
		}
	}

	orchOpts := []pipeline.Option{pipeline.WithLogger(logger.Slog())}
	if a.store != nil && cfg.Settings.Cache {
		orchOpts = append(orchOpts, pipeline.WithStore(a.store))
	}
	if wd, err := os.Getwd(); err == nil {
		orchOpts = append(orchOpts, pipeline.WithWorkspaceRoots(wd))
	}
	a.orch, err = pipeline.NewOrchestrator(cfg, orchOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the cache, flushes telemetry and closes the log file.
func (a *app) Close() {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(context.Background()))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("Shutdown incomplete", slog.String("error", err.Error()))
	}
	a.logger.Close()
}

// outputLevel resolves --output, detecting a terminal on stdout.
func outputLevel(cmd *cobra.Command, flags *globalFlags) ux.Level {
	if flags.output != "" {
		return ux.ParseLevel(flags.output)
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return ux.DetectLevel(f)
	}
	return ux.LevelMachine
}

// interactive reports whether prompts and live views can be shown.
func (a *app) interactive() bool {
	f, ok := a.out.(*os.File)
	return ok && a.printer.Level() != ux.LevelMachine && ux.IsTerminal(f) && ux.IsTerminal(os.Stdin)
}
