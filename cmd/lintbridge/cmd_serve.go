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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/lintbridge/pkg/telemetry"
	"github.com/AleutianAI/lintbridge/services/lint/api"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	cfg := api.ServerConfig{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lint pipeline over HTTP",
		Long: `Serve exposes lint, fix and ignore over HTTP under /v1 and streams
diagnostic changes over a websocket at /v1/stream. Prometheus metrics are
served at /metrics unless OTEL_METRICS_EXPORTER selects another exporter.

Browser requests are refused unless they come from the server's own
loopback origin or an origin passed with --allow-origin. Request bodies
must be application/json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, flags, appOptions{metrics: true})
			if err != nil {
				return usageError(err)
			}
			defer a.Close()

			cfg.Version = version
			cfg.Logger = a.logger.Slog()
			if a.metricExporter == telemetry.ExporterPrometheus {
				cfg.Metrics = telemetry.MetricsHandler()
			}
			return api.NewServer(a.orch, cfg).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", "127.0.0.1:7878", "listen address")
	cmd.Flags().Float64Var(&cfg.RateLimit, "rate-limit", 50, "requests per second under /v1, 0 disables")
	cmd.Flags().IntVar(&cfg.Burst, "burst", 100, "rate limiter burst")
	cmd.Flags().StringSliceVar(&cfg.AllowedOrigins, "allow-origin", nil, "browser origin allowed to call the API, repeatable (e.g. vscode-webview://abc)")
	cmd.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 0, "grace period for in-flight requests (default 10s)")
	return cmd
}
