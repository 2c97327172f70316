// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for pipeline operations.
var (
	tracer = otel.Tracer("lintbridge.lint")
	meter  = otel.Meter("lintbridge.lint")
)

// Metrics for pipeline operations.
var (
	runLatency     metric.Float64Histogram
	linterLatency  metric.Float64Histogram
	offensesTotal  metric.Int64Counter
	linterFailures metric.Int64Counter
	editsTotal     metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"lintbridge_run_duration_seconds",
			metric.WithDescription("Duration of a lint run across all selected linters"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		linterLatency, err = meter.Float64Histogram(
			"lintbridge_linter_duration_seconds",
			metric.WithDescription("Duration of a single linter within a run"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		offensesTotal, err = meter.Int64Counter(
			"lintbridge_offenses_total",
			metric.WithDescription("Total number of offenses merged into diagnostic sets"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		linterFailures, err = meter.Int64Counter(
			"lintbridge_linter_failures_total",
			metric.WithDescription("Linter runs that degraded to zero offenses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		editsTotal, err = meter.Int64Counter(
			"lintbridge_edits_total",
			metric.WithDescription("Fix and ignore requests by operation and outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startRunSpan creates a span for a lint run.
func startRunSpan(ctx context.Context, runID, uri, language string, linters int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Orchestrator.Lint",
		trace.WithAttributes(
			attribute.String("lint.run_id", runID),
			attribute.String("lint.uri", uri),
			attribute.String("lint.language", language),
			attribute.Int("lint.linters", linters),
		),
	)
}

// startLinterSpan creates a span for one linter within a run.
func startLinterSpan(ctx context.Context, linter string, generation uint64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Orchestrator.runLinter",
		trace.WithAttributes(
			attribute.String("lint.linter", linter),
			attribute.Int64("lint.generation", int64(generation)),
		),
	)
}

// startEditSpan creates a span for a fix or ignore request.
func startEditSpan(ctx context.Context, operation, linter, code string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Orchestrator."+operation,
		trace.WithAttributes(
			attribute.String("lint.linter", linter),
			attribute.String("lint.code", code),
		),
	)
}

// setLinterSpanResult sets the result attributes on a linter span.
func setLinterSpanResult(span trace.Span, status Status, offenses int) {
	span.SetAttributes(
		attribute.String("lint.status", string(status)),
		attribute.Int("lint.offense_count", offenses),
	)
}

// recordLinterMetrics records metrics for one linter result.
func recordLinterMetrics(ctx context.Context, linter string, duration time.Duration, status Status, offenses int) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("linter", linter),
		attribute.String("status", string(status)),
	)
	linterLatency.Record(ctx, duration.Seconds(), attrs)

	switch status {
	case StatusOK:
		offensesTotal.Add(ctx, int64(offenses), metric.WithAttributes(
			attribute.String("linter", linter),
		))
	case StatusFailed:
		linterFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("linter", linter),
		))
	}
}

// recordRunMetrics records the duration of a whole run.
func recordRunMetrics(ctx context.Context, language string, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	runLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("language", language),
	))
}

// recordEditMetrics counts a fix or ignore request.
func recordEditMetrics(ctx context.Context, operation, linter string, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	editsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("linter", linter),
		attribute.Bool("success", success),
	))
}
