// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultTimeout bounds a single linter process when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the process itself was killed.
const waitDelay = 2 * time.Second

var (
	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lintbridge_process_invocations_total",
		Help: "Total linter process invocations by binary and outcome",
	}, []string{"binary", "outcome"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lintbridge_process_duration_seconds",
		Help:    "Duration of linter process invocations",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"binary"})
)

// Invocation describes one process execution.
type Invocation struct {
	// Argv is the command. Argv[0] is resolved with the Resolver.
	Argv []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Stdin is written to the process's standard input.
	Stdin string

	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// Result captures a finished process.
//
// Thread Safety: Immutable after creation by the runner.
type Result struct {
	// Binary is the resolved executable path.
	Binary   string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner resolves and executes linter processes.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	resolver *Resolver
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithResolver sets a custom resolver.
func WithResolver(resolver *Resolver) Option {
	return func(r *Runner) {
		r.resolver = resolver
	}
}

// WithTimeout sets the per-process timeout. Zero keeps DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		resolver: NewResolver(),
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes an invocation and captures its output.
//
// Description:
//
//	Resolves argv[0], starts the process with Stdin piped in, Dir as the
//	working directory and the inherited environment, then waits for it to
//	exit. A nonzero exit status is reported in Result.ExitCode and is not
//	an error.
//
// Inputs:
//
//	ctx - Context for cancellation. The runner's timeout is applied on top.
//	inv - The invocation
//
// Outputs:
//
//	*Result - Captured output. Nil when err is non-nil.
//	error - ErrEmptyCommand, *ResolutionError, ErrTimeout or ErrSpawn
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if len(inv.Argv) == 0 {
		return nil, ErrEmptyCommand
	}

	binary, err := r.resolver.ResolveIn(inv.Argv[0], inv.Dir)
	if err != nil {
		invocationsTotal.WithLabelValues(inv.Argv[0], "unresolved").Inc()
		return nil, err
	}

	cmdCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, binary, inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Stdin = strings.NewReader(inv.Stdin)
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)
	invocationDuration.WithLabelValues(inv.Argv[0]).Observe(duration.Seconds())

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		invocationsTotal.WithLabelValues(inv.Argv[0], "timeout").Inc()
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, binary, r.timeout)
	}
	if ctx.Err() != nil {
		invocationsTotal.WithLabelValues(inv.Argv[0], "canceled").Inc()
		return nil, ctx.Err()
	}

	result := &Result{
		Binary:   binary,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			invocationsTotal.WithLabelValues(inv.Argv[0], "spawn_error").Inc()
			return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, binary, err)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	invocationsTotal.WithLabelValues(inv.Argv[0], "exited").Inc()

	r.logger.Debug("Process finished",
		slog.String("binary", binary),
		slog.Int("exit_code", result.ExitCode),
		slog.Duration("duration", duration),
		slog.Int("stdout_bytes", len(result.Stdout)),
		slog.Int("stderr_bytes", len(result.Stderr)),
	)

	return result, nil
}

// Resolver returns the runner's resolver.
func (r *Runner) Resolver() *Resolver {
	return r.resolver
}
