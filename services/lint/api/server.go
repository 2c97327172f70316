// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
)

// ServerConfig configures the HTTP bridge.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:7878".
	Addr string

	// Version is reported by /v1/health.
	Version string

	// RateLimit is the allowed requests per second. Zero disables it.
	RateLimit float64
	Burst     int

	// AllowedOrigins lists browser origins, besides the server's own
	// loopback origin, that may call /v1.
	AllowedOrigins []string

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// ShutdownTimeout bounds graceful shutdown. Default 10s.
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(orch *pipeline.Orchestrator, cfg ServerConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("lintbridge"))
	router.Use(RequestID())
	router.Use(AccessLog(logger))

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	v1 := router.Group("/v1")
	v1.Use(OriginGuard(cfg.AllowedOrigins))
	v1.Use(RequireJSON())
	v1.Use(RateLimit(cfg.RateLimit, cfg.Burst))

	h := NewHandlers(orch, cfg.Version, logger)
	h.upgrader.CheckOrigin = originChecker(cfg.AllowedOrigins)
	RegisterRoutes(v1, h)

	return router
}

// Server is the HTTP bridge with graceful shutdown.
type Server struct {
	cfg    ServerConfig
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates a server for orch. Call Run to serve.
func NewServer(orch *pipeline.Orchestrator, cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(orch, cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
//
// Outputs:
//
//	error - Listen failure or shutdown error. Nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting lintbridge server", slog.String("address", s.cfg.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down lintbridge server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
