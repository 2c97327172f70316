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
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RequestID tags every request with an ID from X-Request-ID or a new UUID
// and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := getOrCreateRequestID(c)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RateLimit rejects requests beyond rps per second with 429. A burst of
// up to burst requests is allowed. rps <= 0 disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), max(1, burst))
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "too many requests",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}

// AccessLog logs one line per request at debug level.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}

// OriginGuard rejects browser requests with 403 unless their Origin is the
// server's own loopback origin or listed in allowed. Requests without an
// Origin header, as sent by editors and CLIs, pass.
func OriginGuard(allowed []string) gin.HandlerFunc {
	check := originChecker(allowed)
	return func(c *gin.Context) {
		if !check(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error: "origin not allowed",
				Code:  "FORBIDDEN_ORIGIN",
			})
			return
		}
		c.Next()
	}
}

// originChecker returns the origin policy shared by OriginGuard and the
// websocket upgrader.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimSuffix(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		// Host must match too, or a rebound DNS name would pass.
		return strings.EqualFold(u.Host, r.Host) && isLoopback(u.Hostname())
	}
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// RequireJSON rejects POST requests whose body is not application/json
// with 415. Browsers cannot send that type cross-origin without a
// preflight.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && c.ContentType() != gin.MIMEJSON {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, ErrorResponse{
				Error: "request body must be application/json",
				Code:  "UNSUPPORTED_MEDIA_TYPE",
			})
			return
		}
		c.Next()
	}
}
