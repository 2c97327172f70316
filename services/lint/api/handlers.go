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
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
	"github.com/AleutianAI/lintbridge/services/lint/process"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// requestIDKey is the gin context key holding the request ID.
const requestIDKey = "request_id"

// Handlers serves the lint routes.
//
// Thread Safety: Safe for concurrent use.
type Handlers struct {
	orch     *pipeline.Orchestrator
	version  string
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandlers creates handlers backed by orch.
//
// Inputs:
//   - orch: The orchestrator. Must not be nil.
//   - version: Reported by the health route.
//   - logger: Nil uses slog.Default().
func NewHandlers(orch *pipeline.Orchestrator, version string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		orch:    orch,
		version: version,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(nil),
		},
	}
}

// =============================================================================
// LINT
// =============================================================================

// HandleLint handles POST /v1/lint.
//
// Description:
//
//	Starts a lint run of the posted snapshot. Cached results are merged
//	into the collection before this returns. With wait set, the handler
//	blocks until every linter finished and returns per-linter results;
//	otherwise it replies 202 and the run continues in the background.
//
// Request Body:
//
//	LintRequest
//
// Response:
//
//	200 OK: LintResponse (wait, skipped or nothing to run)
//	202 Accepted: LintResponse (run started)
//	400 Bad Request: Invalid request
func (h *Handlers) HandleLint(c *gin.Context) {
	logger := h.requestLogger(c, "HandleLint")

	var req LintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid lint request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	doc := req.Document.Document()
	collection := h.orch.Collection()

	if req.Event == EventChange && !h.orch.Config().Settings.RunOnTextChange {
		c.JSON(http.StatusOK, LintResponse{
			URI:         doc.URI,
			Generation:  h.orch.Generation(doc.URI),
			Linters:     []string{},
			Skipped:     true,
			Done:        true,
			Diagnostics: collection.Diagnostics(doc.URI),
		})
		return
	}

	// The run outlives the request unless the client waits for it.
	runCtx := context.WithoutCancel(c.Request.Context())
	run := h.orch.Lint(runCtx, doc)

	resp := LintResponse{
		RunID:      run.ID,
		URI:        run.URI,
		Generation: run.Generation,
		Linters:    run.Linters,
		Skipped:    len(run.Linters) == 0,
	}
	if resp.Linters == nil {
		resp.Linters = []string{}
	}

	if !req.Wait && !resp.Skipped {
		logger.Debug("Lint run started",
			slog.String("run_id", run.ID),
			slog.String("uri", run.URI),
			slog.Int("linters", len(run.Linters)))
		resp.Diagnostics = collection.Diagnostics(doc.URI)
		c.JSON(http.StatusAccepted, resp)
		return
	}

	results, err := run.Wait(c.Request.Context())
	if err != nil {
		logger.Warn("Client went away while waiting for lint run",
			slog.String("run_id", run.ID),
			slog.String("error", err.Error()))
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "lint run did not finish before the request ended",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	resp.Done = true
	resp.Results = resultPayloads(results)
	resp.Diagnostics = collection.Diagnostics(doc.URI)
	c.JSON(http.StatusOK, resp)
}

func resultPayloads(results []pipeline.Result) []ResultPayload {
	out := make([]ResultPayload, 0, len(results))
	for _, r := range results {
		p := ResultPayload{
			Linter:   r.Linter,
			Status:   r.Status,
			Offenses: len(r.Offenses),
			Millis:   r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			p.Error = r.Err.Error()
		}
		out = append(out, p)
	}
	return out
}

// =============================================================================
// EDITS
// =============================================================================

// HandleFix handles POST /v1/fix.
//
// Description:
//
//	Runs the offense's linter in fix mode over the posted text and returns
//	a whole-document replacement edit. An empty edit list means the linter
//	produced no change.
//
// Request Body:
//
//	EditRequest with kind fix-all, fix-one or fix-category
//
// Response:
//
//	200 OK: EditResponse
//	400 Bad Request: Invalid request or kind
//	404 Not Found: Unknown linter
//	422 Unprocessable Entity: Capability not supported
//	502 Bad Gateway: Linter process failed
func (h *Handlers) HandleFix(c *gin.Context) {
	h.handleEdit(c, "HandleFix", func(ctx context.Context, doc textdoc.Document, off offense.Offense, kind adapter.Capability) ([]textdoc.TextEdit, error) {
		return h.orch.Fix(ctx, doc, off, kind)
	})
}

// HandleInlineFix handles POST /v1/fix/inline.
//
// Description:
//
//	Converts the offense's embedded fix into an edit. No process is run.
//
// Response:
//
//	200 OK: EditResponse
//	422 Unprocessable Entity: Offense carries no inline fix
func (h *Handlers) HandleInlineFix(c *gin.Context) {
	h.handleEdit(c, "HandleInlineFix", func(_ context.Context, doc textdoc.Document, off offense.Offense, _ adapter.Capability) ([]textdoc.TextEdit, error) {
		return h.orch.InlineFix(doc, off)
	})
}

// HandleIgnore handles POST /v1/ignore.
//
// Description:
//
//	Produces a single-line edit inserting the linter's suppression pragma.
//
// Request Body:
//
//	EditRequest with kind ignore-file, ignore-line or ignore-eol
//
// Response:
//
//	200 OK: EditResponse
//	422 Unprocessable Entity: Capability not supported or no pragma
func (h *Handlers) HandleIgnore(c *gin.Context) {
	h.handleEdit(c, "HandleIgnore", h.orch.Ignore)
}

type editFunc func(context.Context, textdoc.Document, offense.Offense, adapter.Capability) ([]textdoc.TextEdit, error)

func (h *Handlers) handleEdit(c *gin.Context, name string, fn editFunc) {
	logger := h.requestLogger(c, name)

	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid edit request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	doc := req.Document.Document()
	off, ok := h.resolveOffense(doc.URI, req)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "offense or a known diagnostic is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if err := off.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid offense",
			Code:    "INVALID_OFFENSE",
			Details: err.Error(),
		})
		return
	}

	edits, err := fn(c.Request.Context(), doc, off, req.Kind)
	if err != nil {
		status, code := statusFor(err)
		logger.Debug("Edit request failed",
			slog.String("linter", off.Source),
			slog.String("kind", string(req.Kind)),
			slog.String("code", code),
			slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	text, err := textdoc.Apply(doc, edits...)
	if err != nil {
		logger.Error("Produced edits do not apply",
			slog.String("linter", off.Source),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "produced edits do not apply",
			Code:    "INTERNAL_ERROR",
			Details: err.Error(),
		})
		return
	}

	if edits == nil {
		edits = []textdoc.TextEdit{}
	}
	c.JSON(http.StatusOK, EditResponse{
		Edits:   edits,
		Text:    text,
		Changed: len(edits) > 0,
	})
}

// resolveOffense prefers an explicit offense and falls back to looking up
// a diagnostic in the collection.
func (h *Handlers) resolveOffense(uri string, req EditRequest) (offense.Offense, bool) {
	if req.Offense != nil {
		return *req.Offense, true
	}
	if req.Diagnostic != nil {
		return h.orch.Collection().Lookup(uri, *req.Diagnostic)
	}
	return offense.Offense{}, false
}

// statusFor maps pipeline errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrUnknownLinter):
		return http.StatusNotFound, "UNKNOWN_LINTER"
	case errors.Is(err, pipeline.ErrInvalidKind):
		return http.StatusBadRequest, "INVALID_KIND"
	case errors.Is(err, offense.ErrInvalidOffense), errors.Is(err, offense.ErrAmbiguousFix):
		return http.StatusBadRequest, "INVALID_OFFENSE"
	case errors.Is(err, adapter.ErrUnsupported):
		return http.StatusUnprocessableEntity, "UNSUPPORTED"
	case errors.Is(err, pipeline.ErrNoInlineFix):
		return http.StatusUnprocessableEntity, "NO_INLINE_FIX"
	case errors.Is(err, pipeline.ErrNoPragma):
		return http.StatusUnprocessableEntity, "NO_PRAGMA"
	case errors.Is(err, pipeline.ErrSkipped):
		return http.StatusUnprocessableEntity, "SKIPPED"
	case errors.Is(err, pipeline.ErrDisabled):
		return http.StatusServiceUnavailable, "DISABLED"
	case errors.Is(err, process.ErrNotFound), errors.Is(err, process.ErrNotExecutable):
		return http.StatusBadGateway, "LINTER_NOT_FOUND"
	case errors.Is(err, process.ErrTimeout):
		return http.StatusGatewayTimeout, "LINTER_TIMEOUT"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "REQUEST_TIMEOUT"
	default:
		return http.StatusBadGateway, "LINTER_FAILED"
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// HandleLinters handles GET /v1/linters.
func (h *Handlers) HandleLinters(c *gin.Context) {
	c.JSON(http.StatusOK, LintersResponse{Linters: h.orch.Linters()})
}

// HandleDiagnostics handles GET /v1/diagnostics.
//
// Description:
//
//	With ?uri= (or ?path=) returns the document's current diagnostics.
//	Without either, lists URIs that have diagnostics.
func (h *Handlers) HandleDiagnostics(c *gin.Context) {
	collection := h.orch.Collection()

	uri := c.Query("uri")
	if uri == "" {
		if path := c.Query("path"); path != "" {
			uri = textdoc.URIFromPath(path)
		}
	}
	if uri == "" {
		uris := collection.URIs()
		if uris == nil {
			uris = []string{}
		}
		c.JSON(http.StatusOK, URIsResponse{URIs: uris})
		return
	}
	if !strings.HasPrefix(uri, "file://") {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "uri must be a file:// URI",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	c.JSON(http.StatusOK, DiagnosticsResponse{
		URI:         uri,
		Generation:  h.orch.Generation(uri),
		Diagnostics: collection.Diagnostics(uri),
	})
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return h.logger.With(
		slog.String("request_id", getOrCreateRequestID(c)),
		slog.String("handler", handler),
	)
}

// getOrCreateRequestID returns the request ID set by the middleware, the
// X-Request-ID header, or a new UUID.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		c.Set(requestIDKey, id)
		return id
	}
	id := uuid.NewString()
	c.Set(requestIDKey, id)
	return id
}
