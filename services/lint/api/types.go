// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes the lint pipeline over HTTP for editor integrations.
//
// Routes:
//
//	POST /v1/lint         - Lint a document snapshot
//	POST /v1/fix          - Fix an offense by running its linter in fix mode
//	POST /v1/fix/inline   - Apply an offense's inline fix
//	POST /v1/ignore       - Insert a suppression pragma
//	GET  /v1/linters      - List configured linters
//	GET  /v1/diagnostics  - Current diagnostics of a document, or all URIs
//	GET  /v1/stream       - Websocket stream of diagnostic changes
//	GET  /v1/health       - Liveness
package api

import (
	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/diagnostics"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// Lint trigger events.
const (
	EventOpen   = "open"
	EventChange = "change"
	EventSave   = "save"
)

// DocumentPayload is a document snapshot sent by the editor.
type DocumentPayload struct {
	// Path is the absolute file path.
	Path string `json:"path" binding:"required"`

	// LanguageID defaults to a guess from the file name.
	LanguageID string `json:"languageId,omitempty"`

	Text string `json:"text"`
}

// Document converts the payload into a textdoc.Document.
func (p DocumentPayload) Document() textdoc.Document {
	lang := p.LanguageID
	if lang == "" {
		lang = textdoc.LanguageFor(p.Path)
	}
	return textdoc.New(p.Path, lang, p.Text)
}

// LintRequest is the body of POST /v1/lint.
type LintRequest struct {
	Document DocumentPayload `json:"document"`

	// Event is "open", "change" or "save". Change events are ignored unless
	// run_on_text_change is set.
	Event string `json:"event,omitempty" binding:"omitempty,oneof=open change save"`

	// Wait blocks until every linter finished.
	Wait bool `json:"wait,omitempty"`
}

// LintResponse is returned by POST /v1/lint.
type LintResponse struct {
	RunID       string                   `json:"runId,omitempty"`
	URI         string                   `json:"uri"`
	Generation  uint64                   `json:"generation"`
	Linters     []string                 `json:"linters"`
	Skipped     bool                     `json:"skipped,omitempty"`
	Done        bool                     `json:"done"`
	Results     []ResultPayload          `json:"results,omitempty"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// ResultPayload is one linter's outcome.
type ResultPayload struct {
	Linter   string          `json:"linter"`
	Status   pipeline.Status `json:"status"`
	Offenses int             `json:"offenses"`
	Error    string          `json:"error,omitempty"`
	Millis   int64           `json:"durationMs"`
}

// EditRequest is the body of the fix and ignore routes. The offense is
// named either directly or by a diagnostic previously returned for the
// document.
type EditRequest struct {
	Document   DocumentPayload         `json:"document"`
	Offense    *offense.Offense        `json:"offense,omitempty"`
	Diagnostic *diagnostics.Diagnostic `json:"diagnostic,omitempty"`

	// Kind is the capability: fix-all, fix-one or fix-category for
	// /v1/fix; ignore-file, ignore-line or ignore-eol for /v1/ignore.
	// Unused by /v1/fix/inline.
	Kind adapter.Capability `json:"kind,omitempty"`
}

// EditResponse carries the edits and the resulting text.
type EditResponse struct {
	Edits   []textdoc.TextEdit `json:"edits"`
	Text    string             `json:"text"`
	Changed bool               `json:"changed"`
}

// LintersResponse is returned by GET /v1/linters.
type LintersResponse struct {
	Linters []pipeline.LinterStatus `json:"linters"`
}

// DiagnosticsResponse is returned by GET /v1/diagnostics?uri=...
type DiagnosticsResponse struct {
	URI         string                   `json:"uri"`
	Generation  uint64                   `json:"generation"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// URIsResponse is returned by GET /v1/diagnostics without a uri.
type URIsResponse struct {
	URIs []string `json:"uris"`
}

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
