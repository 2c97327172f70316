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

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the lint routes on rg.
//
// Inputs:
//   - rg: Router group, typically /v1.
//   - h: The handlers.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/lint", h.HandleLint)
	rg.POST("/fix", h.HandleFix)
	rg.POST("/fix/inline", h.HandleInlineFix)
	rg.POST("/ignore", h.HandleIgnore)
	rg.GET("/linters", h.HandleLinters)
	rg.GET("/diagnostics", h.HandleDiagnostics)
	rg.GET("/stream", h.HandleStream)
	rg.GET("/health", h.HandleHealth)
}
