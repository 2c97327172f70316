// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline drives linters over documents.
//
// An Orchestrator selects the linters that apply to a document, replays
// cached results, runs every linter independently and merges each result
// into the document's diagnostic set by source. Fix, InlineFix and Ignore
// compute buffer edits for a single offense.
package pipeline
