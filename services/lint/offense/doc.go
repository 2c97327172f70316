// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package offense defines the canonical finding record every linter adapter
// produces and every downstream stage consumes.
//
// Tools report positions in many conventions. Adapters normalize them to
// zero-based lines and columns before constructing an Offense, so the cache,
// the diagnostic set and the fix/ignore entry points never see tool-specific
// numbering.
package offense
