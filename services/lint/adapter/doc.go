// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package adapter defines the contract every linter integration implements.
//
// Only Linter is mandatory. Fix and ignore support are optional interfaces
// discovered with type assertions, so shared code never branches on a tool
// name:
//
//	Linter              - parse a report into offenses (required)
//	FixOutputParser     - turn fix-mode output into corrected content
//	FilePragmaProvider  - file-wide suppression on the first line
//	LinePragmaProvider  - suppression on the line before the offense
//	EolPragmaProvider   - suppression at the end of the offending line
//
// Implementations are registered by name in a Registry at startup.
package adapter
