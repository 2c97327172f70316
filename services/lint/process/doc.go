// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package process locates linter executables and runs them.
//
// A linter receives the document content on standard input and reports on
// stdout or stderr. Exit codes carry tool-specific meaning, so a nonzero
// exit is captured in the Result and never reported as an error. Errors
// are returned only when the process could not be started at all.
package process
