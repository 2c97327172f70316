// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"errors"
)

// Sentinel errors for the pipeline package.
var (
	// ErrUnknownLinter indicates an offense whose source is not configured
	// or whose adapter could not be built.
	ErrUnknownLinter = errors.New("unknown linter")

	// ErrInvalidKind indicates a capability that does not match the
	// requested operation.
	ErrInvalidKind = errors.New("invalid operation kind")

	// ErrNoInlineFix indicates an offense without an inline fix.
	ErrNoInlineFix = errors.New("offense has no inline fix")

	// ErrNoPragma indicates the pragma provider returned no text.
	ErrNoPragma = errors.New("no pragma produced")

	// ErrSkipped indicates the command expanded to nothing.
	ErrSkipped = errors.New("command skipped")

	// ErrDisabled indicates linting is turned off in settings.
	ErrDisabled = errors.New("linting disabled")
)
