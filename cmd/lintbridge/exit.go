// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import "fmt"

// Process exit codes.
const (
	// ExitOK means no offense reached the failure level.
	ExitOK = 0

	// ExitOffenses means at least one offense reached the failure level.
	ExitOffenses = 1

	// ExitUsage means the command could not run: bad flags, unreadable
	// files or configuration errors.
	ExitUsage = 2
)

// ExitError carries a process exit code through cobra's error return.
//
// Description:
//
//	Commands return an ExitError to select the exit code. A nil Wrapped
//	error exits silently, which is how the lint command reports offenses
//	that reached the failure level after printing them.
//
// Example:
//
//	return &ExitError{Code: ExitOffenses}
type ExitError struct {
	// Code is the process exit code.
	Code int

	// Wrapped is the underlying error. May be nil.
	Wrapped error
}

// Error returns a formatted error message.
func (e *ExitError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("exit %d: %v", e.Code, e.Wrapped)
	}
	return fmt.Sprintf("exit %d", e.Code)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Wrapped
}

// usageError wraps err with ExitUsage. It returns nil for a nil err.
func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitUsage, Wrapped: err}
}
