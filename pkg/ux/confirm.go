// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrNotInteractive indicates a prompt was requested without a terminal.
var ErrNotInteractive = errors.New("prompt requires an interactive terminal")

// ErrAborted indicates the user cancelled a prompt.
var ErrAborted = errors.New("aborted by user")

// Confirm asks a yes/no question.
//
// Description:
//
//	Shows a huh confirm field. Ctrl+C maps to ErrAborted. The printer's
//	level must not be LevelMachine.
//
// Inputs:
//
//	title - The question
//	description - Extra context shown under the question. May be empty.
//
// Outputs:
//
//	bool - True when the user accepted
//	error - ErrNotInteractive, ErrAborted or a terminal error
func (p *Printer) Confirm(title, description string) (bool, error) {
	if p.level == LevelMachine {
		return false, ErrNotInteractive
	}

	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Apply").
		Negative("Skip").
		Value(&ok)
	if description != "" {
		field = field.Description(description)
	}

	if err := field.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrAborted
		}
		return false, err
	}
	return ok, nil
}
