// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
)

// ErrValidation wraps every ValidationError.
var ErrValidation = errors.New("linter configuration invalid")

// ValidationError describes why a linter entry was disabled.
type ValidationError struct {
	Linter string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Linter, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// configValidate is the validator for configuration structs.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("capability", validateCapability)
}

// validateCapability accepts only the fixed capability names.
func validateCapability(fl validator.FieldLevel) bool {
	c := adapter.Capability(fl.Field().String())
	return c.IsFix() || c.IsIgnore() || c == adapter.CapFixInline
}

// ValidateLinter checks one entry.
func ValidateLinter(l LinterConfig) error {
	if err := configValidate.Struct(l); err != nil {
		return &ValidationError{Linter: l.Name, Err: err}
	}
	return nil
}

// validate checks settings and every linter. Invalid linters are disabled
// and recorded; invalid settings fall back field-wise to defaults.
func (c *Config) validate(logger *slog.Logger) {
	if err := configValidate.Struct(c.Settings); err != nil {
		logger.Warn("Invalid settings, using defaults for invalid fields",
			slog.String("error", err.Error()))
		c.repairSettings(err)
	}

	for name, l := range c.Linters {
		err := ValidateLinter(l)
		if err == nil {
			continue
		}
		logger.Warn("Disabling invalid linter",
			slog.String("linter", name),
			slog.String("origin", l.Origin),
			slog.String("error", err.Error()),
		)
		l.Enabled = false
		c.Linters[name] = l
		c.Problems[name] = err
	}
}

// repairSettings resets the fields named in a validation error.
func (c *Config) repairSettings(err error) {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return
	}
	for _, f := range fields {
		switch f.StructField() {
		case "CacheBackend":
			c.Settings.CacheBackend = "file"
		case "Timeout":
			c.Settings.Timeout = 0
		case "Concurrency":
			c.Settings.Concurrency = 0
		case "Delay":
			c.Settings.Delay = 0
		}
	}
}
