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
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Level controls the richness of CLI output.
type Level string

const (
	// LevelRich enables colors, icons and boxes.
	LevelRich Level = "rich"

	// LevelMinimal uses icons without color or boxes.
	LevelMinimal Level = "minimal"

	// LevelMachine outputs plain, tab separated text for scripts.
	LevelMachine Level = "machine"
)

// EnvOutput overrides the detected output level.
const EnvOutput = "LINTBRIDGE_OUTPUT"

// ParseLevel converts a string to a Level. Unknown values map to LevelRich.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal", "min", "m", "plain":
		return LevelMinimal
	case "machine", "quiet", "q":
		return LevelMachine
	default:
		return LevelRich
	}
}

// DetectLevel picks the level from LINTBRIDGE_OUTPUT, falling back to
// LevelMachine when f is not a terminal. NO_COLOR selects LevelMinimal.
func DetectLevel(f *os.File) Level {
	if env := os.Getenv(EnvOutput); env != "" {
		return ParseLevel(env)
	}
	if !IsTerminal(f) {
		return LevelMachine
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return LevelMinimal
	}
	return LevelRich
}

// IsTerminal reports whether f is a terminal, including Cygwin ptys.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
