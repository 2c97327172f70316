// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package textdoc

import (
	"path/filepath"
	"strings"
)

// languageByExtension maps lowercased file extensions to language
// identifiers.
var languageByExtension = map[string]string{
	".adoc":     "asciidoc",
	".asciidoc": "asciidoc",
	".bash":     "shellscript",
	".cjs":      "javascript",
	".css":      "css",
	".dart":     "dart",
	".erb":      "erb",
	".ex":       "elixir",
	".exs":      "elixir",
	".feature":  "feature",
	".gemspec":  "ruby",
	".js":       "javascript",
	".jsx":      "javascriptreact",
	".less":     "less",
	".lua":      "lua",
	".markdown": "markdown",
	".md":       "markdown",
	".mjs":      "javascript",
	".php":      "php",
	".pgsql":    "sql",
	".psql":     "sql",
	".py":       "python",
	".rake":     "ruby",
	".rb":       "ruby",
	".rs":       "rust",
	".rst":      "restructuredtext",
	".scss":     "scss",
	".sh":       "shellscript",
	".sql":      "sql",
	".swift":    "swift",
	".ts":       "typescript",
	".tsx":      "typescriptreact",
	".txt":      "plaintext",
	".yaml":     "yaml",
	".yml":      "yaml",
	".zsh":      "shellscript",
}

// languageByName maps well-known file names without a telling extension.
var languageByName = map[string]string{
	"Dockerfile": "dockerfile",
	"Gemfile":    "ruby",
	"Rakefile":   "ruby",
	".yamllint":  "yaml",
}

// LanguageFor guesses the language identifier of path from its name.
// It returns "" for unknown files, which are never linted.
func LanguageFor(path string) string {
	base := filepath.Base(path)
	if lang, ok := languageByName[base]; ok {
		return lang
	}
	if strings.HasPrefix(base, "Dockerfile.") || strings.HasSuffix(base, ".dockerfile") {
		return "dockerfile"
	}
	return languageByExtension[strings.ToLower(filepath.Ext(base))]
}
