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
	"path/filepath"
	"slices"
	"strings"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/command"
	"github.com/AleutianAI/lintbridge/services/lint/config"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// skippedLanguages never trigger a run: untitled buffers and output panes.
var skippedLanguages = []string{"", "code-runner-output", "Log"}

// Skipped reports whether documents of languageID are never linted.
func Skipped(languageID string) bool {
	return slices.Contains(skippedLanguages, languageID)
}

// rootDir returns the workspace root containing path, or the directory of
// path when no configured root contains it.
func (o *Orchestrator) rootDir(path string) string {
	for _, root := range o.workspaceRoots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return root
		}
	}
	return filepath.Dir(path)
}

// lintContext builds the variables for a lint-mode run of lc over doc.
//
// Description:
//
//	Sets the document variables ($rootDir, $file, $extension,
//	$extensionBare, $language, $shebang), $debug from settings, $config
//	from the first config file found walking up from the document, and
//	$lint. Derived flags, predicates and negated twins are added later by
//	the expander.
func (o *Orchestrator) lintContext(doc textdoc.Document, lc config.LinterConfig) command.Context {
	vars := o.documentContext(doc, lc)
	vars[command.VarLint] = true
	return vars
}

// fixContext builds the variables for a fix-mode run. Exactly one of the
// fix flags is true and $code carries the offense's rule.
func (o *Orchestrator) fixContext(doc textdoc.Document, lc config.LinterConfig, kind adapter.Capability, code string) command.Context {
	vars := o.documentContext(doc, lc)
	vars[command.VarLint] = false
	vars[command.VarFixAll] = kind == adapter.CapFixAll
	vars[command.VarFixOne] = kind == adapter.CapFixOne
	vars[command.VarFixCategory] = kind == adapter.CapFixCategory
	vars[command.VarFixInline] = false
	vars[command.VarCode] = code
	return vars
}

func (o *Orchestrator) documentContext(doc textdoc.Document, lc config.LinterConfig) command.Context {
	path := doc.Path
	ext := strings.ToLower(filepath.Ext(path))

	return command.Context{
		command.VarRootDir:       o.rootDir(path),
		command.VarFile:          path,
		command.VarExtension:     ext,
		command.VarExtensionBare: strings.TrimPrefix(ext, "."),
		command.VarConfig:        command.FindConfigFile(path, lc.ConfigFiles),
		command.VarDebug:         o.cfg.Settings.Debug,
		command.VarLanguage:      doc.LanguageID,
		command.VarShebang:       shebang(doc),
	}
}

// shebang returns the interpreter line of doc without "#!", or "".
func shebang(doc textdoc.Document) string {
	first, ok := doc.LineAt(0)
	if !ok || !strings.HasPrefix(first, "#!") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(first, "#!"))
}
