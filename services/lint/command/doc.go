// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package command expands declarative linter command templates into
// concrete argument vectors.
//
// A template is an ordered list of entries. Each entry is either a token
// (a literal such as "--format" or a variable such as "$file") or a
// conditional group whose first element names the condition variable:
//
//	command:
//	  - rubocop
//	  - --format
//	  - json
//	  - [$config, --config, $config]
//	  - [$fixAll, --autocorrect-all]
//
// # Expansion
//
// Expansion runs in a fixed order:
//
//  1. Derived argument flags from the linter's args declarations.
//  2. Computed predicates ($is-bundler, $is-rails) evaluated against the root dir.
//  3. A negated twin !X for every variable X.
//  4. The when preconditions. Any falsy precondition yields an empty argv.
//  5. Rendering. A bare token becomes its value when truthy and stays
//     literal otherwise. A group emits nothing when its condition is falsy.
//  6. Shim substitution from the shim directory.
//
// An empty result means the linter must not run for the document.
package command
