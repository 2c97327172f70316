// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package linters contains the built-in linter adapters.
//
// Each adapter translates one tool's native report into offenses and,
// where the tool has a suppression syntax, implements the matching pragma
// providers. RegisterAll adds every adapter to a registry under the
// tool's name.
//
// # Supported Linters
//
//	brakeman          ruby           JSON, rails only, drops other files
//	cargo-clippy      rust           NDJSON, drops spans for other files
//	credo             elixir         JSON
//	dart              dart           text
//	erb_lint          erb            JSON
//	eslint            javascript     JSON, offset inline fixes
//	gherkin-lint      feature        JSON on stderr, drops other files
//	hadolint          dockerfile     JSON
//	language-tool     markdown/text  JSON after a banner, offsets into input
//	luacheck          lua            text
//	markdownlint      markdown       JSON on stderr
//	php-code-sniffer  php            JSON
//	proselint         markdown/text  JSON
//	pylint            python         JSON
//	reek              ruby           JSON
//	rubocop           ruby           JSON
//	ruby              ruby           text on stderr (ruby -wc)
//	shellcheck        shellscript    JSON
//	sqlfluff          sql            JSON
//	stylelint         css/scss/less  JSON
//	swiftlint         swift          JSON
//	textlint          markdown/text  JSON, offset inline fixes
//	vale              markdown/text  JSON, keeps the entry for the linted path
//	yamllint          yaml           text
//
// The pattern adapter is configured entirely from data and lets companion
// extensions add line-oriented tools without code.
package linters
