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

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/lintbridge/pkg/ux"
	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/pipeline"
)

// =============================================================================
// LINTERS
// =============================================================================

func newLintersCmd(flags *globalFlags) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "linters",
		Short: "List configured linters",
		Long: `Linters lists every built-in, extension and user linter with its
languages, capabilities and origin. Linters whose adapter or configuration
is broken are shown as unavailable with the reason.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, flags, appOptions{})
			if err != nil {
				return usageError(err)
			}
			defer a.Close()

			linters := filterLinters(a.orch.Linters(), language)
			if a.flags.format == formatJSON {
				return writeJSON(a.out, linters)
			}
			if len(linters) == 0 {
				a.printer.Muted("No linters configured")
				return nil
			}
			a.printer.Line(renderLinters(a.printer.Level(), linters))
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "only linters for this language")
	return cmd
}

func filterLinters(linters []pipeline.LinterStatus, language string) []pipeline.LinterStatus {
	if language == "" {
		return linters
	}
	out := make([]pipeline.LinterStatus, 0, len(linters))
	for _, l := range linters {
		for _, lang := range l.Languages {
			if lang == language {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// renderLinters formats linters as a table. Machine output is one
// tab-separated row per linter without a header.
func renderLinters(level ux.Level, linters []pipeline.LinterStatus) string {
	headers := []string{"NAME", "LANGUAGES", "STATE", "CAPABILITIES", "ORIGIN"}
	rows := make([][]string, 0, len(linters))
	for _, l := range linters {
		rows = append(rows, []string{
			l.Name,
			strings.Join(l.Languages, ","),
			linterState(l),
			joinCapabilities(l.Capabilities),
			l.Origin,
		})
	}

	if level == ux.LevelMachine {
		var b strings.Builder
		for _, r := range rows {
			b.WriteString(strings.Join(r, "\t"))
			b.WriteByte('\n')
		}
		return strings.TrimSuffix(b.String(), "\n")
	}
	if level == ux.LevelMinimal {
		var b strings.Builder
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
		for _, r := range rows {
			fmt.Fprintln(tw, strings.Join(r, "\t"))
		}
		tw.Flush()
		return strings.TrimSuffix(b.String(), "\n")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(ux.Styles.Muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Bold(true)
			case col == 2 && row >= 0 && row < len(rows) && rows[row][2] != "enabled":
				return style.Inherit(ux.Styles.Muted)
			}
			return style
		})
	return t.String()
}

func linterState(l pipeline.LinterStatus) string {
	switch {
	case !l.Available:
		return "unavailable: " + l.Problem
	case !l.Enabled:
		return "disabled"
	default:
		return "enabled"
	}
}

func joinCapabilities(caps []adapter.Capability) string {
	if len(caps) == 0 {
		return "-"
	}
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

// =============================================================================
// CACHE
// =============================================================================

func newCacheCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear [linter]",
		Short: "Remove cached results of one linter or of all linters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, flags, appOptions{store: true})
			if err != nil {
				return usageError(err)
			}
			defer a.Close()

			if a.store == nil {
				return errors.New("result cache is unavailable")
			}
			linter := ""
			if len(args) == 1 {
				linter = args[0]
			}
			if err := a.store.Clear(linter); err != nil {
				return err
			}
			if linter == "" {
				a.printer.Success("Cleared all cached results")
			} else {
				a.printer.Success("Cleared cached results of " + linter)
			}
			return nil
		},
	})
	return cmd
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lintbridge %s (%s, %s/%s)\n",
				version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
