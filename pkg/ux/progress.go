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
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// FileStatus is the state of one file in a multi-file run.
type FileStatus string

const (
	FileQueued  FileStatus = "queued"
	FileLinting FileStatus = "linting"
	FileDone    FileStatus = "done"
	FileFailed  FileStatus = "failed"
)

// FileEvent reports a file's progress.
type FileEvent struct {
	Path   string
	Status FileStatus

	// Detail is shown after the status, e.g. an offense count.
	Detail string
}

type progressModel struct {
	title   string
	events  <-chan FileEvent
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type fileItem struct {
	path   string
	status FileStatus
	detail string
}

type fileEventMsg FileEvent
type progressDoneMsg struct{}

// NewProgressModel returns a Bubble Tea model listing files and their
// status until events is closed.
func NewProgressModel(title string, files []string, events <-chan FileEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorTealPrimary)

	prog := progress.New(progress.WithGradient(string(ColorTealDeep), string(ColorTealBright)))
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: FileQueued})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

// RunProgress renders the model until events is closed.
func RunProgress(out io.Writer, title string, files []string, events <-chan FileEvent) error {
	program := tea.NewProgram(NewProgressModel(title, files, events),
		tea.WithOutput(out),
		tea.WithInput(nil),
	)
	_, err := program.Run()
	return err
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileEventMsg:
		cmd := m.apply(FileEvent(msg))
		return m, tea.Batch(cmd, m.listen())
	case progressDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = max(10, msg.Width-4)
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(20, m.width-26)
	for _, item := range m.items {
		status := statusStyle(item.status).Render(fmt.Sprintf("%8s", item.status))
		line := fmt.Sprintf("  %s %s", status, truncate(item.path, nameWidth))
		if item.detail != "" {
			line += " " + Styles.Muted.Render(item.detail)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return progressDoneMsg{}
		}
		return fileEventMsg(ev)
	}
}

func (m *progressModel) apply(ev FileEvent) tea.Cmd {
	idx, ok := m.index[ev.Path]
	if !ok {
		return nil
	}
	m.items[idx].status = ev.Status
	m.items[idx].detail = ev.Detail
	return m.prog.SetPercent(m.fraction())
}

// fraction is the share of files in a final state.
func (m *progressModel) fraction() float64 {
	finished := 0
	for _, item := range m.items {
		if item.status == FileDone || item.status == FileFailed {
			finished++
		}
	}
	return float64(finished) / float64(len(m.items))
}

func statusStyle(status FileStatus) lipgloss.Style {
	switch status {
	case FileDone:
		return Styles.Success
	case FileFailed:
		return Styles.Error
	case FileLinting:
		return Styles.Highlight
	default:
		return Styles.Muted
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
