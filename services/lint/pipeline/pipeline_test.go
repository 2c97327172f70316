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
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/lintbridge/services/lint/adapter"
	"github.com/AleutianAI/lintbridge/services/lint/cache"
	"github.com/AleutianAI/lintbridge/services/lint/command"
	"github.com/AleutianAI/lintbridge/services/lint/config"
	"github.com/AleutianAI/lintbridge/services/lint/linters"
	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/process"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeLinter parses "CODE:LINE:MESSAGE" lines.
type fakeLinter struct{ name string }

func (f *fakeLinter) Name() string { return f.name }

func (f *fakeLinter) Offenses(r adapter.Report) ([]offense.Offense, error) {
	var out []offense.Offense
	for _, line := range strings.Split(strings.TrimSpace(r.Stdout), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			return nil, adapter.NewParseError(f.name, fmt.Errorf("bad line %q", line))
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, adapter.NewParseError(f.name, err)
		}
		out = append(out, offense.Offense{
			Source:   f.name,
			Code:     parts[0],
			Message:  parts[2],
			Severity: offense.SeverityWarning,
			Location: offense.Location{LineStart: n, LineEnd: n},
		})
	}
	return out, nil
}

// fixableLinter adds fix output parsing and all three pragma providers.
type fixableLinter struct{ fakeLinter }

func (f *fixableLinter) ParseFixOutput(in adapter.FixInput) string {
	if in.Stdout == "" {
		return in.Input
	}
	return in.Stdout
}

func (f *fixableLinter) IgnoreEolPragma(in adapter.PragmaInput) (string, bool) {
	if in.Code == "" {
		return "", false
	}
	return in.Line.Text + " # fake:disable " + in.Code, true
}

func (f *fixableLinter) IgnoreLinePragma(in adapter.PragmaInput) (string, bool) {
	pragma := in.Indent + "# fake:disable-next " + in.Code
	if in.Line.Number == 0 {
		return pragma + "\n" + in.Line.Text, true
	}
	return in.Line.Text + "\n" + pragma, true
}

func (f *fixableLinter) IgnoreFilePragma(in adapter.PragmaInput) (string, bool) {
	return "# fake:disable-file " + in.Code + "\n" + in.Line.Text, true
}

// panickyLinter panics while parsing.
type panickyLinter struct{ fakeLinter }

func (p *panickyLinter) Offenses(adapter.Report) ([]offense.Offense, error) {
	panic("boom")
}

func testRegistry(t *testing.T) *adapter.Registry {
	t.Helper()
	reg := adapter.NewRegistry()
	reg.MustRegister("fake", func(spec adapter.Spec) (adapter.Linter, error) {
		return &fakeLinter{name: spec.Name}, nil
	})
	reg.MustRegister("fixable", func(spec adapter.Spec) (adapter.Linter, error) {
		return &fixableLinter{fakeLinter{name: spec.Name}}, nil
	})
	reg.MustRegister("panicky", func(spec adapter.Spec) (adapter.Linter, error) {
		return &panickyLinter{fakeLinter{name: spec.Name}}, nil
	})
	return reg
}

type handler func(inv process.Invocation) (*process.Result, error)

// fakeExecutor dispatches on argv[0]. Unknown binaries fail resolution.
type fakeExecutor struct {
	mu       sync.Mutex
	calls    []process.Invocation
	handlers map[string]handler
}

func newExecutor(handlers map[string]handler) *fakeExecutor {
	return &fakeExecutor{handlers: handlers}
}

func (f *fakeExecutor) Run(_ context.Context, inv process.Invocation) (*process.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	h, ok := f.handlers[inv.Argv[0]]
	f.mu.Unlock()

	if !ok {
		return nil, &process.ResolutionError{
			Binary:     inv.Argv[0],
			Candidates: []string{inv.Argv[0]},
			Err:        process.ErrNotFound,
		}
	}
	return h(inv)
}

func (f *fakeExecutor) Calls() []process.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func reply(stdout string) handler {
	return func(process.Invocation) (*process.Result, error) {
		return &process.Result{Stdout: stdout}, nil
	}
}

// gated replies once release is closed.
func gated(release <-chan struct{}, stdout string) handler {
	return func(process.Invocation) (*process.Result, error) {
		<-release
		return &process.Result{Stdout: stdout}, nil
	}
}

func linterConfig(name, impl string, caps ...adapter.Capability) config.LinterConfig {
	return config.LinterConfig{
		Name:         name,
		Languages:    []string{"ruby"},
		Enabled:      true,
		Adapter:      impl,
		Capabilities: caps,
		Command: command.Template{
			command.Token(name),
			command.Cond(command.VarFixAll, "--fix"),
			command.Cond(command.VarFixOne, "--only", command.VarCode),
		},
	}
}

func testConfig(linters ...config.LinterConfig) *config.Config {
	cfg := &config.Config{
		Settings: config.Settings{
			Enabled:      true,
			Cache:        true,
			DiscardStale: true,
			Concurrency:  4,
		},
		Linters:  make(map[string]config.LinterConfig, len(linters)),
		Problems: make(map[string]error),
	}
	for _, l := range linters {
		cfg.Linters[l.Name] = l
	}
	return cfg
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, exec Executor, opts ...Option) *Orchestrator {
	t.Helper()
	opts = append([]Option{
		WithRegistry(testRegistry(t)),
		WithExecutor(exec),
		WithExpander(command.NewExpander()),
	}, opts...)
	orch, err := NewOrchestrator(cfg, opts...)
	require.NoError(t, err)
	return orch
}

func testDoc(t *testing.T, text string) textdoc.Document {
	t.Helper()
	return textdoc.New(filepath.Join(t.TempDir(), "app.rb"), "ruby", text)
}

func codes(offenses []offense.Offense) []string {
	out := make([]string, 0, len(offenses))
	for _, o := range offenses {
		out = append(out, o.Code)
	}
	slices.Sort(out)
	return out
}

func waitRun(t *testing.T, run *Run) []Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results, err := run.Wait(ctx)
	require.NoError(t, err)
	return results
}

// =============================================================================
// LINT
// =============================================================================

func TestLint_CacheThenFresh(t *testing.T) {
	releaseA := make(chan struct{})
	releaseB := make(chan struct{})
	exec := newExecutor(map[string]handler{
		"A": gated(releaseA, "new-a:2:fresh"),
		"B": gated(releaseB, "new-b:3:fresh"),
	})

	store, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)
	doc := testDoc(t, "x = 1\n")
	require.NoError(t, store.Write("A", doc.Path, []offense.Offense{{Source: "A", Code: "old-a"}}))
	require.NoError(t, store.Write("B", doc.Path, []offense.Offense{{Source: "B", Code: "old-b"}}))

	cfg := testConfig(linterConfig("A", "fake"), linterConfig("B", "fake"))
	orch := newTestOrchestrator(t, cfg, exec, WithStore(store))
	diags := orch.Collection()

	run := orch.Lint(context.Background(), doc)
	assert.Equal(t, []string{"A", "B"}, run.Linters)
	assert.Equal(t, uint64(1), run.Generation)
	assert.Equal(t, []string{"old-a", "old-b"}, codes(diags.Offenses(doc.URI)),
		"cached results are published before any process finishes")

	close(releaseA)
	assert.Eventually(t, func() bool {
		return slices.Equal([]string{"new-a", "old-b"}, codes(diags.Offenses(doc.URI)))
	}, 5*time.Second, 5*time.Millisecond)

	close(releaseB)
	results := waitRun(t, run)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, StatusOK, r.Status, r.Linter)
	}
	assert.Equal(t, []string{"new-a", "new-b"}, codes(diags.Offenses(doc.URI)))

	cached, ok, err := store.Read("B", doc.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"new-b"}, codes(cached))
}

func TestLint_CacheDisabledKeepsExistingSet(t *testing.T) {
	release := make(chan struct{})
	exec := newExecutor(map[string]handler{"A": gated(release, "new-a:0:fresh")})

	store, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)
	doc := testDoc(t, "x = 1\n")
	require.NoError(t, store.Write("A", doc.Path, []offense.Offense{{Source: "A", Code: "old-a"}}))

	cfg := testConfig(linterConfig("A", "fake"))
	cfg.Settings.Cache = false
	orch := newTestOrchestrator(t, cfg, exec, WithStore(store))
	orch.Collection().Set(doc.URI, []offense.Offense{{Source: "A", Code: "previous"}})

	run := orch.Lint(context.Background(), doc)
	assert.Equal(t, []string{"previous"}, codes(orch.Collection().Offenses(doc.URI)))

	close(release)
	waitRun(t, run)
	assert.Equal(t, []string{"new-a"}, codes(orch.Collection().Offenses(doc.URI)))
}

func TestLint_MergeIsolation(t *testing.T) {
	exec := newExecutor(map[string]handler{
		"B": reply("b1:0:one\nb2:1:two"),
	})
	cfg := testConfig(linterConfig("A", "fake"), linterConfig("B", "fake"))
	cfg.Settings.Cache = false
	orch := newTestOrchestrator(t, cfg, exec)

	doc := testDoc(t, "x = 1\ny = 2\n")
	orch.Collection().Set(doc.URI, []offense.Offense{
		{Source: "A", Code: "a-old"},
		{Source: "B", Code: "b-old"},
		{Source: "C", Code: "c-other"},
	})

	results := waitRun(t, orch.Lint(context.Background(), doc))
	require.Len(t, results, 2)

	assert.Equal(t, "A", results[0].Linter)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.ErrorIs(t, results[0].Err, process.ErrNotFound)
	assert.Empty(t, results[0].Offenses)

	assert.Equal(t, StatusOK, results[1].Status)
	assert.Len(t, results[1].Offenses, 2)

	assert.Equal(t, []string{"b1", "b2", "c-other"}, codes(orch.Collection().Offenses(doc.URI)))
}

func TestLint_StaleGeneration(t *testing.T) {
	tests := []struct {
		name         string
		discardStale bool
		wantStatus   Status
		wantCodes    []string
	}{
		{name: "stale result discarded", discardStale: true, wantStatus: StatusStale, wantCodes: []string{"v2"}},
		{name: "stale result merged", discardStale: false, wantStatus: StatusOK, wantCodes: []string{"v1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := make(chan struct{})
			exec := newExecutor(map[string]handler{
				"A": func(inv process.Invocation) (*process.Result, error) {
					if inv.Stdin == "v1" {
						<-release
					}
					return &process.Result{Stdout: inv.Stdin + ":0:msg"}, nil
				},
			})
			cfg := testConfig(linterConfig("A", "fake"))
			cfg.Settings.Cache = false
			cfg.Settings.DiscardStale = tt.discardStale
			orch := newTestOrchestrator(t, cfg, exec)

			doc := testDoc(t, "v1")
			first := orch.Lint(context.Background(), doc)
			second := orch.Lint(context.Background(), doc.WithText("v2"))
			assert.Equal(t, uint64(2), second.Generation)

			waitRun(t, second)
			assert.Equal(t, []string{"v2"}, codes(orch.Collection().Offenses(doc.URI)))

			close(release)
			results := waitRun(t, first)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantStatus, results[0].Status)
			assert.Equal(t, tt.wantCodes, codes(orch.Collection().Offenses(doc.URI)))
		})
	}
}

func TestLint_NothingToRun(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		language string
	}{
		{name: "disabled", enabled: false, language: "ruby"},
		{name: "skipped language", enabled: true, language: "Log"},
		{name: "empty language", enabled: true, language: ""},
		{name: "no linter for language", enabled: true, language: "python"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := newExecutor(map[string]handler{"A": reply("")})
			cfg := testConfig(linterConfig("A", "fake"))
			cfg.Settings.Enabled = tt.enabled
			orch := newTestOrchestrator(t, cfg, exec)

			doc := textdoc.New("/tmp/x", tt.language, "text")
			orch.Collection().Set(doc.URI, []offense.Offense{{Source: "A", Code: "kept"}})

			run := orch.Lint(context.Background(), doc)
			select {
			case <-run.Done():
			default:
				t.Fatal("run should already be done")
			}
			assert.Empty(t, run.Linters)
			assert.Equal(t, uint64(0), run.Generation)
			assert.Empty(t, exec.Calls())
			assert.Equal(t, []string{"kept"}, codes(orch.Collection().Offenses(doc.URI)))
		})
	}
}

func TestLint_SkippedCommand(t *testing.T) {
	exec := newExecutor(map[string]handler{"A": reply("a:0:x")})
	lc := linterConfig("A", "fake")
	lc.When = []string{command.VarConfig}
	lc.ConfigFiles = []string{".lintbridge-test-missing.yml"}
	orch := newTestOrchestrator(t, testConfig(lc), exec)

	results := waitRun(t, orch.Lint(context.Background(), testDoc(t, "x")))
	require.Len(t, results, 1)
	assert.Equal(t, StatusSkipped, results[0].Status)
	assert.Empty(t, exec.Calls())
}

func TestLint_AdapterFailuresDegrade(t *testing.T) {
	tests := []struct {
		name string
		impl string
		out  string
	}{
		{name: "panic", impl: "panicky", out: "a:0:x"},
		{name: "malformed output", impl: "fake", out: "not a report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := newExecutor(map[string]handler{"A": reply(tt.out)})
			cfg := testConfig(linterConfig("A", tt.impl))
			cfg.Settings.Cache = false
			orch := newTestOrchestrator(t, cfg, exec)

			doc := testDoc(t, "x")
			orch.Collection().Set(doc.URI, []offense.Offense{{Source: "A", Code: "old"}})

			results := waitRun(t, orch.Lint(context.Background(), doc))
			require.Len(t, results, 1)
			assert.Equal(t, StatusFailed, results[0].Status)
			assert.ErrorIs(t, results[0].Err, adapter.ErrParseOutput)
			assert.Empty(t, orch.Collection().Offenses(doc.URI))
		})
	}
}

func TestLint_ContextVariables(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	configPath := filepath.Join(root, ".fake.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0o644))

	exec := newExecutor(map[string]handler{"A": reply("")})
	lc := linterConfig("A", "fake")
	lc.ConfigFiles = []string{".fake.yml"}
	lc.Command = command.Template{
		command.Token("A"),
		command.Token(command.VarExtensionBare),
		command.Token(command.VarLanguage),
		command.Cond(command.VarLint, "--lint"),
		command.Cond(command.VarConfig, "--config", command.VarConfig),
		command.Cond(command.VarShebang, "--shebang", command.VarShebang),
		command.Cond(command.VarDebug, "--debug"),
	}
	orch := newTestOrchestrator(t, testConfig(lc), exec, WithWorkspaceRoots(root))

	doc := textdoc.New(filepath.Join(sub, "Tool.RB"), "ruby", "#!/usr/bin/env ruby\nputs 1\n")
	waitRun(t, orch.Lint(context.Background(), doc))

	calls := exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"A", "rb", "ruby", "--lint", "--config", configPath, "--shebang", "/usr/bin/env ruby",
	}, calls[0].Argv)
	assert.Equal(t, root, calls[0].Dir)
	assert.Equal(t, doc.Text, calls[0].Stdin)
}

func TestLint_ConcurrentDocuments(t *testing.T) {
	exec := newExecutor(map[string]handler{
		"A": func(inv process.Invocation) (*process.Result, error) {
			return &process.Result{Stdout: "c:0:" + inv.Stdin}, nil
		},
	})
	cfg := testConfig(linterConfig("A", "fake"))
	cfg.Settings.Cache = false
	orch := newTestOrchestrator(t, cfg, exec)

	var wg sync.WaitGroup
	docs := make([]textdoc.Document, 8)
	for i := range docs {
		docs[i] = textdoc.New(filepath.Join(t.TempDir(), "f.rb"), "ruby", strconv.Itoa(i))
		wg.Add(1)
		go func(doc textdoc.Document) {
			defer wg.Done()
			waitRun(t, orch.Lint(context.Background(), doc))
		}(docs[i])
	}
	wg.Wait()

	for i, doc := range docs {
		got := orch.Collection().Offenses(doc.URI)
		require.Len(t, got, 1)
		assert.Equal(t, strconv.Itoa(i), got[0].Message)
	}
}

// =============================================================================
// FIX
// =============================================================================

func TestFix_MissingParserLogsOnce(t *testing.T) {
	exec := newExecutor(map[string]handler{"A": reply("fixed")})
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := testConfig(linterConfig("A", "fake", adapter.CapFixAll))
	orch := newTestOrchestrator(t, cfg, exec, WithLogger(logger))
	buf.Reset()

	doc := testDoc(t, "x = 1\n")
	edits, err := orch.Fix(context.Background(), doc, offense.Offense{Source: "A", Code: "X"}, adapter.CapFixAll)

	assert.Nil(t, edits)
	var capErr *adapter.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, adapter.CapFixAll, capErr.Capability)
	assert.ErrorIs(t, err, adapter.ErrUnsupported)
	assert.Empty(t, exec.Calls())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"capability":"fix-all"`)
}

func TestFix(t *testing.T) {
	tests := []struct {
		name      string
		kind      adapter.Capability
		caps      []adapter.Capability
		source    string
		stdout    string
		wantText  string
		wantArgv  []string
		wantErr   error
		wantEdits bool
	}{
		{
			name:      "fix all",
			kind:      adapter.CapFixAll,
			caps:      []adapter.Capability{adapter.CapFixAll},
			source:    "A",
			stdout:    "x = 2\n",
			wantText:  "x = 2\n",
			wantArgv:  []string{"A", "--fix"},
			wantEdits: true,
		},
		{
			name:      "fix one passes code",
			kind:      adapter.CapFixOne,
			caps:      []adapter.Capability{adapter.CapFixOne},
			source:    "A",
			stdout:    "x = 3\n",
			wantText:  "x = 3\n",
			wantArgv:  []string{"A", "--only", "Style/X"},
			wantEdits: true,
		},
		{
			name:     "unchanged output",
			kind:     adapter.CapFixAll,
			caps:     []adapter.Capability{adapter.CapFixAll},
			source:   "A",
			stdout:   "",
			wantArgv: []string{"A", "--fix"},
		},
		{
			name:    "capability not declared",
			kind:    adapter.CapFixOne,
			caps:    []adapter.Capability{adapter.CapFixAll},
			source:  "A",
			wantErr: adapter.ErrUnsupported,
		},
		{
			name:    "not a fix kind",
			kind:    adapter.CapIgnoreEol,
			source:  "A",
			wantErr: ErrInvalidKind,
		},
		{
			name:    "unknown linter",
			kind:    adapter.CapFixAll,
			source:  "nope",
			wantErr: ErrUnknownLinter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := newExecutor(map[string]handler{"A": reply(tt.stdout)})
			orch := newTestOrchestrator(t, testConfig(linterConfig("A", "fixable", tt.caps...)), exec)

			doc := testDoc(t, "x = 1\n")
			edits, err := orch.Fix(context.Background(), doc, offense.Offense{Source: tt.source, Code: "Style/X"}, tt.kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, edits)
				return
			}
			require.NoError(t, err)

			calls := exec.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantArgv, calls[0].Argv)
			assert.Equal(t, doc.Text, calls[0].Stdin)

			if !tt.wantEdits {
				assert.Nil(t, edits)
				return
			}
			require.Len(t, edits, 1)
			got, err := textdoc.Apply(doc, edits...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got)
		})
	}
}

func TestFix_ProcessError(t *testing.T) {
	exec := newExecutor(map[string]handler{
		"A": func(process.Invocation) (*process.Result, error) {
			return nil, process.ErrTimeout
		},
	})
	orch := newTestOrchestrator(t, testConfig(linterConfig("A", "fixable", adapter.CapFixAll)), exec)

	edits, err := orch.Fix(context.Background(), testDoc(t, "x"), offense.Offense{Source: "A"}, adapter.CapFixAll)
	assert.Nil(t, edits)
	assert.True(t, errors.Is(err, process.ErrTimeout))
}

// =============================================================================
// INLINE FIX
// =============================================================================

func TestInlineFix(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		fix     *offense.InlineFix
		want    string
		wantErr error
	}{
		{
			name: "offset fix",
			fix:  offense.NewOffsetFix(4, 7, "XYZ"),
			want: "abc\nXYZ\n",
		},
		{
			name: "offset fix after astral character",
			text: "let s = \"😀\"; var x = 1;",
			fix:  offense.NewOffsetFix(14, 17, "let"),
			want: "let s = \"😀\"; let x = 1;",
		},
		{
			name: "span fix",
			fix:  offense.NewSpanFix(offense.LineColumn{Line: 0, Column: 1}, offense.LineColumn{Line: 0, Column: 2}, "Q"),
			want: "aQc\ndef\n",
		},
		{
			name:    "no fix",
			wantErr: ErrNoInlineFix,
		},
		{
			name:    "ambiguous fix",
			fix:     &offense.InlineFix{Replacement: "x"},
			wantErr: offense.ErrAmbiguousFix,
		},
	}

	orch := newTestOrchestrator(t, testConfig(linterConfig("A", "fake")), newExecutor(nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tt.text
			if text == "" {
				text = "abc\ndef\n"
			}
			doc := testDoc(t, text)
			edits, err := orch.InlineFix(doc, offense.Offense{Source: "A", InlineFix: tt.fix})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, err := textdoc.Apply(doc, edits...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// IGNORE
// =============================================================================

func TestIgnore(t *testing.T) {
	const text = "a = 1\n  b = 2\n"

	tests := []struct {
		name    string
		impl    string
		kind    adapter.Capability
		line    int
		code    string
		want    string
		wantErr error
	}{
		{
			name: "end of line",
			impl: "fixable",
			kind: adapter.CapIgnoreEol,
			line: 1,
			code: "X",
			want: "a = 1\n  b = 2 # fake:disable X\n",
		},
		{
			name: "line before offense",
			impl: "fixable",
			kind: adapter.CapIgnoreLine,
			line: 1,
			code: "X",
			want: "a = 1\n  # fake:disable-next X\n  b = 2\n",
		},
		{
			name: "line on first line",
			impl: "fixable",
			kind: adapter.CapIgnoreLine,
			line: 0,
			code: "X",
			want: "# fake:disable-next X\na = 1\n  b = 2\n",
		},
		{
			name: "file",
			impl: "fixable",
			kind: adapter.CapIgnoreFile,
			line: 1,
			code: "X",
			want: "# fake:disable-file X\na = 1\n  b = 2\n",
		},
		{
			name:    "provider returns nothing",
			impl:    "fixable",
			kind:    adapter.CapIgnoreEol,
			line:    1,
			wantErr: ErrNoPragma,
		},
		{
			name:    "adapter without pragma support",
			impl:    "fake",
			kind:    adapter.CapIgnoreLine,
			line:    1,
			code:    "X",
			wantErr: adapter.ErrUnsupported,
		},
		{
			name:    "not an ignore kind",
			impl:    "fixable",
			kind:    adapter.CapFixAll,
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := newTestOrchestrator(t, testConfig(linterConfig("A", tt.impl)), newExecutor(nil))
			doc := testDoc(t, text)
			off := offense.Offense{
				Source:   "A",
				Code:     tt.code,
				Location: offense.Location{LineStart: tt.line, LineEnd: tt.line},
			}

			edits, err := orch.Ignore(context.Background(), doc, off, tt.kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, edits)
				return
			}
			require.NoError(t, err)
			require.Len(t, edits, 1)
			got, err := textdoc.Apply(doc, edits...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIgnore_OffenseOutsideDocument(t *testing.T) {
	orch := newTestOrchestrator(t, testConfig(linterConfig("A", "fixable")), newExecutor(nil))
	doc := testDoc(t, "a = 1\n")
	off := offense.Offense{Source: "A", Code: "X", Location: offense.Location{LineStart: 5, LineEnd: 5}}

	for _, kind := range []adapter.Capability{adapter.CapIgnoreEol, adapter.CapIgnoreLine, adapter.CapIgnoreFile} {
		t.Run(string(kind), func(t *testing.T) {
			edits, err := orch.Ignore(context.Background(), doc, off, kind)
			assert.ErrorIs(t, err, offense.ErrInvalidOffense)
			assert.Nil(t, edits)
		})
	}
}

// Suppressing several rules of one offense, one after another, leaves a
// single merged pragma, and suppressing an already suppressed rule is a
// no-op.
func TestIgnore_RepeatedApplicationMerges(t *testing.T) {
	tests := []struct {
		impl  string
		kind  adapter.Capability
		text  string
		line  int
		codes []string
		want  string
	}{
		{
			impl:  "eslint",
			kind:  adapter.CapIgnoreLine,
			text:  "a()\n  b()\n",
			line:  1,
			codes: []string{"no-undef", "no-console"},
			want:  "a()\n  // eslint-disable-next-line no-console, no-undef\n  b()\n",
		},
		{
			impl:  "eslint",
			kind:  adapter.CapIgnoreFile,
			text:  "const a = 1\n",
			codes: []string{"semi", "quotes"},
			want:  "/* eslint-disable quotes, semi */\nconst a = 1\n",
		},
		{
			impl:  "shellcheck",
			kind:  adapter.CapIgnoreLine,
			text:  "#!/bin/sh\necho $a\n",
			line:  1,
			codes: []string{"SC2086", "SC2034"},
			want:  "#!/bin/sh\n# shellcheck disable=SC2034,SC2086\necho $a\n",
		},
		{
			impl:  "hadolint",
			kind:  adapter.CapIgnoreLine,
			text:  "FROM debian\nRUN apt-get install curl\n",
			line:  1,
			codes: []string{"DL3008", "DL3015"},
			want:  "FROM debian\n\n# hadolint ignore=DL3008,DL3015\nRUN apt-get install curl\n",
		},
		{
			impl:  "yamllint",
			kind:  adapter.CapIgnoreLine,
			text:  "a:\n  b: yes\n",
			line:  1,
			codes: []string{"truthy", "indentation"},
			want:  "a:\n  # yamllint disable-line rule:indentation rule:truthy\n  b: yes\n",
		},
		{
			impl:  "swiftlint",
			kind:  adapter.CapIgnoreLine,
			text:  "import UIKit\n    let a = b as! C\n",
			line:  1,
			codes: []string{"force_cast", "force_unwrapping"},
			want:  "import UIKit\n    // swiftlint:disable:next force_cast force_unwrapping\n    let a = b as! C\n",
		},
		{
			impl:  "swiftlint",
			kind:  adapter.CapIgnoreFile,
			text:  "import UIKit\n",
			codes: []string{"line_length", "force_cast"},
			want:  "// swiftlint:disable force_cast line_length\nimport UIKit\n",
		},
		{
			impl:  "credo",
			kind:  adapter.CapIgnoreLine,
			text:  "def a do\n  x\nend\n",
			line:  1,
			codes: []string{"Credo.Check.X", "Credo.Check.Y"},
			want:  "def a do\n  # credo:disable-for-next-line\n  x\nend\n",
		},
		{
			impl:  "credo",
			kind:  adapter.CapIgnoreFile,
			text:  "defmodule Foo do\nend\n",
			line:  1,
			codes: []string{"Credo.Check.Y", "Credo.Check.X"},
			want:  "# credo:disable-for-this-file Credo.Check.X\n# credo:disable-for-this-file Credo.Check.Y\ndefmodule Foo do\nend\n",
		},
		{
			impl:  "pylint",
			kind:  adapter.CapIgnoreFile,
			text:  "import os\n",
			codes: []string{"unused-import - W0611", "invalid-name - C0103"},
			want:  "# pylint: disable=invalid-name, unused-import\nimport os\n",
		},
		{
			impl:  "rubocop",
			kind:  adapter.CapIgnoreEol,
			text:  "x = 1\n",
			codes: []string{"Style/A", "Lint/B"},
			want:  "x = 1 # rubocop:disable Lint/B, Style/A\n",
		},
		{
			impl:  "sqlfluff",
			kind:  adapter.CapIgnoreEol,
			text:  "SELECT  1\n",
			codes: []string{"LT01", "AL01"},
			want:  "SELECT  1 -- noqa: disable=AL01, LT01\n",
		},
		{
			impl:  "reek",
			kind:  adapter.CapIgnoreLine,
			text:  "class Foo\n  def bar\n",
			line:  1,
			codes: []string{"UtilityFunction", "TooManyStatements"},
			want:  "class Foo\n  # :reek:TooManyStatements :reek:UtilityFunction\n  def bar\n",
		},
		{
			// The third rule pushes the pragma past its wrap width; the
			// fourth must merge into the wrapped block.
			impl: "cargo-clippy",
			kind: adapter.CapIgnoreFile,
			text: "fn main() {}\n",
			codes: []string{
				"clippy::needless_return",
				"clippy::redundant_clone",
				"clippy::too_many_arguments",
				"clippy::cast_lossless",
			},
			want: "#![allow(\n" +
				"    clippy::cast_lossless,\n" +
				"    clippy::needless_return,\n" +
				"    clippy::redundant_clone,\n" +
				"    clippy::too_many_arguments\n" +
				")]\nfn main() {}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.impl+"/"+string(tt.kind), func(t *testing.T) {
			orch := newTestOrchestrator(t, testConfig(linterConfig("A", tt.impl)), newExecutor(nil),
				WithRegistry(linters.NewRegistry()))
			doc := testDoc(t, tt.text)
			line := tt.line
			ignore := func(code string) []textdoc.TextEdit {
				off := offense.Offense{
					Source:   "A",
					Code:     code,
					Location: offense.Location{LineStart: line, LineEnd: line},
				}
				edits, err := orch.Ignore(context.Background(), doc, off, tt.kind)
				require.NoError(t, err)
				return edits
			}

			for _, code := range tt.codes {
				edits := ignore(code)
				require.Len(t, edits, 1, code)
				text, err := textdoc.Apply(doc, edits...)
				require.NoError(t, err)
				// Inserted lines push the offense down.
				line += strings.Count(text, "\n") - strings.Count(doc.Text, "\n")
				doc = doc.WithText(text)
			}
			assert.Equal(t, tt.want, doc.Text)

			for _, code := range tt.codes {
				assert.Empty(t, ignore(code), "reapplying %s", code)
			}
		})
	}
}

// =============================================================================
// LINTERS AND CACHE
// =============================================================================

func TestLinters(t *testing.T) {
	cfg := testConfig(linterConfig("A", "fake"), linterConfig("B", "missing"), linterConfig("C", "fake"))
	cfg.Problems["C"] = errors.New("command: required")
	orch := newTestOrchestrator(t, cfg, newExecutor(nil))

	statuses := orch.Linters()
	require.Len(t, statuses, 3)

	assert.Equal(t, "A", statuses[0].Name)
	assert.True(t, statuses[0].Available)
	assert.Equal(t, "fake", statuses[0].Implementation)

	assert.False(t, statuses[1].Available)
	assert.Contains(t, statuses[1].Problem, "missing")

	assert.False(t, statuses[2].Available)
	assert.Equal(t, "command: required", statuses[2].Problem)

	_, err := orch.Fix(context.Background(), testDoc(t, "x"), offense.Offense{Source: "B"}, adapter.CapFixAll)
	assert.ErrorIs(t, err, ErrUnknownLinter)
}

func TestClearCache(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Write("A", "/x.rb", []offense.Offense{{Source: "A", Code: "c"}}))
	require.NoError(t, store.Write("B", "/x.rb", []offense.Offense{{Source: "B", Code: "c"}}))

	orch := newTestOrchestrator(t, testConfig(linterConfig("A", "fake")), newExecutor(nil), WithStore(store))
	require.NoError(t, orch.ClearCache("A"))

	_, ok, err := store.Read("A", "/x.rb")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.Read("B", "/x.rb")
	require.NoError(t, err)
	assert.True(t, ok)

	withoutStore := newTestOrchestrator(t, testConfig(), newExecutor(nil))
	assert.NoError(t, withoutStore.ClearCache(""))
}

func TestSkipped(t *testing.T) {
	for _, lang := range []string{"", "code-runner-output", "Log"} {
		assert.True(t, Skipped(lang), lang)
	}
	assert.False(t, Skipped("ruby"))
}
