package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/orthoflow/pkg/cache"
	"github.com/matzehuels/orthoflow/pkg/geom"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/observability"
)

const flowYAML = `direction: TD
nodes:
  - id: start
    shape: stadium
  - id: check
    label: Valid?
    shape: diamond
  - id: store
  - id: fail
edges:
  - source: start
    target: check
  - source: check
    target: store
    label: "yes"
  - source: check
    target: fail
    label: "no"
groups:
  - id: backend
    label: Backend
    nodes: [store]
`

// isolate points config and cache lookups at fresh directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envRedisURL, "")
	t.Cleanup(observability.Reset)
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"layout", "inspect", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flow.yaml", flowYAML)

	if _, err := run(t, "", "layout", input, "--engine", "simple", "--measure", "cells"); err != nil {
		t.Fatalf("layout error = %v", err)
	}

	l, err := graph.ReadLayoutFile(filepath.Join(dir, "flow.layout.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(l.Nodes) != 4 || len(l.Edges) != 3 || len(l.Groups) != 1 {
		t.Errorf("layout has %d nodes, %d edges, %d groups", len(l.Nodes), len(l.Edges), len(l.Groups))
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)); err != nil {
		t.Errorf("layout was not cached: %v", err)
	}
}

func TestLayoutCommandStdio(t *testing.T) {
	isolate(t)
	out, err := run(t, flowYAML, "layout", "-", "--input-format", "yaml", "-o", "-",
		"--format", "msgpack", "--engine", "simple", "--measure", "cells", "--no-cache", "-d", "LR")
	if err != nil {
		t.Fatalf("layout error = %v", err)
	}
	l, err := graph.DecodeLayout([]byte(out), graph.FormatMsgpack)
	if err != nil {
		t.Fatalf("stdout is not a msgpack layout: %v", err)
	}
	if l.Direction != graph.DirectionLR {
		t.Errorf("Direction = %q, want LR from flag", l.Direction)
	}
}

func TestLayoutCommandUsesConfig(t *testing.T) {
	isolate(t)
	writeFile(t, os.Getenv("XDG_CONFIG_HOME"), filepath.Join(appName, "config.toml"),
		"[layout]\nengine = \"simple\"\nmeasure = \"cells\"\ndirection = \"RL\"\n\n[cache]\ndisabled = true\n")

	out, err := run(t, flowYAML, "layout", "-", "--input-format", "yaml", "-o", "-")
	if err != nil {
		t.Fatalf("layout error = %v", err)
	}
	l, err := graph.UnmarshalLayout([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if l.Direction != graph.DirectionRL {
		t.Errorf("Direction = %q, want RL from config", l.Direction)
	}

	out, err = run(t, flowYAML, "layout", "-", "--input-format", "yaml", "-o", "-", "-d", "BT")
	if err != nil {
		t.Fatal(err)
	}
	if l, _ = graph.UnmarshalLayout([]byte(out)); l == nil || l.Direction != graph.DirectionBT {
		t.Error("flag should override config direction")
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flow.yaml", flowYAML)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"layout", filepath.Join(dir, "missing.json"), "--no-cache"}},
		{"bad direction", []string{"layout", input, "-d", "up", "--no-cache"}},
		{"bad engine", []string{"layout", input, "--engine", "elk", "--no-cache"}},
		{"yaml output", []string{"layout", input, "--format", "yaml", "--no-cache"}},
		{"no args", []string{"layout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "", tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestInspectCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flow.yaml", flowYAML)
	if _, err := run(t, "", "layout", input, "--engine", "simple", "--measure", "cells", "--no-cache"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "inspect", filepath.Join(dir, "flow.layout.json"))
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"4 nodes", "1 groups", "3 edges", "check", "Valid?", "diamond", "backend", "check → store"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	isolate(t)
	dir := cacheDir(nil)

	out, err := run(t, "", "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "layout:abc", []byte("{}"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "layout:abc"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "", "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the program")
	}
}

func TestLayoutRows(t *testing.T) {
	l := &graph.Layout{
		Width: 200, Height: 100,
		Nodes: []*graph.PositionedNode{{ID: "a", Label: "A", Shape: "rect", X: 10, Y: 20, Width: 60, Height: 36}},
		Edges: []*graph.PositionedEdge{{Source: "a", Target: "b", Points: []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 5.5, Y: 10}}}},
		Groups: []*graph.PositionedGroup{{ID: "g", Children: []*graph.PositionedGroup{{ID: "h"}}}},
	}
	rows := layoutRows(l)
	if len(rows) != 4 {
		t.Fatalf("layoutRows() = %d rows, want 4", len(rows))
	}
	if rows[0].ID != "g" || rows[1].ID != "h" || rows[1].Depth != 1 {
		t.Errorf("groups not listed parents first: %+v", rows[:2])
	}
	if got := rows[2].cells()[4]; got != "10,20 60×36" {
		t.Errorf("node box = %q", got)
	}
	if rows[3].Detail != "1 bend" || rows[3].W != 5.5 || rows[3].H != 10 {
		t.Errorf("edge row = %+v", rows[3])
	}
}

func TestLayoutBrowser(t *testing.T) {
	l := &graph.Layout{
		Nodes: []*graph.PositionedNode{{ID: "a"}, {ID: "b"}},
		Edges: []*graph.PositionedEdge{{Source: "a", Target: "b", Points: []geom.Point{{}, {Y: 10}}}},
	}
	m := NewLayoutBrowser(l, layoutRows(l))
	if len(m.Visible) != 3 {
		t.Fatalf("Visible = %d, want 3", len(m.Visible))
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(LayoutBrowser)
	if r, _ := m.Selected(); r.ID != "b" {
		t.Errorf("after down selected %q, want b", r.ID)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab}) // nodes only
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab}) // groups only
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab}) // edges only
	m = next.(LayoutBrowser)
	if len(m.Visible) != 1 || m.Cursor != 0 {
		t.Errorf("edge filter shows %d rows, cursor %d", len(m.Visible), m.Cursor)
	}
	if !strings.Contains(m.View(), "a → b") {
		t.Error("view does not show the edge")
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestLayoutSpacingFlagsDocumentZero(t *testing.T) {
	cmd, _, err := New(io.Discard, LogInfo).RootCommand().Find([]string{"layout"})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"padding", "node-spacing", "layer-spacing"} {
		if f := cmd.Flags().Lookup(name); f == nil || !strings.Contains(f.Usage, "0 uses the default") {
			t.Errorf("--%s usage does not say that 0 selects the default", name)
		}
	}
}
