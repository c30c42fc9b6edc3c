package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/orthoflow/pkg/errors"
	"github.com/matzehuels/orthoflow/pkg/geom"
	"github.com/matzehuels/orthoflow/pkg/shape"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", "", false},
		{"TD", DirectionTD, false},
		{"lr", DirectionLR, false},
		{" bt ", DirectionBT, false},
		{"up", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidDirection) {
				t.Errorf("ParseDirection(%q) code = %v", tt.in, errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDirectionPredicates(t *testing.T) {
	tests := []struct {
		d        Direction
		vertical bool
	}{
		{"", true},
		{DirectionTD, true},
		{DirectionTB, true},
		{DirectionBT, true},
		{DirectionLR, false},
		{DirectionRL, false},
	}
	for _, tt := range tests {
		if got := tt.d.Vertical(); got != tt.vertical {
			t.Errorf("%q.Vertical() = %v, want %v", tt.d, got, tt.vertical)
		}
	}

	if DirectionTB.Differs(DirectionTD) {
		t.Error("TB should not differ from TD")
	}
	if Direction("").Differs(DirectionLR) {
		t.Error("empty direction should never differ")
	}
	if !DirectionLR.Differs(DirectionTD) {
		t.Error("LR should differ from TD")
	}
	if !DirectionLR.Differs("") {
		t.Error("LR should differ from an unset parent")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		g        Graph
		wantCode errors.Code
	}{
		{
			name: "valid",
			g: Graph{
				Nodes:  []Node{{ID: "a"}, {ID: "b", Shape: shape.Diamond}},
				Edges:  []Edge{{Source: "a", Target: "b"}, {Source: "a", Target: "missing"}},
				Groups: []*Group{{ID: "g", Direction: DirectionLR, Nodes: []string{"b", "ghost"}}},
			},
		},
		{
			name:     "duplicate node",
			g:        Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "empty id",
			g:        Graph{Nodes: []Node{{ID: ""}}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown shape",
			g:        Graph{Nodes: []Node{{ID: "a", Shape: "blob"}}},
			wantCode: errors.ErrCodeInvalidShape,
		},
		{
			name:     "bad graph direction",
			g:        Graph{Direction: "sideways"},
			wantCode: errors.ErrCodeInvalidDirection,
		},
		{
			name: "bad group direction",
			g: Graph{Groups: []*Group{{ID: "g", Groups: []*Group{
				{ID: "h", Direction: "diagonal"},
			}}}},
			wantCode: errors.ErrCodeInvalidDirection,
		},
		{
			name:     "duplicate nested group",
			g:        Graph{Groups: []*Group{{ID: "g", Groups: []*Group{{ID: "g"}}}}},
			wantCode: errors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("Validate() code = %v, want %v (err %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestNodeStyle(t *testing.T) {
	g := Graph{
		ClassDefs: map[string]Style{"hot": {"fill": "red", "stroke": "black"}},
		Classes:   map[string]string{"a": "hot"},
		Styles:    map[string]Style{"a": {"fill": "blue"}, "b": {"color": "white"}},
	}

	a := g.NodeStyle("a")
	if a["fill"] != "blue" || a["stroke"] != "black" {
		t.Errorf("NodeStyle(a) = %v, want inline fill over class stroke", a)
	}
	if b := g.NodeStyle("b"); b["color"] != "white" || len(b) != 1 {
		t.Errorf("NodeStyle(b) = %v, want only inline color", b)
	}
	if c := g.NodeStyle("c"); c != nil {
		t.Errorf("NodeStyle(c) = %v, want nil", c)
	}
}

func TestEdgeDefaults(t *testing.T) {
	e := Edge{Source: "a", Target: "b"}
	if !e.HasArrowEnd() {
		t.Error("HasArrowEnd() = false, want true by default")
	}
	if e.LineStyle() != LineSolid {
		t.Errorf("LineStyle() = %v, want solid", e.LineStyle())
	}
	off := false
	e.ArrowEnd = &off
	if e.HasArrowEnd() {
		t.Error("HasArrowEnd() = true, want false when disabled")
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{
			name:   "json",
			format: FormatJSON,
			input: `{
				"direction": "LR",
				"nodes": [{"id": "a", "label": "Start"}, {"id": "b", "shape": "circle"}],
				"edges": [{"source": "a", "target": "b", "label": "go"}],
				"groups": [{"id": "g", "nodes": ["b"]}]
			}`,
		},
		{
			name:   "yaml",
			format: FormatYAML,
			input: `
direction: LR
nodes:
  - id: a
    label: Start
  - id: b
    shape: circle
edges:
  - source: a
    target: b
    label: go
groups:
  - id: g
    nodes: [b]
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadGraph() error = %v", err)
			}
			if g.Direction != DirectionLR {
				t.Errorf("Direction = %v, want LR", g.Direction)
			}
			if len(g.Nodes) != 2 || g.Nodes[1].Kind() != shape.Circle {
				t.Errorf("Nodes = %+v, want 2 with a circle", g.Nodes)
			}
			if len(g.Edges) != 1 || g.Edges[0].Label != "go" {
				t.Errorf("Edges = %+v, want one labeled edge", g.Edges)
			}
			if len(g.Groups) != 1 || g.Groups[0].Nodes[0] != "b" {
				t.Errorf("Groups = %+v, want g containing b", g.Groups)
			}
		})
	}
}

func TestReadGraphInvalid(t *testing.T) {
	_, err := ReadGraph(strings.NewReader(`{"nodes": [`), FormatJSON)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ReadGraph(truncated) code = %v, want INVALID_INPUT", errors.GetCode(err))
	}

	_, err = ReadGraph(strings.NewReader(`{}`), FormatMsgpack)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ReadGraph(msgpack) code = %v, want INVALID_FORMAT", errors.GetCode(err))
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	_, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadGraphFile() code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestMarshalGraphStable(t *testing.T) {
	g := &Graph{
		Nodes:  []Node{{ID: "a"}, {ID: "b"}},
		Edges:  []Edge{{Source: "a", Target: "b"}},
		Styles: map[string]Style{"b": {"z": "1", "a": "2"}, "a": {"fill": "red"}},
	}
	first, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error = %v", err)
	}
	second, _ := MarshalGraph(g)
	if !bytes.Equal(first, second) {
		t.Error("MarshalGraph() output differs between calls")
	}
}

func testLayout() *Layout {
	lp := geom.Point{X: 70, Y: 90}
	return &Layout{
		Width:  200,
		Height: 180,
		Nodes: []*PositionedNode{
			{ID: "a", Label: "A", Shape: shape.Rectangle, X: 40, Y: 40, Width: 60, Height: 36},
		},
		Edges: []*PositionedEdge{{
			Source: "a", Target: "a", Style: LineSolid, ArrowEnd: true,
			Points:        []geom.Point{{X: 70, Y: 76}, {X: 70, Y: 120}},
			LabelPosition: &lp, LabelWidth: 20, LabelHeight: 14,
		}},
		Groups: []*PositionedGroup{{ID: "g", X: 20, Y: 20, Width: 100, Height: 100, Children: []*PositionedGroup{
			{ID: "h", X: 30, Y: 30, Width: 50, Height: 50},
		}}},
	}
}

func TestEncodeLayoutMsgpack(t *testing.T) {
	data, err := EncodeLayout(testLayout(), FormatMsgpack)
	if err != nil {
		t.Fatalf("EncodeLayout() error = %v", err)
	}
	l, err := DecodeLayout(data, FormatMsgpack)
	if err != nil {
		t.Fatalf("DecodeLayout() error = %v", err)
	}
	if l.Width != 200 || len(l.Edges) != 1 || l.Edges[0].LabelPosition == nil {
		t.Fatalf("DecodeLayout() = %+v, want canvas and labeled edge preserved", l)
	}
	if got := l.Edges[0].Points[1]; got != (geom.Point{X: 70, Y: 120}) {
		t.Errorf("Points[1] = %v, want {70 120}", got)
	}
	if h, ok := l.Group("h"); !ok || h.Width != 50 {
		t.Errorf("Group(h) = %+v, %v, want nested group", h, ok)
	}
}

func TestDecodeLayoutRejectsShortEdges(t *testing.T) {
	_, err := DecodeLayout([]byte(`{"width":10,"height":10,"nodes":[],"edges":[{"source":"a","target":"b","points":[{"x":1,"y":1}]}]}`), FormatJSON)
	if err == nil {
		t.Error("DecodeLayout() error = nil, want error for single-point edge")
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.msgpack"} {
		path := filepath.Join(dir, name)
		if err := WriteLayoutFile(testLayout(), path, FormatFromPath(path)); err != nil {
			t.Fatalf("WriteLayoutFile(%s) error = %v", name, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("Stat(%s) error = %v", name, err)
		}
		l, err := ReadLayoutFile(path)
		if err != nil {
			t.Fatalf("ReadLayoutFile(%s) error = %v", name, err)
		}
		if n, ok := l.Node("a"); !ok || n.Width != 60 {
			t.Errorf("%s: Node(a) = %+v, %v", name, n, ok)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"g.json":    FormatJSON,
		"g.yaml":    FormatYAML,
		"g.YML":     FormatYAML,
		"g.msgpack": FormatMsgpack,
		"g.txt":     FormatJSON,
		"g":         FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", path, got, want)
		}
	}
}
