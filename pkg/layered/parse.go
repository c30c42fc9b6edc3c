package layered

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/matzehuels/orthoflow/pkg/geom"
)

// collector implements gographviz.Interface and keeps every attribute as
// a raw string. The strict gographviz.Graph rejects several attributes
// that dot writes back (bb, lp, _draw_ and friends).
type collector struct {
	name     string
	graph    map[string]string
	nodes    map[string]map[string]string
	edges    map[string]map[string]string
	clusters map[string]map[string]string
}

func newCollector() *collector {
	return &collector{
		graph:    make(map[string]string),
		nodes:    make(map[string]map[string]string),
		edges:    make(map[string]map[string]string),
		clusters: make(map[string]map[string]string),
	}
}

func (c *collector) SetStrict(bool) error   { return nil }
func (c *collector) SetDir(bool) error      { return nil }
func (c *collector) SetName(n string) error { c.name = unquote(n); return nil }
func (c *collector) String() string         { return c.name }

func (c *collector) AddNode(_ string, name string, attrs map[string]string) error {
	id := unquote(name)
	m, ok := c.nodes[id]
	if !ok {
		m = make(map[string]string, len(attrs))
		c.nodes[id] = m
	}
	merge(m, attrs)
	return nil
}

func (c *collector) AddEdge(_, _ string, _ bool, attrs map[string]string) error {
	id, ok := attrs["id"]
	if !ok {
		return nil
	}
	id = unquote(id)
	m, ok := c.edges[id]
	if !ok {
		m = make(map[string]string, len(attrs))
		c.edges[id] = m
	}
	merge(m, attrs)
	return nil
}

func (c *collector) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return c.AddEdge(src, dst, directed, attrs)
}

func (c *collector) AddAttr(parent, field, value string) error {
	parent = unquote(parent)
	if parent == c.name {
		c.graph[field] = unquote(value)
		return nil
	}
	m, ok := c.clusters[parent]
	if !ok {
		m = make(map[string]string)
		c.clusters[parent] = m
	}
	m[field] = unquote(value)
	return nil
}

// AddSubGraph receives the enclosing graph's attributes; only the
// subgraph's own statements (AddAttr) describe it.
func (c *collector) AddSubGraph(_, name string, _ map[string]string) error {
	name = unquote(name)
	if _, ok := c.clusters[name]; !ok {
		c.clusters[name] = make(map[string]string)
	}
	return nil
}

func merge(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = unquote(v)
	}
}

// unquote strips surrounding double quotes and the backslash-newline
// continuations dot inserts into long values.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "\\\r\n", "")
	return strings.ReplaceAll(s, "\\\n", "")
}

// frame converts dot's y-up points into y-down canvas pixels.
type frame struct {
	llx, ury         float64
	marginX, marginY float64
}

func (f frame) point(x, y float64) geom.Point {
	return geom.Point{X: x - f.llx + f.marginX, Y: f.ury - y + f.marginY}
}

func parseOutput(out string, g *Graph, n *names) (*Result, error) {
	ast, err := gographviz.ParseString(out)
	if err != nil {
		return nil, fmt.Errorf("parse dot output: %w", err)
	}
	c := newCollector()
	if err := gographviz.Analyse(ast, c); err != nil {
		return nil, fmt.Errorf("analyse dot output: %w", err)
	}

	bb, err := parseFloats(c.graph["bb"], 4)
	if err != nil {
		return nil, fmt.Errorf("graph bb: %w", err)
	}
	f := frame{llx: bb[0], ury: bb[3], marginX: g.MarginX, marginY: g.MarginY}
	res := &Result{
		Width:    bb[2] - bb[0] + 2*g.MarginX,
		Height:   bb[3] - bb[1] + 2*g.MarginY,
		Nodes:    make(map[string]geom.Point, len(g.Nodes)),
		Clusters: make(map[string]geom.Rect),
		Edges:    make([]EdgeResult, len(g.Edges)),
	}

	for dot, id := range n.leaves {
		attrs, ok := c.nodes[dot]
		if !ok {
			return nil, fmt.Errorf("leaf %q missing from dot output", id)
		}
		p, err := parseFloats(attrs["pos"], 2)
		if err != nil {
			return nil, fmt.Errorf("leaf %q pos: %w", id, err)
		}
		res.Nodes[id] = f.point(p[0], p[1])
	}

	for dot, id := range n.clusters {
		attrs, ok := c.clusters[dot]
		if !ok || attrs["bb"] == "" {
			continue
		}
		b, err := parseFloats(attrs["bb"], 4)
		if err != nil {
			return nil, fmt.Errorf("cluster %q bb: %w", id, err)
		}
		tl := f.point(b[0], b[3])
		res.Clusters[id] = geom.Rect{X: tl.X, Y: tl.Y, Width: b[2] - b[0], Height: b[3] - b[1]}
	}

	for i, e := range g.Edges {
		attrs, ok := c.edges[fmt.Sprintf("e%d", i)]
		if !ok {
			return nil, fmt.Errorf("edge %d (%s -> %s) missing from dot output", i, e.Source, e.Target)
		}
		pts, err := parseSpline(attrs["pos"], f)
		if err != nil {
			return nil, fmt.Errorf("edge %d pos: %w", i, err)
		}
		if e.Source != e.Target && len(pts) > 1 {
			src, dst := res.Nodes[e.Source], res.Nodes[e.Target]
			if pts[0].Dist(dst) < pts[0].Dist(src) {
				reverse(pts)
			}
		}
		res.Edges[i].Points = pts
		if lp := attrs["lp"]; lp != "" && e.Labeled() {
			p, err := parseFloats(lp, 2)
			if err != nil {
				return nil, fmt.Errorf("edge %d lp: %w", i, err)
			}
			pt := f.point(p[0], p[1])
			res.Edges[i].Label = &pt
		}
	}
	return res, nil
}

// parseSpline reads a dot spline ("[s,x,y] [e,x,y] p0 p1 p2 p3 ...") and
// keeps the on-curve points p0, p3, p6, ... With splines=polyline these
// are the polyline vertices.
func parseSpline(s string, f frame) ([]geom.Point, error) {
	var ctrl []geom.Point
	for _, tok := range strings.Fields(s) {
		if strings.HasPrefix(tok, "s,") || strings.HasPrefix(tok, "e,") {
			continue
		}
		p, err := parseFloats(tok, 2)
		if err != nil {
			return nil, err
		}
		ctrl = append(ctrl, f.point(p[0], p[1]))
	}
	if len(ctrl) < 2 {
		return nil, fmt.Errorf("spline %q has fewer than 2 points", s)
	}
	var pts []geom.Point
	for i := 0; i < len(ctrl); i += 3 {
		pts = append(pts, ctrl[i])
	}
	if last := ctrl[len(ctrl)-1]; pts[len(pts)-1] != last {
		pts = append(pts, last)
	}
	return pts, nil
}

func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d numbers in %q", want, s)
	}
	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func reverse(pts []geom.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
