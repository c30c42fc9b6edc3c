package layered

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orthoflow/pkg/geom"
)

const pointsPerInch = 72.0

// Graphviz is an [Engine] backed by the dot layout of go-graphviz.
type Graphviz struct{}

// NewGraphviz returns a Graphviz engine.
func NewGraphviz() *Graphviz { return &Graphviz{} }

// names maps caller ids to the synthetic DOT identifiers used in a run.
// Caller ids may contain anything; DOT ids are kept to [a-z0-9_].
type names struct {
	nodes    map[string]string
	leaves   map[string]string
	clusters map[string]string
}

func newNames(g *Graph) *names {
	n := &names{
		nodes:    make(map[string]string, len(g.Nodes)),
		leaves:   make(map[string]string, len(g.Nodes)),
		clusters: make(map[string]string),
	}
	for i, node := range g.Nodes {
		dot := fmt.Sprintf("n%d", i)
		n.nodes[node.ID] = dot
		n.leaves[dot] = node.ID
	}
	i := 0
	for _, c := range g.Clusters {
		c.Walk(func(c *Cluster) {
			n.clusters[fmt.Sprintf("cluster_%d", i)] = c.ID
			i++
		})
	}
	return n
}

// ToDOT renders g as the DOT source submitted to Graphviz. Leaves become
// fixed-size boxes, label sizes become fixed-size HTML tables so that the
// reported label position is the center of the reserved box.
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	writeDOT(&buf, g, newNames(g))
	return buf.String()
}

func writeDOT(buf *bytes.Buffer, g *Graph, n *names) {
	rankdir := g.RankDir
	if rankdir == "" {
		rankdir = TopBottom
	}

	buf.WriteString("digraph G {\n")
	fmt.Fprintf(buf, "  graph [rankdir=%s, nodesep=%s, ranksep=%s, splines=polyline, margin=0];\n",
		rankdir, inches(g.NodeSep), inches(g.RankSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\", margin=0];\n")
	buf.WriteString("  edge [dir=none];\n")

	for i, node := range g.Nodes {
		fmt.Fprintf(buf, "  n%d [width=%s, height=%s];\n", i, inches(node.Width), inches(node.Height))
	}

	i := 0
	var writeCluster func(c *Cluster, indent string)
	writeCluster = func(c *Cluster, indent string) {
		fmt.Fprintf(buf, "%ssubgraph cluster_%d {\n", indent, i)
		i++
		if c.LabelWidth > 0 && c.LabelHeight > 0 {
			fmt.Fprintf(buf, "%s  graph [label=%s, labeljust=l, labelloc=t, margin=8];\n",
				indent, htmlBox(c.LabelWidth, c.LabelHeight))
		} else {
			fmt.Fprintf(buf, "%s  graph [label=\"\", margin=8];\n", indent)
		}
		for _, id := range c.Nodes {
			fmt.Fprintf(buf, "%s  %s;\n", indent, n.nodes[id])
		}
		for _, child := range c.Clusters {
			writeCluster(child, indent+"  ")
		}
		fmt.Fprintf(buf, "%s}\n", indent)
	}
	for _, c := range g.Clusters {
		writeCluster(c, "  ")
	}

	for i, e := range g.Edges {
		attrs := []string{fmt.Sprintf("id=e%d", i)}
		if e.Weight > 1 {
			attrs = append(attrs, fmt.Sprintf("weight=%d", e.Weight))
		}
		if e.Labeled() {
			attrs = append(attrs, "label="+htmlBox(e.LabelWidth, e.LabelHeight))
		}
		fmt.Fprintf(buf, "  %s -> %s [%s];\n", n.nodes[e.Source], n.nodes[e.Target], strings.Join(attrs, ", "))
	}
	buf.WriteString("}\n")
}

func inches(px float64) string {
	return fmt.Sprintf("%.4f", px/pointsPerInch)
}

func htmlBox(w, h float64) string {
	return fmt.Sprintf(`<<TABLE BORDER="0" CELLBORDER="0" CELLSPACING="0" CELLPADDING="0"><TR><TD WIDTH="%d" HEIGHT="%d" FIXEDSIZE="TRUE"></TD></TR></TABLE>>`,
		int(math.Ceil(w)), int(math.Ceil(h)))
}

// Run lays out g with dot and converts the result to canvas pixels.
func (e *Graphviz) Run(ctx context.Context, g *Graph) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layered graph: %w", err)
	}
	if len(g.Nodes) == 0 {
		return &Result{
			Width:    2 * g.MarginX,
			Height:   2 * g.MarginY,
			Nodes:    map[string]geom.Point{},
			Clusters: map[string]geom.Rect{},
		}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := newNames(g)
	var src bytes.Buffer
	writeDOT(&src, g, n)

	out, err := renderDOT(ctx, src.Bytes())
	if err != nil {
		return nil, err
	}
	return parseOutput(out, g, n)
}

func renderDOT(ctx context.Context, src []byte) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes(src)
	if err != nil {
		return "", fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}
