package layout

import (
	"context"
	"time"

	"github.com/matzehuels/orthoflow/pkg/errors"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/observability"
	"github.com/matzehuels/orthoflow/pkg/text"
)

// Layout computes a positioned diagram for g.
//
// The graph is validated first; dangling references are not an error and
// are skipped with a warning. The only other failures are an invalid
// option, a primitive that cannot lay out the graph (LAYOUT_FAILED) and
// a canceled context (TIMEOUT). There is no partial result.
func Layout(ctx context.Context, g *graph.Graph, opts Options) (*graph.Layout, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()

	m, release, err := opts.measurer()
	if err != nil {
		return nil, err
	}
	defer release()

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, len(g.Nodes), len(g.Edges))
	start := time.Now()
	l, err := run(ctx, g, &opts, m)
	hooks.OnLayoutComplete(ctx, len(g.Nodes), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("layout complete", "nodes", len(l.Nodes), "edges", len(l.Edges),
		"width", l.Width, "height", l.Height, "duration", time.Since(start))
	return l, nil
}

func run(ctx context.Context, g *graph.Graph, opts *Options, m text.Measurer) (*graph.Layout, error) {
	s := newScene(g, opts, m)
	if _, err := s.compile(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "layout canceled")
	}

	s.expandHeaders()
	s.separate()
	s.resnap()
	s.fixBends()
	s.reclip()
	width, height := s.normalize()

	out := &graph.Layout{
		Width:     width,
		Height:    height,
		Direction: s.ix.rootDir,
		Nodes:     make([]*graph.PositionedNode, 0, len(g.Nodes)),
		Edges:     make([]*graph.PositionedEdge, 0, len(g.Edges)),
		Groups:    s.roots,
	}
	for i := range g.Nodes {
		out.Nodes = append(out.Nodes, s.nodes[g.Nodes[i].ID])
	}
	for _, r := range s.routes {
		if r != nil {
			out.Edges = append(out.Edges, r.edge)
		}
	}
	return out, nil
}
