package layout

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orthoflow/pkg/errors"
	"github.com/matzehuels/orthoflow/pkg/geom"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/layered"
	"github.com/matzehuels/orthoflow/pkg/observability"
	"github.com/matzehuels/orthoflow/pkg/shape"
	"github.com/matzehuels/orthoflow/pkg/text"
)

// route is the mutable state of one input edge during a run.
type route struct {
	edge          *graph.PositionedEdge
	from, to      anchor
	scope         *graph.Group
	verticalFirst bool
}

// scene owns every positioned entity of a run. Passes look entities up by
// id and mutate them in place.
type scene struct {
	ix     *index
	opts   *Options
	m      text.Measurer
	logger *log.Logger

	nodes  map[string]*graph.PositionedNode
	groups map[string]*graph.PositionedGroup
	routes []*route // by input edge index; nil for skipped edges
	roots  []*graph.PositionedGroup
}

// fragment is the result of laying out one scope, relative to its own
// origin. It lists everything it placed so the parent can move it.
type fragment struct {
	width, height float64
	nodes         []string
	routes        []int
	groups        []*graph.PositionedGroup
}

func newScene(g *graph.Graph, opts *Options, m text.Measurer) *scene {
	s := &scene{
		ix:     newIndex(g, opts.Direction, opts.Logger),
		opts:   opts,
		m:      m,
		logger: opts.Logger,
		nodes:  make(map[string]*graph.PositionedNode, len(g.Nodes)),
		groups: make(map[string]*graph.PositionedGroup),
		routes: make([]*route, len(g.Edges)),
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		w, h := NodeSize(m, n.DisplayLabel(), n.Kind(), opts.WrapWidth)
		s.nodes[n.ID] = &graph.PositionedNode{
			ID:     n.ID,
			Label:  n.DisplayLabel(),
			Shape:  n.Kind(),
			Width:  w,
			Height: h,
			Style:  g.NodeStyle(n.ID),
		}
	}
	g.WalkGroups(func(grp, _ *graph.Group) {
		s.groups[grp.ID] = &graph.PositionedGroup{ID: grp.ID, Label: grp.Label}
	})

	for i := range g.Edges {
		e := &g.Edges[i]
		from, ok := s.ix.resolve(e.Source, true)
		if !ok {
			s.logger.Warn("skipping edge with unknown source", "index", i, "source", e.Source, "target", e.Target)
			continue
		}
		to, ok := s.ix.resolve(e.Target, false)
		if !ok {
			s.logger.Warn("skipping edge with unknown target", "index", i, "source", e.Source, "target", e.Target)
			continue
		}

		pe := &graph.PositionedEdge{
			Source:     e.Source,
			Target:     e.Target,
			Label:      e.Label,
			Style:      e.LineStyle(),
			ArrowStart: e.ArrowStart,
			ArrowEnd:   e.HasArrowEnd(),
		}
		if e.Label != "" {
			pe.LabelWidth, pe.LabelHeight = EdgeLabelSize(m, e.Label, opts.WrapWidth)
		}
		s.routes[i] = &route{edge: pe, from: from, to: to, scope: s.ix.scope(from, to)}
	}
	return s
}

func nodeLeaf(id string) string  { return "n:" + id }
func groupLeaf(id string) string { return "g:" + id }

func leafID(a anchor) string {
	if a.group {
		return groupLeaf(a.id)
	}
	return nodeLeaf(a.id)
}

func rankDir(d graph.Direction) layered.RankDir {
	switch d.Canonical() {
	case graph.DirectionBT:
		return layered.BottomTop
	case graph.DirectionLR:
		return layered.LeftRight
	case graph.DirectionRL:
		return layered.RightLeft
	}
	return layered.TopBottom
}

func scopeName(scope *graph.Group) string {
	if scope == nil {
		return "root"
	}
	return scope.ID
}

// headerWidth is the width a group needs to show its header, or zero when
// it has no label.
func (s *scene) headerWidth(grp *graph.Group) float64 {
	if grp.Label == "" {
		return 0
	}
	return HeaderWidth(s.m, grp.Label)
}

// compile lays out the whole graph and records the root group forest.
func (s *scene) compile(ctx context.Context) (*fragment, error) {
	f, err := s.compileScope(ctx, nil, s.ix.rootDir)
	if err != nil {
		return nil, err
	}
	s.roots = f.groups
	return f, nil
}

// compileScope lays out the contents of scope (nil for the root) in
// direction dir. Nested direction overrides are compiled first and enter
// this scope as fixed-size leaves; afterwards their geometry is moved onto
// the placeholder the primitive assigned.
func (s *scene) compileScope(ctx context.Context, scope *graph.Group, dir graph.Direction) (*fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "layout canceled")
	}

	members, children := s.ix.loose, s.ix.g.Groups
	marginX, marginY := s.opts.Padding, s.opts.Padding
	if scope != nil {
		members, children = s.ix.members[scope.ID], scope.Groups
		marginX, marginY = islandMarginX, islandMarginY
	}

	islands := make(map[string]*fragment)
	if err := s.compileIslands(ctx, children, islands); err != nil {
		return nil, err
	}

	lg := &layered.Graph{
		RankDir: rankDir(dir),
		NodeSep: s.opts.NodeSpacing,
		RankSep: s.opts.LayerSpacing,
		MarginX: marginX,
		MarginY: marginY,
	}
	s.addContent(lg, nil, members, children, islands)

	var edges []int
	targets := make(map[string]bool)
	for i, r := range s.routes {
		if r == nil || r.scope != scope {
			continue
		}
		e := layered.Edge{
			Source: leafID(s.ix.leafIn(scope, r.from)),
			Target: leafID(s.ix.leafIn(scope, r.to)),
			Weight: 1,
		}
		if !targets[e.Target] {
			targets[e.Target] = true
			e.Weight = 2
		}
		if r.edge.Label != "" {
			e.LabelWidth, e.LabelHeight = r.edge.LabelWidth, r.edge.LabelHeight
		}
		lg.Edges = append(lg.Edges, e)
		edges = append(edges, i)
	}

	start := time.Now()
	res, err := s.opts.Engine.Run(ctx, lg)
	observability.Layout().OnPrimitiveRun(ctx, scopeName(scope), len(lg.Nodes), time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "layout canceled")
		}
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "lay out %s", scopeName(scope))
	}
	if len(res.Edges) != len(lg.Edges) {
		return nil, errors.New(errors.ErrCodeLayoutFailed, "lay out %s: got %d edge routes for %d edges",
			scopeName(scope), len(res.Edges), len(lg.Edges))
	}
	s.logger.Debug("laid out scope", "scope", scopeName(scope), "direction", dir,
		"leaves", len(lg.Nodes), "edges", len(lg.Edges), "islands", len(islands), "duration", time.Since(start))

	f := &fragment{width: res.Width, height: res.Height}
	f.groups = s.extract(res, members, children, islands, f)
	for k, i := range edges {
		s.extractRoute(scope, dir, i, res.Edges[k])
		f.routes = append(f.routes, i)
	}
	s.attachCrossing(scope, edges)
	return f, nil
}

// compileIslands compiles every direction override below children,
// stopping at each override since it compiles its own descendants.
func (s *scene) compileIslands(ctx context.Context, children []*graph.Group, out map[string]*fragment) error {
	for _, grp := range children {
		if !s.ix.island[grp.ID] {
			if err := s.compileIslands(ctx, grp.Groups, out); err != nil {
				return err
			}
			continue
		}
		f, err := s.compileScope(ctx, grp, s.ix.dir[grp.ID])
		if err != nil {
			return err
		}
		out[grp.ID] = f
	}
	return nil
}

// addContent adds members and children to lg, inside parent when it is
// not nil. Islands and empty groups become leaves; other groups become
// clusters.
func (s *scene) addContent(lg *layered.Graph, parent *layered.Cluster, members []string, children []*graph.Group, islands map[string]*fragment) {
	addLeaf := func(id string, w, h float64) {
		lg.Nodes = append(lg.Nodes, layered.Node{ID: id, Width: w, Height: h})
		if parent != nil {
			parent.Nodes = append(parent.Nodes, id)
		}
	}

	for _, id := range members {
		n := s.nodes[id]
		addLeaf(nodeLeaf(id), n.Width, n.Height)
	}

	for _, grp := range children {
		pg := s.groups[grp.ID]
		if f, ok := islands[grp.ID]; ok {
			pg.Width, pg.Height = f.width, f.height
			addLeaf(groupLeaf(grp.ID), pg.Width, pg.Height)
			continue
		}
		if s.ix.empty(grp) {
			pg.Width, pg.Height = math.Max(shape.MinWidth, s.headerWidth(grp)), shape.MinHeight
			addLeaf(groupLeaf(grp.ID), pg.Width, pg.Height)
			continue
		}

		c := &layered.Cluster{ID: groupLeaf(grp.ID)}
		if grp.Label != "" {
			c.LabelWidth, c.LabelHeight = s.headerWidth(grp), HeaderHeight
		}
		s.addContent(lg, c, s.ix.members[grp.ID], grp.Groups, islands)
		if parent != nil {
			parent.Clusters = append(parent.Clusters, c)
		} else {
			lg.Clusters = append(lg.Clusters, c)
		}
	}
}

// extract reads node and group boxes back from res, mirroring addContent.
// It returns the positioned groups for children in input order.
func (s *scene) extract(res *layered.Result, members []string, children []*graph.Group, islands map[string]*fragment, f *fragment) []*graph.PositionedGroup {
	for _, id := range members {
		n := s.nodes[id]
		c := res.Nodes[nodeLeaf(id)]
		n.X, n.Y = c.X-n.Width/2, c.Y-n.Height/2
		f.nodes = append(f.nodes, id)
	}

	out := make([]*graph.PositionedGroup, 0, len(children))
	for _, grp := range children {
		pg := s.groups[grp.ID]
		out = append(out, pg)

		if island, ok := islands[grp.ID]; ok {
			pg.SetRect(geom.RectFromCenter(res.Nodes[groupLeaf(grp.ID)], pg.Width, pg.Height))
			s.translate(island, pg.X, pg.Y)
			pg.Children = island.groups
			f.nodes = append(f.nodes, island.nodes...)
			f.routes = append(f.routes, island.routes...)
			continue
		}
		if s.ix.empty(grp) {
			pg.SetRect(geom.RectFromCenter(res.Nodes[groupLeaf(grp.ID)], pg.Width, pg.Height))
			continue
		}

		pg.Children = s.extract(res, s.ix.members[grp.ID], grp.Groups, islands, f)
		if box, ok := res.Clusters[groupLeaf(grp.ID)]; ok {
			pg.SetRect(box)
		} else if box, ok := s.contentBox(grp); ok {
			pg.SetRect(geom.Rect{X: box.X - 8, Y: box.Y - 8, Width: box.Width + 16, Height: box.Height + 16})
		}
	}
	return out
}

// extractRoute turns the primitive's polyline for edge i into an
// orthogonal route. Endpoints on non-rectangular nodes are clipped before
// snapping, while the raw approach angle is still meaningful.
func (s *scene) extractRoute(scope *graph.Group, dir graph.Direction, i int, er layered.EdgeResult) {
	r := s.routes[i]
	pts := append([]geom.Point(nil), er.Points...)
	if len(pts) < 2 {
		pts = []geom.Point{s.center(r.from), s.center(r.to)}
	}

	if s.ix.leafIn(scope, r.from) == r.from && !r.from.group {
		n := s.nodes[r.from.id]
		pts[0] = shape.Clip(n.Shape, pts[0], n.Rect())
	}
	if s.ix.leafIn(scope, r.to) == r.to && !r.to.group {
		n := s.nodes[r.to.id]
		pts[len(pts)-1] = shape.Clip(n.Shape, pts[len(pts)-1], n.Rect())
	}

	r.verticalFirst = dir.Vertical()
	r.edge.Points = SnapToOrthogonal(pts, r.verticalFirst)
	if er.Label != nil && r.edge.Label != "" {
		p := *er.Label
		r.edge.LabelPosition = &p
	}
}

// attachCrossing moves the endpoints of edges that were ranked against an
// island placeholder onto the center of the real endpoint inside it.
func (s *scene) attachCrossing(scope *graph.Group, edges []int) {
	for _, i := range edges {
		r := s.routes[i]
		pts := r.edge.Points
		moved := false
		if s.ix.leafIn(scope, r.from) != r.from {
			pts[0] = s.center(r.from)
			moved = true
		}
		if s.ix.leafIn(scope, r.to) != r.to {
			pts[len(pts)-1] = s.center(r.to)
			moved = true
		}
		if moved {
			r.edge.Points = SnapToOrthogonal(pts, r.verticalFirst)
		}
	}
}

// translate moves everything f placed by (dx, dy).
func (s *scene) translate(f *fragment, dx, dy float64) {
	for _, id := range f.nodes {
		n := s.nodes[id]
		n.X += dx
		n.Y += dy
	}
	for _, i := range f.routes {
		e := s.routes[i].edge
		for j := range e.Points {
			e.Points[j] = e.Points[j].Add(dx, dy)
		}
		if e.LabelPosition != nil {
			p := e.LabelPosition.Add(dx, dy)
			e.LabelPosition = &p
		}
	}
	for _, g := range f.groups {
		g.Walk(func(c *graph.PositionedGroup) {
			c.X += dx
			c.Y += dy
		})
	}
}

// box returns the outline an anchor's edges attach to.
func (s *scene) box(a anchor) (shape.Kind, geom.Rect) {
	if a.group {
		return shape.Rectangle, s.groups[a.id].Rect()
	}
	n := s.nodes[a.id]
	return n.Shape, n.Rect()
}

func (s *scene) center(a anchor) geom.Point {
	_, r := s.box(a)
	return r.Center()
}

// contentBox returns the union of the boxes of grp's member nodes and
// child groups. The second result is false when grp has no content.
func (s *scene) contentBox(grp *graph.Group) (geom.Rect, bool) {
	var b geom.Bounds
	for _, id := range s.ix.members[grp.ID] {
		b.AddRect(s.nodes[id].Rect())
	}
	for _, c := range grp.Groups {
		b.AddRect(s.groups[c.ID].Rect())
	}
	if b.Empty() {
		return geom.Rect{}, false
	}
	return geom.Rect{X: b.MinX, Y: b.MinY, Width: b.MaxX - b.MinX, Height: b.MaxY - b.MinY}, true
}
