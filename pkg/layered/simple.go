package layered

import (
	"context"
	"fmt"
	"math"

	"github.com/matzehuels/orthoflow/pkg/geom"
)

const (
	clusterPad = 8.0
	loopReach  = 20.0
)

// Simple is a deterministic [Engine] with no external runtime.
//
// Ranks are longest-path ranks after reversing DFS back edges. Within a
// rank, leaves keep input order with cluster members kept together.
// Edges are straight lines between leaf boundaries.
type Simple struct{}

// NewSimple returns a Simple engine.
func NewSimple() *Simple { return &Simple{} }

// Run lays out g.
func (s *Simple) Run(ctx context.Context, g *Graph) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layered graph: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sizes := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		sizes[n.ID] = n
	}
	chains := clusterChains(g)
	seq := linearize(g, chains)
	order := make(map[string]int, len(seq))
	for i, id := range seq {
		order[id] = i
	}
	rank := assignRanks(g, seq, order)

	var byRank [][]string
	for _, id := range seq {
		r := rank[id]
		for len(byRank) <= r {
			byRank = append(byRank, nil)
		}
		byRank[r] = append(byRank[r], id)
	}

	vertical := g.RankDir.Vertical()
	extent := func(id string) (across, along float64) {
		n := sizes[id]
		if vertical {
			return n.Width, n.Height
		}
		return n.Height, n.Width
	}

	// Rank thickness plus room for labels of edges leaving the rank.
	thick := make([]float64, len(byRank))
	labelGap := make([]float64, len(byRank))
	for r, ids := range byRank {
		for _, id := range ids {
			_, along := extent(id)
			thick[r] = math.Max(thick[r], along)
		}
	}
	for _, e := range g.Edges {
		if !e.Labeled() {
			continue
		}
		r := min(rank[e.Source], rank[e.Target])
		l := e.LabelHeight
		if !vertical {
			l = e.LabelWidth
		}
		labelGap[r] = math.Max(labelGap[r], l)
	}

	// Centers in a top-to-bottom frame: x across ranks, y along them.
	centers := make(map[string]geom.Point, len(seq))
	y := 0.0
	for r, ids := range byRank {
		x := 0.0
		for k, id := range ids {
			across, _ := extent(id)
			if k > 0 {
				x += g.NodeSep + 2*clusterPad*float64(chainDistance(chains[ids[k-1]], chains[id]))
			}
			centers[id] = geom.Point{X: x + across/2, Y: y + thick[r]/2}
			x += across
		}
		y += thick[r] + g.RankSep + labelGap[r]
	}

	for id, c := range centers {
		centers[id] = orient(g.RankDir, c)
	}

	res := &Result{
		Nodes:    centers,
		Clusters: make(map[string]geom.Rect),
		Edges:    make([]EdgeResult, len(g.Edges)),
	}
	box := func(id string) geom.Rect {
		n := sizes[id]
		return geom.RectFromCenter(centers[id], n.Width, n.Height)
	}

	var fit func(c *Cluster) (geom.Rect, bool)
	fit = func(c *Cluster) (geom.Rect, bool) {
		var b geom.Bounds
		for _, id := range c.Nodes {
			b.AddRect(box(id))
		}
		for _, child := range c.Clusters {
			if r, ok := fit(child); ok {
				b.AddRect(r)
			}
		}
		if b.Empty() {
			return geom.Rect{}, false
		}
		r := geom.Rect{
			X:      b.MinX - clusterPad,
			Y:      b.MinY - clusterPad - c.LabelHeight,
			Width:  b.MaxX - b.MinX + 2*clusterPad,
			Height: b.MaxY - b.MinY + 2*clusterPad + c.LabelHeight,
		}
		r.Width = math.Max(r.Width, c.LabelWidth+2*clusterPad)
		res.Clusters[c.ID] = r
		return r, true
	}
	for _, c := range g.Clusters {
		fit(c)
	}

	for i, e := range g.Edges {
		src, dst := box(e.Source), box(e.Target)
		if e.Source == e.Target {
			res.Edges[i].Points = selfLoop(src)
		} else {
			res.Edges[i].Points = []geom.Point{
				clipRect(src, dst.Center()),
				clipRect(dst, src.Center()),
			}
		}
		if e.Labeled() {
			pts := res.Edges[i].Points
			mid := geom.Point{
				X: (pts[0].X + pts[len(pts)-1].X) / 2,
				Y: (pts[0].Y + pts[len(pts)-1].Y) / 2,
			}
			res.Edges[i].Label = &mid
		}
	}

	normalize(res, g, sizes)
	return res, nil
}

// clusterChains maps every clustered leaf to its cluster ancestry,
// outermost first.
func clusterChains(g *Graph) map[string][]string {
	chains := make(map[string][]string)
	var walk func(c *Cluster, path []string)
	walk = func(c *Cluster, path []string) {
		path = append(path[:len(path):len(path)], c.ID)
		for _, id := range c.Nodes {
			chains[id] = path
		}
		for _, child := range c.Clusters {
			walk(child, path)
		}
	}
	for _, c := range g.Clusters {
		walk(c, nil)
	}
	return chains
}

// chainDistance counts the cluster boundaries crossed between two leaves.
func chainDistance(a, b []string) int {
	common := 0
	for common < len(a) && common < len(b) && a[common] == b[common] {
		common++
	}
	return len(a) - common + len(b) - common
}

// linearize orders leaves by input order, emitting a whole top-level
// cluster (members first, then nested clusters) at its first leaf.
func linearize(g *Graph, chains map[string][]string) []string {
	top := make(map[string]*Cluster, len(g.Clusters))
	for _, c := range g.Clusters {
		top[c.ID] = c
	}
	var seq []string
	done := make(map[string]bool)
	var emit func(c *Cluster)
	emit = func(c *Cluster) {
		seq = append(seq, c.Nodes...)
		for _, child := range c.Clusters {
			emit(child)
		}
	}
	for _, n := range g.Nodes {
		chain, ok := chains[n.ID]
		if !ok {
			seq = append(seq, n.ID)
			continue
		}
		if !done[chain[0]] {
			done[chain[0]] = true
			emit(top[chain[0]])
		}
	}
	return seq
}

// assignRanks reverses DFS back edges and assigns longest-path ranks.
func assignRanks(g *Graph, seq []string, order map[string]int) map[string]int {
	out := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Source != e.Target {
			out[e.Source] = append(out[e.Source], e.Target)
		}
	}

	const (
		unseen = iota
		active
		finished
	)
	state := make(map[string]int, len(seq))
	forward := make(map[[2]string]bool)
	var dfs func(v string)
	dfs = func(v string) {
		state[v] = active
		for _, w := range out[v] {
			switch state[w] {
			case unseen:
				forward[[2]string{v, w}] = true
				dfs(w)
			case finished:
				forward[[2]string{v, w}] = true
			}
		}
		state[v] = finished
	}
	for _, id := range seq {
		if state[id] == unseen {
			dfs(id)
		}
	}

	indeg := make(map[string]int, len(seq))
	succ := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		s, t := e.Source, e.Target
		if !forward[[2]string{s, t}] {
			s, t = t, s
		}
		succ[s] = append(succ[s], t)
		indeg[t]++
	}

	rank := make(map[string]int, len(seq))
	queue := make([]string, 0, len(seq))
	for _, id := range seq {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range succ[v] {
			rank[w] = max(rank[w], rank[v]+1)
			if indeg[w]--; indeg[w] == 0 {
				queue = insertByOrder(queue, w, order)
			}
		}
	}
	return rank
}

func insertByOrder(queue []string, id string, order map[string]int) []string {
	i := len(queue)
	for i > 0 && order[queue[i-1]] > order[id] {
		i--
	}
	queue = append(queue, "")
	copy(queue[i+1:], queue[i:])
	queue[i] = id
	return queue
}

// orient maps a point from the top-to-bottom frame into dir.
func orient(dir RankDir, p geom.Point) geom.Point {
	switch dir {
	case BottomTop:
		return geom.Point{X: p.X, Y: -p.Y}
	case LeftRight:
		return geom.Point{X: p.Y, Y: p.X}
	case RightLeft:
		return geom.Point{X: -p.Y, Y: p.X}
	}
	return p
}

// clipRect returns the point where the ray from the center of r toward p
// leaves r.
func clipRect(r geom.Rect, p geom.Point) geom.Point {
	c := r.Center()
	dx, dy := p.X-c.X, p.Y-c.Y
	if dx == 0 && dy == 0 {
		return geom.Point{X: c.X, Y: r.Y}
	}
	t := math.Inf(1)
	if dx != 0 {
		t = math.Min(t, r.Width/2/math.Abs(dx))
	}
	if dy != 0 {
		t = math.Min(t, r.Height/2/math.Abs(dy))
	}
	return geom.Point{X: c.X + t*dx, Y: c.Y + t*dy}
}

func selfLoop(r geom.Rect) []geom.Point {
	top, bottom := r.CenterY()-r.Height/4, r.CenterY()+r.Height/4
	return []geom.Point{
		{X: r.Right(), Y: top},
		{X: r.Right() + loopReach, Y: top},
		{X: r.Right() + loopReach, Y: bottom},
		{X: r.Right(), Y: bottom},
	}
}

// normalize moves everything so the drawing starts at the margins and
// sets the canvas size.
func normalize(res *Result, g *Graph, sizes map[string]Node) {
	var b geom.Bounds
	for id, c := range res.Nodes {
		n := sizes[id]
		b.AddRect(geom.RectFromCenter(c, n.Width, n.Height))
	}
	for _, r := range res.Clusters {
		b.AddRect(r)
	}
	for i, e := range res.Edges {
		for _, p := range e.Points {
			b.AddPoint(p)
		}
		if e.Label != nil {
			b.AddRect(geom.RectFromCenter(*e.Label, g.Edges[i].LabelWidth, g.Edges[i].LabelHeight))
		}
	}
	if b.Empty() {
		res.Width, res.Height = 2*g.MarginX, 2*g.MarginY
		return
	}

	dx, dy := g.MarginX-b.MinX, g.MarginY-b.MinY
	for id, c := range res.Nodes {
		res.Nodes[id] = c.Add(dx, dy)
	}
	for id, r := range res.Clusters {
		res.Clusters[id] = r.Translate(dx, dy)
	}
	for i := range res.Edges {
		e := &res.Edges[i]
		for j := range e.Points {
			e.Points[j] = e.Points[j].Add(dx, dy)
		}
		if e.Label != nil {
			moved := e.Label.Add(dx, dy)
			e.Label = &moved
		}
	}
	res.Width = b.MaxX - b.MinX + 2*g.MarginX
	res.Height = b.MaxY - b.MinY + 2*g.MarginY
}
