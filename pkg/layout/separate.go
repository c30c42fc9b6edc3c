package layout

import (
	"sort"

	"github.com/matzehuels/orthoflow/pkg/geom"
	"github.com/matzehuels/orthoflow/pkg/graph"
)

// sibling is one item of a nesting level: a child group or a node that
// sits directly in the parent.
type sibling struct {
	group *graph.Group
	node  string
}

// separate pushes overlapping siblings apart, innermost levels first,
// finishing with the top level of the canvas.
func (s *scene) separate() {
	for _, grp := range s.ix.g.Groups {
		s.separateGroup(grp)
	}
	s.separateLevel(s.ix.loose, s.ix.g.Groups)
}

func (s *scene) separateGroup(grp *graph.Group) {
	for _, c := range grp.Groups {
		s.separateGroup(c)
	}
	s.separateLevel(s.ix.members[grp.ID], grp.Groups)
	s.refit(grp)
}

func (s *scene) rect(it sibling) geom.Rect {
	if it.group != nil {
		return s.groups[it.group.ID].Rect()
	}
	return s.nodes[it.node].Rect()
}

// separateLevel sweeps the items of one level from top to bottom. Each
// item is moved down until it clears every earlier item whose x range it
// overlaps by at least MinGap. Earlier items are final, so one sweep
// leaves no overlap.
func (s *scene) separateLevel(nodes []string, groups []*graph.Group) {
	if len(nodes)+len(groups) < 2 {
		return
	}
	items := make([]sibling, 0, len(nodes)+len(groups))
	for _, g := range groups {
		items = append(items, sibling{group: g})
	}
	for _, id := range nodes {
		items = append(items, sibling{node: id})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := s.rect(items[i]), s.rect(items[j])
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	for i, it := range items {
		r := s.rect(it)
		need := r.Y
		for _, prev := range items[:i] {
			p := s.rect(prev)
			if p.OverlapsX(r) {
				need = max(need, p.Bottom()+MinGap)
			}
		}
		if dy := need - r.Y; dy > 0 {
			s.shift(it, dy)
		}
	}
}

// shift moves an item down by dy. A group carries its descendant groups
// and their member nodes along. Route points and label anchors inside the
// item's box before the move go with it.
func (s *scene) shift(it sibling, dy float64) {
	s.shiftPoints(s.rect(it), dy)
	if it.group == nil {
		s.nodes[it.node].Y += dy
		return
	}

	var walk func(grp *graph.Group)
	walk = func(grp *graph.Group) {
		s.groups[grp.ID].Y += dy
		for _, id := range s.ix.members[grp.ID] {
			s.nodes[id].Y += dy
		}
		for _, c := range grp.Groups {
			walk(c)
		}
	}
	walk(it.group)
}

func (s *scene) shiftPoints(box geom.Rect, dy float64) {
	for _, r := range s.routes {
		if r == nil {
			continue
		}
		for j, p := range r.edge.Points {
			if box.Contains(p) {
				r.edge.Points[j].Y += dy
			}
		}
		if lp := r.edge.LabelPosition; lp != nil && box.Contains(*lp) {
			moved := lp.Add(0, dy)
			r.edge.LabelPosition = &moved
		}
	}
}
