package layout

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/orthoflow/pkg/graph"
)

// anchor is an edge endpoint after group redirection: either a node or a
// group that is laid out as a single box (an empty group or an island).
type anchor struct {
	id    string
	group bool
}

// index holds the lookups every pass needs. It is built once per run and
// never mutated afterwards.
type index struct {
	g       *graph.Graph
	nodes   map[string]*graph.Node
	groups  map[string]*graph.Group
	parent  map[string]*graph.Group
	owner   map[string]*graph.Group
	members map[string][]string
	dir     map[string]graph.Direction
	island  map[string]bool
	loose   []string
	rootDir graph.Direction
}

func newIndex(g *graph.Graph, override graph.Direction, logger *log.Logger) *index {
	ix := &index{
		g:       g,
		nodes:   make(map[string]*graph.Node, len(g.Nodes)),
		groups:  make(map[string]*graph.Group),
		parent:  make(map[string]*graph.Group),
		owner:   make(map[string]*graph.Group),
		members: make(map[string][]string),
		dir:     make(map[string]graph.Direction),
		island:  make(map[string]bool),
	}

	ix.rootDir = g.Direction.Canonical()
	if override != "" {
		ix.rootDir = override.Canonical()
	}

	for i := range g.Nodes {
		ix.nodes[g.Nodes[i].ID] = &g.Nodes[i]
	}

	g.WalkGroups(func(grp, parent *graph.Group) {
		ix.groups[grp.ID] = grp
		ix.parent[grp.ID] = parent

		inherited := ix.rootDir
		if parent != nil {
			inherited = ix.dir[parent.ID]
		}
		ix.dir[grp.ID] = inherited
		if grp.Direction.Differs(inherited) {
			ix.dir[grp.ID] = grp.Direction.Canonical()
			ix.island[grp.ID] = true
		}

		for _, id := range grp.Nodes {
			if _, ok := ix.nodes[id]; !ok {
				logger.Warn("skipping unknown group member", "group", grp.ID, "node", id)
				continue
			}
			if prev, ok := ix.owner[id]; ok {
				logger.Warn("node already belongs to another group", "node", id, "group", grp.ID, "owner", prev.ID)
				continue
			}
			ix.owner[id] = grp
			ix.members[grp.ID] = append(ix.members[grp.ID], id)
		}
	})

	for i := range g.Nodes {
		if _, ok := ix.owner[g.Nodes[i].ID]; !ok {
			ix.loose = append(ix.loose, g.Nodes[i].ID)
		}
	}
	return ix
}

// empty reports whether grp has nothing to lay out inside it.
func (ix *index) empty(grp *graph.Group) bool {
	return len(ix.members[grp.ID]) == 0 && len(grp.Groups) == 0
}

// resolve maps an edge endpoint id to its anchor. Group ids take
// precedence over node ids. The second result is false for unknown ids.
func (ix *index) resolve(id string, exit bool) (anchor, bool) {
	if grp, ok := ix.groups[id]; ok {
		return ix.groupAnchor(grp, exit), true
	}
	if _, ok := ix.nodes[id]; ok {
		return anchor{id: id}, true
	}
	return anchor{}, false
}

// groupAnchor redirects an edge endpoint on grp to a leaf: the last member
// when leaving the group, the first when entering it, recursing into child
// groups when there are no direct members.
func (ix *index) groupAnchor(grp *graph.Group, exit bool) anchor {
	if ix.island[grp.ID] || ix.empty(grp) {
		return anchor{id: grp.ID, group: true}
	}
	if m := ix.members[grp.ID]; len(m) > 0 {
		if exit {
			return anchor{id: m[len(m)-1]}
		}
		return anchor{id: m[0]}
	}
	if exit {
		return ix.groupAnchor(grp.Groups[len(grp.Groups)-1], exit)
	}
	return ix.groupAnchor(grp.Groups[0], exit)
}

// islandOf returns the innermost island strictly containing a, or nil for
// the root scope.
func (ix *index) islandOf(a anchor) *graph.Group {
	grp := ix.owner[a.id]
	if a.group {
		grp = ix.parent[a.id]
	}
	for grp != nil && !ix.island[grp.ID] {
		grp = ix.parent[grp.ID]
	}
	return grp
}

// scope returns the deepest island containing both anchors.
func (ix *index) scope(from, to anchor) *graph.Group {
	seen := make(map[*graph.Group]bool)
	for s := ix.islandOf(from); s != nil; s = ix.islandOf(anchor{id: s.ID, group: true}) {
		seen[s] = true
	}
	for s := ix.islandOf(to); s != nil; s = ix.islandOf(anchor{id: s.ID, group: true}) {
		if seen[s] {
			return s
		}
	}
	return nil
}

// leafIn returns the box that stands for a inside scope: a itself when
// it lives there directly, otherwise the outermost island below scope
// that contains it.
func (ix *index) leafIn(scope *graph.Group, a anchor) anchor {
	for s := ix.islandOf(a); s != scope; s = ix.islandOf(a) {
		a = anchor{id: s.ID, group: true}
	}
	return a
}
