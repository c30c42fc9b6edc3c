package graph

import (
	"strings"

	"github.com/matzehuels/orthoflow/pkg/errors"
	"github.com/matzehuels/orthoflow/pkg/shape"
)

// =============================================================================
// Direction
// =============================================================================

// Direction is the flow direction of a graph or group.
type Direction string

// Flow directions. TD and TB are synonyms.
const (
	DirectionTD Direction = "TD"
	DirectionTB Direction = "TB"
	DirectionBT Direction = "BT"
	DirectionLR Direction = "LR"
	DirectionRL Direction = "RL"
)

// ParseDirection parses a direction case-insensitively. The empty string
// is accepted and means "inherit from the parent".
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case "", DirectionTD, DirectionTB, DirectionBT, DirectionLR, DirectionRL:
		return d, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection, "invalid direction: %q (must be one of: TD, TB, BT, LR, RL)", s)
}

// Canonical upper-cases d and folds TB and empty into TD.
func (d Direction) Canonical() Direction {
	d = Direction(strings.ToUpper(string(d)))
	if d == "" || d == DirectionTB {
		return DirectionTD
	}
	return d
}

// Vertical reports whether ranks are stacked top-to-bottom or bottom-to-top.
func (d Direction) Vertical() bool {
	d = d.Canonical()
	return d == DirectionTD || d == DirectionBT
}

// Differs reports whether d overrides parent. An empty d never does.
func (d Direction) Differs(parent Direction) bool {
	return d != "" && d.Canonical() != parent.Canonical()
}

// =============================================================================
// Input Graph
// =============================================================================

// LineStyle is the stroke of an edge.
type LineStyle string

// Edge strokes.
const (
	LineSolid  LineStyle = "solid"
	LineDotted LineStyle = "dotted"
	LineThick  LineStyle = "thick"
)

// Style is an opaque set of presentation properties (fill, stroke, ...).
type Style map[string]string

// Node is a labeled box in the input graph.
type Node struct {
	ID    string     `json:"id" yaml:"id"`
	Label string     `json:"label,omitempty" yaml:"label,omitempty"`
	Shape shape.Kind `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// DisplayLabel returns the label, falling back to the ID.
func (n *Node) DisplayLabel() string {
	if n.Label == "" {
		return n.ID
	}
	return n.Label
}

// Kind resolves the node's shape, accepting aliases.
func (n *Node) Kind() shape.Kind {
	k, _ := shape.Parse(string(n.Shape))
	return k
}

// Edge is a directed connection. Source and Target name nodes or groups.
type Edge struct {
	Source     string    `json:"source" yaml:"source"`
	Target     string    `json:"target" yaml:"target"`
	Label      string    `json:"label,omitempty" yaml:"label,omitempty"`
	Style      LineStyle `json:"style,omitempty" yaml:"style,omitempty"`
	ArrowStart bool      `json:"arrow_start,omitempty" yaml:"arrow_start,omitempty"`
	ArrowEnd   *bool     `json:"arrow_end,omitempty" yaml:"arrow_end,omitempty"`
}

// HasArrowEnd reports whether the target end carries an arrowhead.
// Edges are directed unless told otherwise.
func (e *Edge) HasArrowEnd() bool {
	return e.ArrowEnd == nil || *e.ArrowEnd
}

// LineStyle returns the stroke, defaulting to solid.
func (e *Edge) LineStyle() LineStyle {
	if e.Style == "" {
		return LineSolid
	}
	return e.Style
}

// Group is a named container. Nodes lists the direct members in order;
// Groups lists nested containers in order.
type Group struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label,omitempty" yaml:"label,omitempty"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	Nodes     []string  `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Groups    []*Group  `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// DisplayLabel returns the label, falling back to the ID.
func (g *Group) DisplayLabel() string {
	if g.Label == "" {
		return g.ID
	}
	return g.Label
}

// Empty reports whether the group has neither members nor nested groups.
func (g *Group) Empty() bool {
	return len(g.Nodes) == 0 && len(g.Groups) == 0
}

// Graph is the layout compiler's input.
type Graph struct {
	Direction Direction         `json:"direction,omitempty" yaml:"direction,omitempty"`
	Nodes     []Node            `json:"nodes" yaml:"nodes"`
	Edges     []Edge            `json:"edges,omitempty" yaml:"edges,omitempty"`
	Groups    []*Group          `json:"groups,omitempty" yaml:"groups,omitempty"`
	ClassDefs map[string]Style  `json:"class_defs,omitempty" yaml:"class_defs,omitempty"`
	Classes   map[string]string `json:"classes,omitempty" yaml:"classes,omitempty"`
	Styles    map[string]Style  `json:"styles,omitempty" yaml:"styles,omitempty"`
}

// NodeStyle merges the class-def properties assigned to a node with its
// inline style. Inline properties win. Returns nil when neither exists.
func (g *Graph) NodeStyle(id string) Style {
	var out Style
	if class, ok := g.Classes[id]; ok {
		for k, v := range g.ClassDefs[class] {
			if out == nil {
				out = make(Style)
			}
			out[k] = v
		}
	}
	for k, v := range g.Styles[id] {
		if out == nil {
			out = make(Style)
		}
		out[k] = v
	}
	return out
}

// WalkGroups visits every group depth-first, parents before children.
func (g *Graph) WalkGroups(fn func(grp, parent *Group)) {
	var walk func(list []*Group, parent *Group)
	walk = func(list []*Group, parent *Group) {
		for _, grp := range list {
			fn(grp, parent)
			walk(grp.Groups, grp)
		}
	}
	walk(g.Groups, nil)
}

// Validate checks identifiers, labels, shapes and directions, and rejects
// duplicate node or group ids. Dangling references (edges or group members
// naming unknown ids) are not an error here; the layout skips them.
func (g *Graph) Validate() error {
	if _, err := ParseDirection(string(g.Direction)); err != nil {
		return err
	}

	nodes := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if err := errors.ValidateID("node", n.ID); err != nil {
			return err
		}
		if err := errors.ValidateLabel("node", n.Label); err != nil {
			return err
		}
		if nodes[n.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		nodes[n.ID] = true
		if _, ok := shape.Parse(string(n.Shape)); !ok {
			return errors.New(errors.ErrCodeInvalidShape, "node %q has unknown shape %q", n.ID, n.Shape)
		}
	}

	for i := range g.Edges {
		if err := errors.ValidateLabel("edge", g.Edges[i].Label); err != nil {
			return err
		}
	}

	var err error
	groups := make(map[string]bool)
	g.WalkGroups(func(grp, _ *Group) {
		if err != nil {
			return
		}
		if err = errors.ValidateID("group", grp.ID); err != nil {
			return
		}
		if groups[grp.ID] {
			err = errors.New(errors.ErrCodeInvalidInput, "duplicate group id %q", grp.ID)
			return
		}
		groups[grp.ID] = true
		_, err = ParseDirection(string(grp.Direction))
	})
	return err
}
