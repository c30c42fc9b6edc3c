package graph

import (
	"github.com/matzehuels/orthoflow/pkg/geom"
	"github.com/matzehuels/orthoflow/pkg/shape"
)

// =============================================================================
// Layout - Positioned Output
// =============================================================================

// Layout is the compiler's output: every node, edge and group placed on a
// canvas of Width×Height pixels. Coordinates are y-down.
type Layout struct {
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Direction Direction          `json:"direction,omitempty"`
	Nodes     []*PositionedNode  `json:"nodes"`
	Edges     []*PositionedEdge  `json:"edges"`
	Groups    []*PositionedGroup `json:"groups,omitempty"`
}

// PositionedNode is a node box. X and Y are the top-left corner.
type PositionedNode struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Shape  shape.Kind `json:"shape"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Style  Style      `json:"style,omitempty"`
}

// Rect returns the node's box.
func (n *PositionedNode) Rect() geom.Rect {
	return geom.Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// Center returns the center of the node's box.
func (n *PositionedNode) Center() geom.Point { return n.Rect().Center() }

// PositionedEdge is an edge routed as an axis-aligned polyline.
// Source and Target are the ids from the input graph.
type PositionedEdge struct {
	Source        string       `json:"source"`
	Target        string       `json:"target"`
	Label         string       `json:"label,omitempty"`
	Style         LineStyle    `json:"style"`
	ArrowStart    bool         `json:"arrow_start"`
	ArrowEnd      bool         `json:"arrow_end"`
	Points        []geom.Point `json:"points"`
	LabelPosition *geom.Point  `json:"label_position,omitempty"`
	LabelWidth    float64      `json:"label_width,omitempty"`
	LabelHeight   float64      `json:"label_height,omitempty"`
}

// LabelRect returns the label box centered on LabelPosition.
// The second result is false for unlabeled edges.
func (e *PositionedEdge) LabelRect() (geom.Rect, bool) {
	if e.LabelPosition == nil {
		return geom.Rect{}, false
	}
	return geom.RectFromCenter(*e.LabelPosition, e.LabelWidth, e.LabelHeight), true
}

// PositionedGroup is a group box. Children holds nested groups in input
// order.
type PositionedGroup struct {
	ID       string             `json:"id"`
	Label    string             `json:"label"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	Children []*PositionedGroup `json:"children,omitempty"`
}

// Rect returns the group's box.
func (g *PositionedGroup) Rect() geom.Rect {
	return geom.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// SetRect replaces the group's box.
func (g *PositionedGroup) SetRect(r geom.Rect) {
	g.X, g.Y, g.Width, g.Height = r.X, r.Y, r.Width, r.Height
}

// Walk visits g and its descendants depth-first, parents first.
func (g *PositionedGroup) Walk(fn func(*PositionedGroup)) {
	fn(g)
	for _, c := range g.Children {
		c.Walk(fn)
	}
}

// Node returns the positioned node with the given id.
func (l *Layout) Node(id string) (*PositionedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Group returns the positioned group with the given id at any depth.
func (l *Layout) Group(id string) (*PositionedGroup, bool) {
	var found *PositionedGroup
	for _, g := range l.Groups {
		g.Walk(func(c *PositionedGroup) {
			if found == nil && c.ID == id {
				found = c
			}
		})
	}
	return found, found != nil
}
