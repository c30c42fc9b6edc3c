// Package layered defines the contract of a layered graph layout primitive
// and provides two engines for it.
//
// A primitive takes a compound graph of fixed-size leaves, clusters and
// weighted edges, assigns ranks along one flow direction, orders leaves
// within ranks and returns absolute positions. It knows nothing about
// shapes, labels or group headers; those are the caller's business.
//
// # Engines
//
//   - [Graphviz] runs the dot algorithm in-process through go-graphviz and
//     reads back the computed attributes with gographviz.
//   - [Simple] is a small deterministic engine (longest-path ranks, input
//     order within ranks, straight edges). It is meant for tests and for
//     environments where the Graphviz runtime is not wanted.
//
// All coordinates in a [Result] are pixels in a y-down system whose origin
// is the top-left corner of the canvas, margins included.
package layered

import (
	"context"
	"fmt"

	"github.com/matzehuels/orthoflow/pkg/geom"
)

// RankDir is the direction in which ranks advance.
type RankDir string

// Rank directions.
const (
	TopBottom RankDir = "TB"
	BottomTop RankDir = "BT"
	LeftRight RankDir = "LR"
	RightLeft RankDir = "RL"
)

// Vertical reports whether ranks are stacked along the y axis.
func (d RankDir) Vertical() bool { return d != LeftRight && d != RightLeft }

// Node is a leaf with a fixed size.
type Node struct {
	ID     string
	Width  float64
	Height float64
}

// Cluster groups leaves and nested clusters into a box. LabelWidth and
// LabelHeight reserve a caption area at the top of the box.
type Cluster struct {
	ID          string
	Nodes       []string
	Clusters    []*Cluster
	LabelWidth  float64
	LabelHeight float64
}

// Walk visits c and its descendants, parents first.
func (c *Cluster) Walk(fn func(*Cluster)) {
	fn(c)
	for _, child := range c.Clusters {
		child.Walk(fn)
	}
}

// Edge connects two leaves. Weight biases rank assignment toward keeping
// the edge short; zero means 1. A positive label size reserves room for a
// label box along the edge.
type Edge struct {
	Source      string
	Target      string
	Weight      int
	LabelWidth  float64
	LabelHeight float64
}

// Labeled reports whether the edge reserves a label box.
func (e Edge) Labeled() bool { return e.LabelWidth > 0 && e.LabelHeight > 0 }

// Graph is the input of a layout run. Leaves not listed in any cluster are
// top-level.
type Graph struct {
	RankDir  RankDir
	NodeSep  float64
	RankSep  float64
	MarginX  float64
	MarginY  float64
	Nodes    []Node
	Clusters []*Cluster
	Edges    []Edge
}

// Validate checks that every edge and cluster member names a leaf and
// that no leaf is placed in two clusters.
func (g *Graph) Validate() error {
	leaves := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if leaves[n.ID] {
			return fmt.Errorf("duplicate leaf %q", n.ID)
		}
		if n.Width <= 0 || n.Height <= 0 {
			return fmt.Errorf("leaf %q has non-positive size %vx%v", n.ID, n.Width, n.Height)
		}
		leaves[n.ID] = true
	}

	placed := make(map[string]string)
	var err error
	for _, c := range g.Clusters {
		c.Walk(func(c *Cluster) {
			for _, id := range c.Nodes {
				if err != nil {
					return
				}
				if !leaves[id] {
					err = fmt.Errorf("cluster %q lists unknown leaf %q", c.ID, id)
				} else if prev, ok := placed[id]; ok {
					err = fmt.Errorf("leaf %q is in clusters %q and %q", id, prev, c.ID)
				}
				placed[id] = c.ID
			}
		})
	}
	if err != nil {
		return err
	}

	for i, e := range g.Edges {
		if !leaves[e.Source] || !leaves[e.Target] {
			return fmt.Errorf("edge %d (%s -> %s) names an unknown leaf", i, e.Source, e.Target)
		}
	}
	return nil
}

// EdgeResult is the route of one edge: a polyline from the source
// boundary to the target boundary and, for labeled edges, the label
// center.
type EdgeResult struct {
	Points []geom.Point
	Label  *geom.Point
}

// Result is the output of a layout run. Edges is indexed like the input
// edge list. Clusters without members may be absent.
type Result struct {
	Width    float64
	Height   float64
	Nodes    map[string]geom.Point
	Clusters map[string]geom.Rect
	Edges    []EdgeResult
}

// Engine runs the layered layout primitive.
type Engine interface {
	Run(ctx context.Context, g *Graph) (*Result, error)
}
