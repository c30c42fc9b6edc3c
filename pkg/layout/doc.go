// Package layout compiles a [graph.Graph] into a positioned diagram.
//
// Ranking and ordering are delegated to a [layered.Engine]. This package
// adapts the graph to it and repairs what comes back so that the result
// holds for every edge and group:
//
//   - every edge is an axis-aligned polyline whose ends lie on the outline
//     of its source and target
//   - every group encloses its content with padding and, when labeled, a
//     header band above it
//   - siblings sharing a parent do not overlap
//
// # Passes
//
// A run sizes every node and edge label, then lays out the root scope.
// A group whose direction differs from its parent's is compiled first on
// its own (an island) and enters its parent as one fixed-size box; its
// geometry is moved onto that box afterwards. Edges that point at a group
// are redirected to its first or last member for ranking.
//
// The positioned result then goes through header expansion, sibling
// separation, re-snapping to orthogonal, terminal bend correction,
// re-clipping to the real endpoint outlines and canvas normalization.
//
// # Usage
//
//	l, err := layout.Layout(ctx, g, layout.Options{Direction: graph.DirectionLR})
//	if err != nil {
//	    return err
//	}
//	for _, n := range l.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y)
//	}
package layout
