// Package pkg provides the libraries behind orthoflow, a layout compiler for
// flowchart-style diagrams.
//
// # Overview
//
// Orthoflow takes a graph of nodes, edges and nested groups and produces a
// positioned diagram: node boxes, group boxes with header bands and
// orthogonal edge routes. Groups may carry their own flow direction; such
// groups are laid out in isolation and placed into their parent as a
// single block.
//
// The data flow:
//
//	JSON/YAML graph
//	       ↓
//	   [graph] package (decode + validate)
//	       ↓
//	   [layout] package (scopes, islands, primitive runs, post passes)
//	       ↓                  ↑
//	       ↓           [layered] engine (graphviz or simple)
//	       ↓
//	   [graph].Layout (JSON or msgpack)
//
// # Quick Start
//
//	g, err := graph.ReadGraphFile("flow.yaml")
//	if err != nil {
//	    return err
//	}
//	l, err := layout.Layout(ctx, g, layout.Options{Direction: graph.DirectionLR})
//	if err != nil {
//	    return err
//	}
//	return graph.WriteLayoutFile(l, "flow.layout.json", graph.FormatJSON)
//
// # Main Packages
//
// ## Compiler
//
// [layout] - The compiler. Indexes groups, decides which groups become
// direction islands, runs the layered primitive per scope, then expands
// group headers, separates overlapping siblings, straightens bends, re-clips
// edge ends to node outlines and normalizes the canvas.
//
// [layered] - The layered (Sugiyama-style) layout primitive behind an
// [layered.Engine] interface. The graphviz engine runs dot; the simple
// engine is a deterministic pure-Go fallback used in tests.
//
// [shape] - Node shapes, their minimum sizes and outline clipping.
//
// [text] - Label measurement (font metrics or terminal cells) and wrapping.
//
// [geom] - Points, rectangles and polyline helpers.
//
// ## Serialization
//
// [graph] - Input graphs and output layouts with JSON, YAML and msgpack
// codecs.
//
// ## Infrastructure
//
// [pipeline] - Option defaults, validation and cached execution shared by
// the CLI and the HTTP API.
//
// [cache] - Layout cache backends (file, Redis, null) and key derivation.
//
// [server] - The HTTP layout API.
//
// [observability] - Hook interfaces for layout, cache and HTTP events.
//
// [errors] - Coded errors that map onto CLI messages and HTTP statuses.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/layout/...           # The compiler only
//	ORTHOFLOW_TEST_REDIS=redis://localhost:6379/15 go test ./pkg/cache/...
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/layout
// [layered]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/layered
// [layered.Engine]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/layered#Engine
// [shape]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/shape
// [text]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/text
// [geom]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/geom
// [graph]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/orthoflow/pkg/buildinfo
package pkg
