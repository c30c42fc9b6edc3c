// Package graph provides the input and output types of the layout compiler
// and their serialization.
//
// This package defines the canonical wire format for orthoflow, used for
// files, API requests and responses, and caching.
//
// # Core Types
//
//   - [Graph]: nodes, edges, a forest of [Group]s and styling tables
//   - [Layout]: the positioned result ([PositionedNode], [PositionedEdge],
//     [PositionedGroup]) on a canvas of computed size
//   - [Direction]: TD, TB, BT, LR or RL
//
// # Graph Serialization
//
// Graphs are read from JSON or YAML:
//
//	{
//	  "direction": "TD",
//	  "nodes": [{"id": "a", "label": "Start"}, {"id": "b", "shape": "diamond"}],
//	  "edges": [{"source": "a", "target": "b", "label": "go"}],
//	  "groups": [{"id": "g", "direction": "LR", "nodes": ["b"]}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("flow.yaml")    // File → Graph (validated)
//	data, _ := graph.MarshalGraph(g)           // Graph → canonical JSON
//
// # Layout Serialization
//
// Layouts are written as JSON or msgpack; msgpack uses the JSON field names:
//
//	data, _ := graph.EncodeLayout(l, graph.FormatMsgpack)
//	l, _ = graph.DecodeLayout(data, graph.FormatMsgpack)
package graph
