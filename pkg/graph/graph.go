package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orthoflow/pkg/errors"
)

// Format identifies a serialization format.
type Format string

// Supported formats. Graphs are read from JSON or YAML; layouts are
// written as JSON or msgpack.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatMsgpack:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "mp", "mpk":
		return FormatMsgpack, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, yaml, msgpack)", s)
}

// FormatFromPath guesses the format from a file extension, defaulting
// to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to canonical JSON bytes. The output is
// stable for equal graphs and is what cache keys are derived from.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as indented JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraphFile reads a JSON or YAML graph, chosen by extension, and
// validates it.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f, FormatFromPath(path))
}

// ReadGraph decodes and validates a graph from r.
func ReadGraph(r io.Reader, format Format) (*Graph, error) {
	var g Graph
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&g); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml graph")
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&g); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json graph")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "graphs cannot be read from %s", format)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// UnmarshalGraph decodes and validates a JSON graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return ReadGraph(bytes.NewReader(data), FormatJSON)
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a layout to pretty-printed JSON bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a layout.
func UnmarshalLayout(data []byte) (*Layout, error) {
	return DecodeLayout(data, FormatJSON)
}

// EncodeLayout serializes a layout in the given format. Msgpack output
// uses the same field names as JSON.
func EncodeLayout(l *Layout, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return MarshalLayout(l)
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(l); err != nil {
			return nil, fmt.Errorf("encode msgpack layout: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "layouts cannot be written as %s", format)
}

// DecodeLayout deserializes a layout from the given format and checks
// that it is plausible.
func DecodeLayout(data []byte, format Format) (*Layout, error) {
	var l Layout
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("unmarshal layout: %w", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&l); err != nil {
			return nil, fmt.Errorf("unmarshal layout: %w", err)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "layouts cannot be read from %s", format)
	}

	if l.Width < 0 || l.Height < 0 {
		return nil, fmt.Errorf("layout has negative canvas size %vx%v", l.Width, l.Height)
	}
	for _, e := range l.Edges {
		if len(e.Points) < 2 {
			return nil, fmt.Errorf("edge %s->%s has %d points, want at least 2", e.Source, e.Target, len(e.Points))
		}
	}
	return &l, nil
}

// WriteLayoutFile writes a layout to path in the given format.
func WriteLayoutFile(l *Layout, path string, format Format) error {
	data, err := EncodeLayout(l, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a layout, choosing the format by extension.
func ReadLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeLayout(data, FormatFromPath(path))
}
