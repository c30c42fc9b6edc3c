// Package pipeline runs the load → layout → encode pipeline shared by the
// CLI and the HTTP API.
//
// By centralizing option defaults, validation and caching here, every entry
// point computes identical layouts for identical requests and shares one
// cache key scheme.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, g, pipeline.Options{
//	    Direction: "LR",
//	    Format:    "msgpack",
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(res.Output)
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orthoflow/pkg/cache"
	"github.com/matzehuels/orthoflow/pkg/errors"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/layered"
	"github.com/matzehuels/orthoflow/pkg/layout"
	"github.com/matzehuels/orthoflow/pkg/text"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultEngine is the layered layout primitive.
	DefaultEngine = EngineGraphviz

	// DefaultMeasure selects font-metric label measurement.
	DefaultMeasure = MeasureFace

	// DefaultFormat is the output encoding.
	DefaultFormat = graph.FormatJSON

	// DefaultMaxNodes bounds the graphs the pipeline accepts.
	DefaultMaxNodes = 5000
)

// Engine names.
const (
	EngineGraphviz = "graphviz"
	EngineSimple   = "simple"
)

// Measure names.
const (
	MeasureFace  = "face"
	MeasureCells = "cells"
)

// engines maps engine names to constructors.
var engines = map[string]func() layered.Engine{
	EngineGraphviz: func() layered.Engine { return layered.NewGraphviz() },
	EngineSimple:   func() layered.Engine { return layered.NewSimple() },
}

// ValidMeasures is the set of supported label measurement modes.
var ValidMeasures = map[string]bool{
	MeasureFace:  true,
	MeasureCells: true,
}

// Engines returns the supported engine names, sorted.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests. As in
// layout.Options, a zero Padding, NodeSpacing or LayerSpacing selects the
// default.
type Options struct {
	// Layout options
	Direction    string  `json:"direction,omitempty"`
	Font         string  `json:"font,omitempty"`
	Measure      string  `json:"measure,omitempty"`
	Engine       string  `json:"engine,omitempty"`
	Padding      float64 `json:"padding,omitempty"`
	NodeSpacing  float64 `json:"node_spacing,omitempty"`
	LayerSpacing float64 `json:"layer_spacing,omitempty"`
	WrapWidth    float64 `json:"wrap_width,omitempty"`

	// MaxNodes is an operator limit and is never taken from a request body.
	MaxNodes int `json:"-"`

	// Output options
	Format  string `json:"format,omitempty"`
	Refresh bool   `json:"refresh,omitempty"` // Recompute even when cached

	// Runtime options (not serialized)
	Timeout time.Duration `json:"-"`
	Logger  *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the input graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the canonical graph JSON.
	GraphHash string

	// Layout is the positioned diagram.
	Layout *graph.Layout

	// Output is Layout encoded in Format.
	Output []byte
	Format graph.Format

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether Layout came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	GroupCount int
	LayoutTime time.Duration
	EncodeTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateEngine checks that an engine name is known.
func ValidateEngine(name string) error {
	if _, ok := engines[name]; !ok {
		return errors.New(errors.ErrCodeInvalidOptions, "invalid engine: %q (must be one of: %s)",
			name, strings.Join(Engines(), ", "))
	}
	return nil
}

// ValidateMeasure checks that a measurement mode is known.
func ValidateMeasure(name string) error {
	if !ValidMeasures[name] {
		return errors.New(errors.ErrCodeInvalidOptions, "invalid measure: %q (must be one of: face, cells)", name)
	}
	return nil
}

// ValidateFormat checks that a layout can be written in format.
func ValidateFormat(format string) error {
	f, err := graph.ParseFormat(format)
	if err != nil {
		return err
	}
	if f == graph.FormatYAML {
		return errors.New(errors.ErrCodeInvalidFormat, "layouts cannot be written as yaml (must be one of: json, msgpack)")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills every unset field.
func (o *Options) SetDefaults() {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Measure == "" {
		o.Measure = DefaultMeasure
	}
	if o.Font == "" {
		o.Font = layout.DefaultFont
	}
	if o.Padding == 0 {
		o.Padding = layout.DefaultPadding
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = layout.DefaultNodeSpacing
	}
	if o.LayerSpacing == 0 {
		o.LayerSpacing = layout.DefaultLayerSpacing
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Format == "" {
		o.Format = string(DefaultFormat)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateAndSetDefaults normalizes names, applies defaults and checks every
// field. This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Engine = strings.ToLower(strings.TrimSpace(o.Engine))
	o.Measure = strings.ToLower(strings.TrimSpace(o.Measure))
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))

	dir, err := graph.ParseDirection(o.Direction)
	if err != nil {
		return err
	}
	if dir != "" {
		dir = dir.Canonical()
	}
	o.Direction = string(dir)

	o.SetDefaults()
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if err := ValidateMeasure(o.Measure); err != nil {
		return err
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if f, _ := graph.ParseFormat(o.Format); f != "" {
		o.Format = string(f)
	}
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max nodes must not be negative, got %d", o.MaxNodes)
	}
	lo := o.LayoutOptions()
	if err := lo.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// LayoutOptions returns the compiler options for o. The engine and
// measurer are fresh instances.
func (o *Options) LayoutOptions() layout.Options {
	lo := layout.Options{
		Direction:    graph.Direction(o.Direction),
		Font:         o.Font,
		Padding:      o.Padding,
		NodeSpacing:  o.NodeSpacing,
		LayerSpacing: o.LayerSpacing,
		WrapWidth:    o.WrapWidth,
		Logger:       o.Logger,
	}
	if newEngine, ok := engines[o.Engine]; ok {
		lo.Engine = newEngine()
	}
	if o.Measure == MeasureCells {
		lo.Measurer = text.CellMeasurer{}
	}
	return lo
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	font := o.Font
	if o.Measure == MeasureCells {
		font = "" // cell widths do not depend on the font
	}
	return cache.LayoutKeyOpts{
		Direction:    o.Direction,
		Font:         font,
		Measure:      o.Measure,
		Engine:       o.Engine,
		Padding:      o.Padding,
		NodeSpacing:  o.NodeSpacing,
		LayerSpacing: o.LayerSpacing,
		WrapWidth:    o.WrapWidth,
	}
}

// checkSize rejects graphs larger than MaxNodes.
func (o *Options) checkSize(g *graph.Graph) error {
	if len(g.Nodes) > o.MaxNodes {
		return errors.New(errors.ErrCodeInvalidInput, "graph has %d nodes, limit is %d", len(g.Nodes), o.MaxNodes)
	}
	return nil
}

// countGroups returns the number of groups at every depth.
func countGroups(g *graph.Graph) int {
	n := 0
	g.WalkGroups(func(*graph.Group, *graph.Group) { n++ })
	return n
}

// Describe summarizes options for logs.
func (o *Options) Describe() string {
	return fmt.Sprintf("engine=%s measure=%s direction=%s padding=%v", o.Engine, o.Measure, o.Direction, o.Padding)
}
