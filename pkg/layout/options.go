package layout

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orthoflow/pkg/errors"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/layered"
	"github.com/matzehuels/orthoflow/pkg/text"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPadding is the margin around the whole drawing in pixels.
	DefaultPadding = 40.0

	// DefaultNodeSpacing is the distance between neighbors in a rank.
	DefaultNodeSpacing = 24.0

	// DefaultLayerSpacing is the distance between ranks.
	DefaultLayerSpacing = 40.0

	// DefaultFont selects the embedded Go font family.
	DefaultFont = "go"
)

// Options configures a layout run. The zero value is usable: every field
// falls back to its default.
type Options struct {
	// Direction overrides the graph's own direction when set.
	Direction graph.Direction `json:"direction,omitempty"`

	// Font is "go" for the embedded Go fonts or a path to a TrueType or
	// OpenType file. Ignored when Measurer is set.
	Font string `json:"font,omitempty"`

	// Padding, NodeSpacing and LayerSpacing are in pixels. Zero selects
	// the default; there is no way to ask for a zero gap.
	Padding      float64 `json:"padding,omitempty"`
	NodeSpacing  float64 `json:"node_spacing,omitempty"`
	LayerSpacing float64 `json:"layer_spacing,omitempty"`

	// WrapWidth soft-wraps label lines wider than this many pixels.
	// Zero keeps explicit line breaks only.
	WrapWidth float64 `json:"wrap_width,omitempty"`

	// Runtime collaborators (not serialized).
	Engine   layered.Engine `json:"-"`
	Measurer text.Measurer  `json:"-"`
	Logger   *log.Logger    `json:"-"`
}

// SetDefaults fills unset fields. Measurer is left alone; Layout builds
// one from Font when it is nil.
func (o *Options) SetDefaults() {
	if o.Font == "" {
		o.Font = DefaultFont
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.LayerSpacing == 0 {
		o.LayerSpacing = DefaultLayerSpacing
	}
	if o.Engine == nil {
		o.Engine = layered.NewGraphviz()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. It does not apply defaults.
func (o *Options) Validate() error {
	if _, err := graph.ParseDirection(string(o.Direction)); err != nil {
		return err
	}
	switch {
	case o.Padding < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "padding must not be negative, got %v", o.Padding)
	case o.NodeSpacing < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "node spacing must not be negative, got %v", o.NodeSpacing)
	case o.LayerSpacing < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "layer spacing must not be negative, got %v", o.LayerSpacing)
	case o.WrapWidth < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "wrap width must not be negative, got %v", o.WrapWidth)
	}
	return nil
}

// measurer returns the configured measurer, or builds one from Font.
// The returned function releases it.
func (o *Options) measurer() (text.Measurer, func(), error) {
	if o.Measurer != nil {
		return o.Measurer, func() {}, nil
	}
	var (
		m   *text.FaceMeasurer
		err error
	)
	if o.Font == "" || strings.EqualFold(o.Font, DefaultFont) {
		m, err = text.NewFaceMeasurer()
	} else {
		m, err = text.LoadFaceMeasurer(o.Font)
	}
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "load font %q", o.Font)
	}
	return m, func() { _ = m.Close() }, nil
}
