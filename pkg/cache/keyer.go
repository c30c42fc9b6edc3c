package cache

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of the layout computed for the graph with
	// the given hash under opts.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a layout. Two runs with
// equal graph hashes and equal LayoutKeyOpts produce equal layouts.
type LayoutKeyOpts struct {
	Direction    string  `json:"direction,omitempty"`
	Font         string  `json:"font,omitempty"`
	Measure      string  `json:"measure,omitempty"`
	Engine       string  `json:"engine,omitempty"`
	Padding      float64 `json:"padding"`
	NodeSpacing  float64 `json:"node_spacing"`
	LayerSpacing float64 `json:"layer_spacing"`
	WrapWidth    float64 `json:"wrap_width,omitempty"`
}

// DefaultKeyer hashes the graph hash and options into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
