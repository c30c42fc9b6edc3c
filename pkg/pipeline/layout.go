package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/orthoflow/pkg/errors"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout lays out g without caching. opts must have been
// validated.
func GenerateLayout(ctx context.Context, g *graph.Graph, opts Options) (*graph.Layout, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return layout.Layout(ctx, g, opts.LayoutOptions())
}

// =============================================================================
// Encoding
// =============================================================================

// Encode serializes l in the named format.
func Encode(l *graph.Layout, format string) ([]byte, error) {
	f, err := graph.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	data, err := graph.EncodeLayout(l, f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return data, nil
}

// encodeTimed is Encode with its duration.
func encodeTimed(l *graph.Layout, format string) ([]byte, time.Duration, error) {
	start := time.Now()
	data, err := Encode(l, format)
	return data, time.Since(start), err
}
