package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orthoflow/pkg/cache"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/observability"
)

// keyTypeLayout labels layout entries in cache hooks.
const keyTypeLayout = "layout"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute lays out g with caching and encodes the result.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Graph:  g,
		Format: graph.Format(opts.Format),
		Stats: Stats{
			NodeCount:  len(g.Nodes),
			EdgeCount:  len(g.Edges),
			GroupCount: countGroups(g),
		},
	}

	layoutStart := time.Now()
	l, hash, hit, err := r.layout(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.GraphHash = hash
	result.CacheHit = hit
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	out, took, err := encodeTimed(l, opts.Format)
	if err != nil {
		return nil, err
	}
	result.Output = out
	result.Stats.EncodeTime = took
	return result, nil
}

// LayoutWithCacheInfo lays out g with caching and reports whether the
// layout came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	l, _, hit, err := r.layout(ctx, g, opts)
	return l, hit, err
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts Options) (*graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// layout expects validated options.
func (r *Runner) layout(ctx context.Context, g *graph.Graph, opts Options) (*graph.Layout, string, bool, error) {
	if err := opts.checkSize(g); err != nil {
		return nil, "", false, err
	}

	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(graphData)
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil {
			r.Logger.Warn("cache read failed", "error", err)
		}
		if err == nil && hit {
			cached, err := graph.DecodeLayout(data, graph.FormatMsgpack)
			if err == nil {
				hooks.OnCacheHit(ctx, keyTypeLayout)
				r.Logger.Debug("layout cache hit", "graph", graphHash[:12])
				return cached, graphHash, true, nil
			}
			// Undecodable entries are recomputed and overwritten.
			r.Logger.Warn("discarding cached layout", "error", err)
		}
	}
	hooks.OnCacheMiss(ctx, keyTypeLayout)
	r.Logger.Debug("laying out graph", "graph", graphHash[:12], "options", opts.Describe())

	l, err := GenerateLayout(ctx, g, opts)
	if err != nil {
		return nil, "", false, err
	}

	if data, err := graph.EncodeLayout(l, graph.FormatMsgpack); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}
	return l, graphHash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
