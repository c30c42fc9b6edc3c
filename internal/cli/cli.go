package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orthoflow/pkg/cache"
	"github.com/matzehuels/orthoflow/pkg/observability"
	"github.com/matzehuels/orthoflow/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "orthoflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configFile is set by --config; empty means the default location.
	configFile string
	config     *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the layout,
// cache and HTTP hooks log through the CLI logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetLayoutHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// loadConfig reads the config file once per process.
func (c *CLI) loadConfig() (*Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, err := loadConfig(c.configFile)
	if err != nil {
		return nil, err
	}
	c.config = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *Config, noCache bool) (*pipeline.Runner, error) {
	store, keyer, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache picks Redis when a URL is configured, else the file cache.
func (c *CLI) newCache(ctx context.Context, cfg *Config, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil, nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		c.Logger.Debug("using redis cache")
		return rc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName), nil
	}
	fc, err := cache.NewFileCache(cacheDir(cfg))
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "error", err)
		return cache.NewNullCache(), nil, nil
	}
	return fc, nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/orthoflow/).
func cacheDir(cfg *Config) string {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return cache.DefaultDir()
}
