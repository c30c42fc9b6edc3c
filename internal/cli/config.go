package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orthoflow/pkg/pipeline"
	"github.com/matzehuels/orthoflow/pkg/server"
)

// envRedisURL overrides cache.redis_url.
const envRedisURL = "ORTHOFLOW_REDIS_URL"

// Config is the on-disk CLI configuration.
//
//	[layout]
//	direction = "LR"
//	engine = "graphviz"
//	padding = 32.0
//
//	[cache]
//	dir = "/var/cache/orthoflow"
//
//	[server]
//	addr = ":9000"
//	layout_timeout = "30s"
//	max_nodes = 2000
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds layout option defaults.
type LayoutConfig struct {
	Direction    string  `toml:"direction"`
	Engine       string  `toml:"engine"`
	Measure      string  `toml:"measure"`
	Font         string  `toml:"font"`
	Padding      float64 `toml:"padding"`
	NodeSpacing  float64 `toml:"node_spacing"`
	LayerSpacing float64 `toml:"layer_spacing"`
	WrapWidth    float64 `toml:"wrap_width"`
	MaxNodes     int     `toml:"max_nodes"`
	Format       string  `toml:"format"`
	Timeout      string  `toml:"timeout"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	LayoutTimeout string `toml:"layout_timeout"`
	MaxBodyBytes  int64  `toml:"max_body_bytes"`
	MaxNodes      int    `toml:"max_nodes"`
}

// configPath returns $XDG_CONFIG_HOME/orthoflow/config.toml, falling back
// to the user config directory.
func configPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.toml")
}

// loadConfig reads the config at path. An empty path reads the default
// location, where a missing file is not an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}

	cfg := &Config{}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
			}
		}
	}

	if url := os.Getenv(envRedisURL); url != "" {
		cfg.Cache.RedisURL = url
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := parseDuration("layout.timeout", c.Layout.Timeout); err != nil {
		return err
	}
	if _, err := parseDuration("server.layout_timeout", c.Server.LayoutTimeout); err != nil {
		return err
	}
	return nil
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

// pipelineOptions returns the configured layout defaults.
func (c *Config) pipelineOptions() pipeline.Options {
	l := c.Layout
	timeout, _ := parseDuration("layout.timeout", l.Timeout)
	return pipeline.Options{
		Direction:    l.Direction,
		Engine:       l.Engine,
		Measure:      l.Measure,
		Font:         l.Font,
		Padding:      l.Padding,
		NodeSpacing:  l.NodeSpacing,
		LayerSpacing: l.LayerSpacing,
		WrapWidth:    l.WrapWidth,
		MaxNodes:     l.MaxNodes,
		Format:       l.Format,
		Timeout:      timeout,
	}
}

// serverConfig returns the configured server settings.
func (c *Config) serverConfig() server.Config {
	timeout, _ := parseDuration("server.layout_timeout", c.Server.LayoutTimeout)
	return server.Config{
		Addr:          c.Server.Addr,
		LayoutTimeout: timeout,
		MaxBodyBytes:  c.Server.MaxBodyBytes,
		MaxNodes:      c.Server.MaxNodes,
	}
}
