package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoflow/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr          string
		redisURL      string
		noCache       bool
		layoutTimeout time.Duration
		maxBody       int64
		maxNodes      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

  GET  /healthz     liveness and version
  POST /v1/layout   {"graph": {...}, "options": {...}} -> layout

Send Accept: application/msgpack for msgpack output. With a Redis URL
(--redis-url or ORTHOFLOW_REDIS_URL) instances share one layout cache;
otherwise layouts are cached on local disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("redis-url") {
				cfg.Cache.RedisURL = redisURL
			}

			scfg := cfg.serverConfig()
			if cmd.Flags().Changed("addr") || scfg.Addr == "" {
				scfg.Addr = addr
			}
			if cmd.Flags().Changed("layout-timeout") {
				scfg.LayoutTimeout = layoutTimeout
			}
			if cmd.Flags().Changed("max-body") {
				scfg.MaxBodyBytes = maxBody
			}
			if cmd.Flags().Changed("max-nodes") {
				scfg.MaxNodes = maxNodes
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return server.New(runner, scfg, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for a shared cache, e.g. redis://localhost:6379/0")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&layoutTimeout, "layout-timeout", server.DefaultLayoutTimeout, "per-request layout time limit")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body in bytes")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", server.DefaultMaxNodes, "reject graphs with more nodes")

	return cmd
}
