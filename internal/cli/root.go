package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoflow/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands
// registered. --verbose and --config are persistent.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Orthoflow compiles graphs into orthogonal diagram layouts",
		Long: `Orthoflow is a layout compiler for flowchart-style diagrams. It turns a graph
of nodes, edges and nested groups into positioned boxes and orthogonal edge
routes, ready for any renderer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/orthoflow/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
