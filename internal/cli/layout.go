package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/pipeline"
)

// layoutFlags holds the raw layout command flags. Only flags the user
// set override the config file.
type layoutFlags struct {
	output      string
	inputFormat string
	noCache     bool
	refresh     bool
	timeout     time.Duration
	opts        pipeline.Options
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml|-]",
		Short: "Compile a graph into a positioned diagram",
		Long: `Compile a graph into a positioned diagram.

The input is a JSON or YAML graph of nodes, edges and groups. The output is a
layout with node boxes, group boxes and orthogonal edge routes, written as
JSON (default) or msgpack.

Groups may set their own direction; they are laid out separately and placed
into the surrounding diagram as a single block.

Results are cached locally for faster subsequent runs.`,
		Example: `  orthoflow layout flow.yaml
  orthoflow layout flow.json -d LR -o flow.layout.json
  cat flow.json | orthoflow layout - -o - --format msgpack`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "output file, - for stdout (default: <input>.layout.<format>)")
	flags.StringVar(&f.inputFormat, "input-format", "", "input format when reading stdin: json (default), yaml")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	flags.BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
	flags.DurationVar(&f.timeout, "timeout", 0, "abort layout after this long (0 = no limit)")

	flags.StringVarP(&f.opts.Direction, "direction", "d", "", "root direction: TD, BT, LR, RL (default: graph's own, else TD)")
	flags.StringVarP(&f.opts.Format, "format", "f", "", "output format: json (default), msgpack")
	flags.StringVar(&f.opts.Engine, "engine", "", "layered engine: graphviz (default), simple")
	flags.StringVar(&f.opts.Measure, "measure", "", "label measurement: face (default), cells")
	flags.StringVar(&f.opts.Font, "font", "", "TrueType font file for label measurement (default: built-in)")
	flags.Float64Var(&f.opts.Padding, "padding", 0, "canvas padding in pixels (0 uses the default, 40)")
	flags.Float64Var(&f.opts.NodeSpacing, "node-spacing", 0, "gap between nodes in a layer (0 uses the default, 24)")
	flags.Float64Var(&f.opts.LayerSpacing, "layer-spacing", 0, "gap between layers (0 uses the default, 40)")
	flags.Float64Var(&f.opts.WrapWidth, "wrap-width", 0, "wrap node labels wider than this")
	flags.IntVar(&f.opts.MaxNodes, "max-nodes", 0, "reject graphs with more nodes")

	_ = cmd.RegisterFlagCompletionFunc("direction", cobra.FixedCompletions(
		[]string{"TD", "BT", "LR", "RL"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("engine", cobra.FixedCompletions(
		pipeline.Engines(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"json", "msgpack"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// mergeLayoutFlags overlays the flags the user set on the config defaults.
func mergeLayoutFlags(cmd *cobra.Command, base pipeline.Options, f layoutFlags) pipeline.Options {
	set := cmd.Flags().Changed
	if set("direction") {
		base.Direction = f.opts.Direction
	}
	if set("format") {
		base.Format = f.opts.Format
	}
	if set("engine") {
		base.Engine = f.opts.Engine
	}
	if set("measure") {
		base.Measure = f.opts.Measure
	}
	if set("font") {
		base.Font = f.opts.Font
	}
	if set("padding") {
		base.Padding = f.opts.Padding
	}
	if set("node-spacing") {
		base.NodeSpacing = f.opts.NodeSpacing
	}
	if set("layer-spacing") {
		base.LayerSpacing = f.opts.LayerSpacing
	}
	if set("wrap-width") {
		base.WrapWidth = f.opts.WrapWidth
	}
	if set("max-nodes") {
		base.MaxNodes = f.opts.MaxNodes
	}
	if set("timeout") {
		base.Timeout = f.timeout
	}
	base.Refresh = f.refresh
	return base
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, f layoutFlags) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := mergeLayoutFlags(cmd, cfg.pipelineOptions(), f)
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	g, err := readGraphInput(cmd.InOrStdin(), input, f.inputFormat)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	toStdout := f.output == "-"
	prog := newProgress(c.Logger)
	var spinner *Spinner
	if !toStdout {
		spinner = newSpinner(ctx, "Laying out graph...")
		spinner.Start()
	}

	res, err := runner.Execute(ctx, g, opts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Layout failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Laid out %d nodes", res.Stats.NodeCount))

	if toStdout {
		_, err := cmd.OutOrStdout().Write(res.Output)
		return err
	}

	outputPath := f.output
	if outputPath == "" {
		outputPath = defaultOutputPath(input, res.Format)
	}
	if err := os.WriteFile(outputPath, res.Output, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "Layout complete")
	printFile(w, outputPath)
	printStats(w, res.Stats, res.CacheHit)
	printNextStep(w, "Inspect", appName+" inspect "+outputPath)
	return nil
}

// readGraphInput reads a graph file, or stdin when path is "-".
func readGraphInput(stdin io.Reader, path, format string) (*graph.Graph, error) {
	if path != "-" {
		return graph.ReadGraphFile(path)
	}
	f := graph.FormatJSON
	if format != "" {
		parsed, err := graph.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		f = parsed
	}
	return graph.ReadGraph(stdin, f)
}

// defaultOutputPath derives <input>.layout.<ext> next to the input.
func defaultOutputPath(input string, format graph.Format) string {
	ext := "json"
	if format == graph.FormatMsgpack {
		ext = "msgpack"
	}
	if input == "-" {
		return "layout." + ext
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".layout." + ext
}

