// Package cli implements the orthoflow command-line interface.
//
// # Commands
//
//   - layout: compile a JSON or YAML graph into a positioned diagram
//   - inspect: summarize a layout file as tables, or browse it interactively
//   - serve: run the HTTP layout API
//   - cache: manage the local layout cache
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Defaults can be set in a TOML file, by default
// $XDG_CONFIG_HOME/orthoflow/config.toml. Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes layout, cache and HTTP hooks to the logger.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Laid out 42 nodes (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
