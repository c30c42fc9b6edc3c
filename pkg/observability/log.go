package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// charmbracelet logger.
type LogHooks struct {
	logger *log.Logger
}

var (
	_ LayoutHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodes, edges int) {
	h.logger.Debug("layout started", "nodes", nodes, "edges", edges)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "nodes", nodes, "duration", d, "err", err)
		return
	}
	h.logger.Debug("layout complete", "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnPrimitiveRun(_ context.Context, scope string, leaves int, d time.Duration, err error) {
	h.logger.Debug("primitive run", "scope", scope, "leaves", leaves, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}
