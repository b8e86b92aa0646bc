package cli

import (
	"context"
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

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rendered 42 nodes (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// widgetLogHooks logs widget activity at debug level.
type widgetLogHooks struct{ logger *log.Logger }

func (h widgetLogHooks) OnInteraction(_ context.Context, action, node string) {
	h.logger.Debug("interaction", "action", action, "node", node)
}

func (h widgetLogHooks) OnLoadStart(_ context.Context, node string) {
	h.logger.Debug("load started", "node", node)
}

func (h widgetLogHooks) OnLoadComplete(_ context.Context, node string, count int, took time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "node", node, "took", took, "err", err)
		return
	}
	h.logger.Debug("load complete", "node", node, "children", count, "took", took)
}

func (h widgetLogHooks) OnUpdate(_ context.Context, anchor string, nodes, transitions int, took time.Duration) {
	h.logger.Debug("frame", "anchor", anchor, "nodes", nodes, "transitions", transitions, "took", took)
}

// cacheLogHooks logs cache lookups at debug level.
type cacheLogHooks struct{ logger *log.Logger }

func (h cacheLogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h cacheLogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h cacheLogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// httpLogHooks logs failed server responses. Every request is already
// logged by the server at debug level.
type httpLogHooks struct{ logger *log.Logger }

func (h httpLogHooks) OnRequest(context.Context, string, string) {}

func (h httpLogHooks) OnResponse(_ context.Context, method, route string, status int, took time.Duration) {
	if status >= 400 {
		h.logger.Debug("request failed", "method", method, "route", route, "status", status, "took", took)
	}
}

func (h httpLogHooks) OnError(_ context.Context, method, route string, err error) {
	h.logger.Warn("server error", "method", method, "route", route, "err", err)
}
