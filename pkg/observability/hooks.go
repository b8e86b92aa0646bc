// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about widget interaction, lazy loading, cache operations
// and served requests.
//
// Hooks are registered by main, not by libraries, which keeps the core
// packages free of backend dependencies. Unregistered hooks are no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetWidgetHooks(&myWidgetHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Widget().OnLoadStart(ctx, key)
//	// ... host fetches children ...
//	observability.Widget().OnLoadComplete(ctx, key, count, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// WidgetHooks receives events from the tree widget.
type WidgetHooks interface {
	// Interaction events: click, focus, toggle, center.
	OnInteraction(ctx context.Context, action, key string)

	// Lazy loading events
	OnLoadStart(ctx context.Context, key string)
	OnLoadComplete(ctx context.Context, key string, children int, duration time.Duration, err error)

	// OnUpdate records one reconciliation pass.
	OnUpdate(ctx context.Context, anchor string, visible, transitions int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// keyType is the first segment of the key, e.g. "children" or "scene".
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest receives the raw path. OnResponse and OnError receive the
	// matched route pattern.
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
	// OnError is called for responses with a 5xx status.
	OnError(ctx context.Context, method, path string, err error)
}

// NoopWidgetHooks is a no-op implementation of WidgetHooks.
type NoopWidgetHooks struct{}

func (NoopWidgetHooks) OnInteraction(context.Context, string, string)                     {}
func (NoopWidgetHooks) OnLoadStart(context.Context, string)                               {}
func (NoopWidgetHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopWidgetHooks) OnUpdate(context.Context, string, int, int, time.Duration)         {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// slot holds one registered hook set, falling back to its no-op.
type slot[H any] struct {
	mu   sync.RWMutex
	h    H
	noop H
}

func newSlot[H any](noop H) *slot[H] { return &slot[H]{h: noop, noop: noop} }

func (s *slot[H]) set(h H) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

func (s *slot[H]) get() H {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h
}

func (s *slot[H]) reset() {
	s.mu.Lock()
	s.h = s.noop
	s.mu.Unlock()
}

var (
	widgetSlot = newSlot[WidgetHooks](NoopWidgetHooks{})
	cacheSlot  = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot   = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetWidgetHooks registers widget hooks. Call it before building widgets;
// nil is ignored.
func SetWidgetHooks(h WidgetHooks) { widgetSlot.set(h) }

// SetCacheHooks registers cache hooks; nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks registers HTTP hooks; nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

// Widget returns the registered widget hooks.
func Widget() WidgetHooks { return widgetSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks. Tests use it to undo registrations.
func Reset() {
	widgetSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
