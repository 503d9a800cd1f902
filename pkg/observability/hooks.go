// Package observability lets callers watch dataset loads, frame renders,
// cache lookups and remote fetches without the libraries depending on a
// metrics or tracing backend.
//
// Libraries emit through the package-level accessors:
//
//	observability.Pipeline().OnLoadStart(ctx, src)
//	observability.Pipeline().OnLoadComplete(ctx, src, events, dropped, d, err)
//
// Binaries install implementations once at startup, before any work runs:
//
//	observability.Register(observability.NewLogHooks(logger))
//
// Until something is registered every accessor returns a no-op.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from dataset loading and rendering.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, events, dropped int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is "fetch" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from remote CSV fetches.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, status int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every fetch event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// registry is swapped as a whole so readers never see a partial update.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

func load() registry { return *current.Load() }

func update(fn func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Register installs h for every hook interface it implements and reports
// whether it implemented any.
func Register(h any) bool {
	p, okP := h.(PipelineHooks)
	c, okC := h.(CacheHooks)
	t, okH := h.(HTTPHooks)
	update(func(r *registry) {
		if okP {
			r.pipeline = p
		}
		if okC {
			r.cache = c
		}
		if okH {
			r.http = t
		}
	})
	return okP || okC || okH
}

// SetPipelineHooks installs h. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks installs h. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks installs h. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

func Pipeline() PipelineHooks { return load().pipeline }
func Cache() CacheHooks       { return load().cache }
func HTTP() HTTPHooks         { return load().http }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
