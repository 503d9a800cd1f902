package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chronoline/pkg/cache"
	"github.com/matzehuels/chronoline/pkg/calendar"
	"github.com/matzehuels/chronoline/pkg/observability"
	"github.com/matzehuels/chronoline/pkg/render"
	"github.com/matzehuels/chronoline/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the HTTP viewer and the terminal viewer share it.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// FetchTTL is how long remote CSVs are reused. Zero uses cache.TTLFetch.
	FetchTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// NewLoader opens opts.Input and returns a loader for it. Remote sources
// fetch through the runner's cache.
func (r *Runner) NewLoader(opts Options) (*source.Loader, error) {
	r.applyLogger(&opts)
	opts.SetFrameDefaults()

	src, err := source.Open(opts.Input)
	if err != nil {
		return nil, err
	}
	if h, ok := src.(*source.HTTP); ok {
		h.Cache = r.Cache
		h.Keyer = r.Keyer
		h.TTL = r.FetchTTL
		h.Refresh = opts.Refresh
	}
	return source.NewLoader(src,
		source.WithLoaderLogger(opts.Logger),
		source.WithCalendar(calendar.New(int(opts.View.DomainMin))),
	), nil
}

// Execute runs the complete load → frame → render pipeline with caching.
//
// A dataset that fails to load is not an error here: the frame shows the
// failure and Result.Dataset.Err carries it. Errors are returned for
// invalid options, cancellation and render failures.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loader, err := r.NewLoader(opts)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	loadStart := time.Now()
	ds := loader.Load(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)

	result, err := r.ExecuteDataset(ctx, ds, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// ExecuteDataset runs the frame and render stages on an already loaded
// dataset.
func (r *Runner) ExecuteDataset(ctx context.Context, ds *source.Dataset, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForFrame(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Dataset: ds}
	result.Stats.EventCount = len(ds.Events)
	result.Stats.DroppedCount = len(ds.Dropped)
	result.Stats.RowCount = ds.Packing.NumRows()

	// Stage 2: Frame
	frameStart := time.Now()
	result.Frame = BuildFrame(ds, opts)
	result.Stats.FrameTime = time.Since(frameStart)
	result.Stats.HitCount = len(result.Frame.Hits)

	opts.Logger.Debug("built frame",
		"zoom", result.Frame.Zoom,
		"level", result.Frame.Level,
		"commands", len(result.Frame.Commands),
		"hits", len(result.Frame.Hits))

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Frame, ds.Hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime.Round(time.Millisecond))

	return result, nil
}

// RenderWithCacheInfo renders f in every requested format and reports
// whether all artifacts came from cache. Artifacts are cached under the
// dataset hash; an empty hash (failed load) bypasses the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f render.Frame, datasetHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	useCache := datasetHash != ""

	// Try to get all formats from cache
	if useCache {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(datasetHash, opts.ArtifactKeyOpts(format, f))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				cacheHooks.OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderFrame(ctx, f, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if useCache {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(datasetHash, opts.ArtifactKeyOpts(format, f))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
				opts.Logger.Debug("cache write failed", "format", format, "err", err)
				continue
			}
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, f render.Frame, datasetHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, f, datasetHash, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
