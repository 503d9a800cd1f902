package source

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/chronoline/pkg/cache"
	"github.com/matzehuels/chronoline/pkg/calendar"
	"github.com/matzehuels/chronoline/pkg/layout"
	"github.com/matzehuels/chronoline/pkg/observability"
	"github.com/matzehuels/chronoline/pkg/timeline"
)

// loadTimeout bounds a single fetch+parse once it is detached from callers.
const loadTimeout = 2 * time.Minute

// Dataset is the result of one load: normalized events plus their row
// packing. A failed load yields an empty dataset with Err set.
type Dataset struct {
	Events  []timeline.Event
	Packing layout.Packing
	Groups  []string
	Dropped []timeline.Dropped
	Err     error

	// Generation increases with every load started by a Loader. A dataset
	// with a higher generation supersedes one with a lower generation.
	Generation uint64

	// Hash is the SHA-256 of the raw bytes, empty when the fetch failed.
	Hash     string
	Source   string
	LoadedAt time.Time
}

// Empty reports whether the dataset has no events.
func (d *Dataset) Empty() bool { return d == nil || len(d.Events) == 0 }

// Parse normalizes raw CSV bytes into a dataset.
func Parse(data []byte, cal calendar.Calendar) *Dataset {
	ds := &Dataset{Hash: cache.Hash(data), LoadedAt: time.Now()}
	records, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		ds.Err = err
		return ds
	}
	ds.Events, ds.Dropped = timeline.FromRecords(records, cal)
	ds.Packing = timeline.Pack(ds.Events)
	ds.Groups = timeline.Groups(ds.Events)
	return ds
}

// Loader fetches and normalizes a source, keeping the newest dataset.
// Overlapping Load calls share a single fetch.
type Loader struct {
	src    Source
	cal    calendar.Calendar
	logger *log.Logger

	group singleflight.Group

	mu      sync.RWMutex
	next    uint64
	current *Dataset
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger. The default discards output.
func WithLoaderLogger(l *log.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithCalendar sets the calendar used to convert dates.
func WithCalendar(cal calendar.Calendar) LoaderOption {
	return func(ld *Loader) { ld.cal = cal }
}

// NewLoader creates a loader for src.
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		src:    src,
		cal:    calendar.New(calendar.DefaultEpoch),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the loader's source.
func (l *Loader) Source() Source { return l.src }

// Current returns the newest completed dataset, or an empty dataset with
// generation 0 before the first load.
func (l *Loader) Current() *Dataset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return &Dataset{Source: l.src.String()}
	}
	return l.current
}

// Load fetches, parses and packs the source. Calls that overlap an
// in-flight load wait for it and receive the same dataset. Cancelling ctx
// stops the wait, not the shared load.
func (l *Loader) Load(ctx context.Context) *Dataset {
	ch := l.group.DoChan("load", func() (any, error) {
		return l.load(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		return res.Val.(*Dataset)
	case <-ctx.Done():
		return &Dataset{Err: ctx.Err(), Source: l.src.String()}
	}
}

func (l *Loader) load(ctx context.Context) *Dataset {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	l.mu.Lock()
	l.next++
	gen := l.next
	l.mu.Unlock()

	name := l.src.String()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, name)
	start := time.Now()

	var ds *Dataset
	data, err := l.src.Fetch(ctx)
	if err != nil {
		l.logger.Warn("failed to load data", "source", name, "err", err)
		ds = &Dataset{Err: err, LoadedAt: time.Now()}
	} else {
		ds = Parse(data, l.cal)
		if ds.Err != nil {
			l.logger.Warn("failed to parse data", "source", name, "err", ds.Err)
		}
	}
	ds.Generation = gen
	ds.Source = name

	for _, d := range ds.Dropped {
		l.logger.Debug("dropped row", "line", d.Line, "reason", d.Reason)
	}
	hooks.OnLoadComplete(ctx, name, len(ds.Events), len(ds.Dropped), time.Since(start), ds.Err)
	if ds.Err == nil {
		l.logger.Info("loaded timeline",
			"source", name,
			"events", len(ds.Events),
			"rows", ds.Packing.NumRows(),
			"groups", len(ds.Groups),
			"duration", time.Since(start).Round(time.Millisecond))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || gen > l.current.Generation {
		l.current = ds
	}
	return l.current
}
