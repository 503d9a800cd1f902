package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/chronoline/pkg/cache"
	errs "github.com/matzehuels/chronoline/pkg/errors"
)

const sampleCSV = `Year,Month,Day,End Year,Headline,Group
-490,9,12,,Marathon,Greek
1914,7,28,1918,World War I,War
abc,,,,Broken,
1969,7,20,,Moon landing,Space
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timeline.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen(t *testing.T) {
	tests := []struct {
		ref      string
		wantHTTP bool
		wantPath string
		wantErr  bool
	}{
		{ref: "https://example.org/t.csv", wantHTTP: true},
		{ref: "HTTP://example.org/t.csv", wantHTTP: true},
		{ref: "data/t.csv", wantPath: "data/t.csv"},
		{ref: "file:///srv/t.csv", wantPath: "/srv/t.csv"},
		{ref: "", wantErr: true},
		{ref: "ftp://example.org/t.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			src, err := Open(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			switch s := src.(type) {
			case *HTTP:
				if !tt.wantHTTP {
					t.Errorf("Open(%q) returned HTTP source", tt.ref)
				}
			case *File:
				if tt.wantHTTP || s.Path != tt.wantPath {
					t.Errorf("Open(%q) = File{%q}", tt.ref, s.Path)
				}
			}
		})
	}
}

func TestFileFetch(t *testing.T) {
	path := writeFile(t, sampleCSV)
	data, err := (&File{Path: path}).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleCSV {
		t.Error("content mismatch")
	}

	_, err = (&File{Path: filepath.Join(t.TempDir(), "missing.csv")}).Fetch(context.Background())
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestHTTPFetchCaches(t *testing.T) {
	var hits atomic.Int32
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		agent.Store(r.UserAgent())
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	src := NewHTTP(srv.URL + "/t.csv")
	src.Cache = c

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		data, err := src.Fetch(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != sampleCSV {
			t.Errorf("fetch %d: content mismatch", i)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (second fetch cached)", hits.Load())
	}
	if ua, _ := agent.Load().(string); !strings.HasPrefix(ua, "chronoline/") {
		t.Errorf("User-Agent = %q", ua)
	}

	src.Refresh = true
	if _, err := src.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2 after refresh", hits.Load())
	}
}

func TestHTTPFetchRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := NewHTTP(srv.URL)
	src.Delay = time.Millisecond
	if _, err := src.Fetch(context.Background()); err != nil {
		t.Fatalf("should succeed after retry: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestHTTPFetchStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		header   map[string]string
		wantHits int32
		check    func(error) bool
	}{
		{
			name:     "not found is not retried",
			status:   http.StatusNotFound,
			wantHits: 1,
			check: func(err error) bool {
				return errors.Is(err, cache.ErrNotFound) && errs.Is(err, errs.ErrCodeNotFound)
			},
		},
		{
			name:     "server error exhausts retries",
			status:   http.StatusServiceUnavailable,
			wantHits: 3,
			check:    func(err error) bool { return errors.Is(err, cache.ErrNetwork) },
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			header:   map[string]string{"Retry-After": "7"},
			wantHits: 3,
			check: func(err error) bool {
				var rl *errs.RateLimitedError
				return errors.As(err, &rl) && rl.RetryAfter == 7
			},
		},
		{
			name:     "client error",
			status:   http.StatusForbidden,
			wantHits: 1,
			check:    func(err error) bool { return errors.Is(err, cache.ErrNetwork) && !cache.IsRetryable(err) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			src := NewHTTP(srv.URL)
			src.Delay = time.Millisecond
			src.MaxDelay = 5 * time.Millisecond
			_, err := src.Fetch(context.Background())
			if err == nil || !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
			if hits.Load() != tt.wantHits {
				t.Errorf("server hits = %d, want %d", hits.Load(), tt.wantHits)
			}
		})
	}
}

func TestLoaderLoad(t *testing.T) {
	path := writeFile(t, sampleCSV)
	l := NewLoader(&File{Path: path})

	if cur := l.Current(); cur.Generation != 0 || !cur.Empty() {
		t.Errorf("Current before load = gen %d, %d events", cur.Generation, len(cur.Events))
	}

	ds := l.Load(context.Background())
	if ds.Err != nil {
		t.Fatal(ds.Err)
	}
	if len(ds.Events) != 3 || len(ds.Dropped) != 1 {
		t.Errorf("events = %d, dropped = %d", len(ds.Events), len(ds.Dropped))
	}
	if ds.Dropped[0].Line != 4 {
		t.Errorf("dropped line = %d, want 4", ds.Dropped[0].Line)
	}
	if got := strings.Join(ds.Groups, ","); got != "Greek,Space,War" {
		t.Errorf("Groups = %q", got)
	}
	if ds.Packing.NumRows() == 0 || len(ds.Packing.RowOf) != 3 {
		t.Errorf("packing = %+v", ds.Packing)
	}
	if ds.Generation != 1 || ds.Hash != cache.Hash([]byte(sampleCSV)) || ds.Source != path {
		t.Errorf("gen %d hash %q source %q", ds.Generation, ds.Hash, ds.Source)
	}

	ds2 := l.Load(context.Background())
	if ds2.Generation != 2 || l.Current() != ds2 {
		t.Errorf("second load generation = %d", ds2.Generation)
	}
}

func TestLoaderFailure(t *testing.T) {
	l := NewLoader(&File{Path: filepath.Join(t.TempDir(), "missing.csv")})
	ds := l.Load(context.Background())
	if ds.Err == nil || !ds.Empty() {
		t.Fatalf("expected empty dataset with error, got %+v", ds)
	}
	if !errs.Is(ds.Err, errs.ErrCodeFileNotFound) {
		t.Errorf("Err = %v", ds.Err)
	}
	if l.Current() != ds {
		t.Error("failed load should still become current")
	}
}

// blockingSource counts fetches and blocks each one until released.
type blockingSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (s *blockingSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}
	<-s.release
	return []byte(sampleCSV), nil
}

func (s *blockingSource) String() string { return "blocking" }

func TestLoaderCoalesces(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	l := NewLoader(src)
	ctx := context.Background()

	results := make([]*Dataset, 5)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = l.Load(ctx)
	}()
	<-src.started

	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Load(ctx)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	if n := src.calls.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}
	for i, ds := range results {
		if ds != results[0] {
			t.Errorf("result %d differs from shared dataset", i)
		}
	}
}

func TestLoaderLoadCancelledWait(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	l := NewLoader(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *Dataset)
	go func() { done <- l.Load(ctx) }()
	<-src.started
	cancel()

	ds := <-done
	if !errors.Is(ds.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", ds.Err)
	}

	close(src.release)
	// The shared load still completes and becomes current.
	deadline := time.Now().Add(2 * time.Second)
	for l.Current().Generation == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if l.Current().Generation != 1 {
		t.Error("detached load did not complete")
	}
}
