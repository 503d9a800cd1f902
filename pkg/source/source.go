package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/chronoline/pkg/buildinfo"
	"github.com/matzehuels/chronoline/pkg/cache"
	errs "github.com/matzehuels/chronoline/pkg/errors"
	"github.com/matzehuels/chronoline/pkg/observability"
)

const (
	// MaxBytes caps the size of a fetched CSV.
	MaxBytes = 32 << 20

	httpTimeout = 30 * time.Second
)

// Source yields the raw bytes of a timeline CSV.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)

	// String names the source for logs and cache keys.
	String() string
}

// =============================================================================
// File
// =============================================================================

// File reads a CSV from the local filesystem.
type File struct {
	Path string
}

// Fetch reads the file.
func (f *File) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", f.Path)
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return readLimited(fh)
}

func (f *File) String() string { return f.Path }

// =============================================================================
// HTTP
// =============================================================================

// HTTP fetches a CSV over http(s). Responses are cached under
// [cache.Keyer.FetchKey] and failed requests are retried with backoff.
type HTTP struct {
	URL string

	Client *http.Client
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration

	// Refresh bypasses the cache read; the fresh response is still stored.
	Refresh bool

	// Attempts, Delay and MaxDelay configure retries. Zero values use
	// DefaultAttempts, DefaultDelay and DefaultMaxDelay.
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// NewHTTP returns an HTTP source with a default client, no cache and the
// default TTL.
func NewHTTP(rawURL string) *HTTP {
	return &HTTP{
		URL:    rawURL,
		Client: &http.Client{Timeout: httpTimeout},
		Cache:  cache.NewNullCache(),
		Keyer:  cache.NewDefaultKeyer(),
		TTL:    cache.TTLFetch,
	}
}

// Fetch returns the cached body when present, otherwise downloads it.
func (h *HTTP) Fetch(ctx context.Context) ([]byte, error) {
	c, keyer := h.Cache, h.Keyer
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := keyer.FetchKey(h.URL)

	if !h.Refresh {
		if data, hit, err := c.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "fetch")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "fetch")
	}

	policy := retryPolicy{attempts: h.Attempts, delay: h.Delay, maxDelay: h.MaxDelay}
	if policy.attempts == 0 {
		policy.attempts = DefaultAttempts
	}
	if policy.delay == 0 {
		policy.delay = DefaultDelay
	}
	if policy.maxDelay == 0 {
		policy.maxDelay = DefaultMaxDelay
	}

	var data []byte
	err := policy.do(ctx, func() error {
		var err error
		data, err = h.get(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	ttl := h.TTL
	if ttl == 0 {
		ttl = cache.TTLFetch
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "fetch", len(data))
	}
	return data, nil
}

func (h *HTTP) String() string { return h.URL }

func (h *HTTP) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidSource, err, "build request")
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return readLimited(resp.Body)
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errs.Wrap(errs.ErrCodeNotFound, cache.ErrNotFound, "status %d", code)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return cache.Retryable(&errs.RateLimitedError{RetryAfter: retryAfter})
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBytes {
		return nil, errs.New(errs.ErrCodeInvalidInput, "source larger than %d bytes", MaxBytes)
	}
	return data, nil
}

// =============================================================================
// Open
// =============================================================================

// Open returns an HTTP source for http(s) references and a File otherwise.
// A file:// URL is accepted as a path.
func Open(ref string) (Source, error) {
	if err := errs.ValidateSourceRef(strings.TrimPrefix(ref, "file://")); err != nil {
		return nil, err
	}
	if IsURL(ref) {
		return NewHTTP(ref), nil
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		return &File{Path: u.Path}, nil
	}
	return &File{Path: ref}, nil
}

// IsURL reports whether ref is an http(s) URL.
func IsURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
