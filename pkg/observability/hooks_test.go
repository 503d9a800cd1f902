package observability

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// recorder implements every hook interface and counts calls by name.
type recorder struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopHTTPHooks

	mu    sync.Mutex
	calls map[string]int
}

func (r *recorder) hit(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[name]++
}

func (r *recorder) OnLoadStart(context.Context, string)               { r.hit("load") }
func (r *recorder) OnCacheHit(context.Context, string)                { r.hit("hit") }
func (r *recorder) OnRequest(context.Context, string, string, string) { r.hit("request") }

type cacheOnly struct{ NoopCacheHooks }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T", HTTP())
	}

	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)
	Cache().OnCacheSet(ctx, "artifact", 1024)
	HTTP().OnError(ctx, "GET", "example.org", "/events.csv", nil)
}

func TestRegister(t *testing.T) {
	defer Reset()
	ctx := context.Background()

	r := &recorder{}
	if !Register(r) {
		t.Fatal("Register(recorder) = false")
	}
	Pipeline().OnLoadStart(ctx, "events.csv")
	Cache().OnCacheHit(ctx, "fetch")
	HTTP().OnRequest(ctx, "GET", "example.org", "/events.csv")
	for _, name := range []string{"load", "hit", "request"} {
		if r.calls[name] != 1 {
			t.Errorf("calls[%s] = %d, want 1", name, r.calls[name])
		}
	}

	c := &cacheOnly{}
	Register(c)
	if Cache() != c {
		t.Error("cache hooks not replaced")
	}
	if Pipeline() != r {
		t.Error("partial Register replaced pipeline hooks")
	}

	if Register(42) {
		t.Error("Register(42) = true")
	}
}

func TestSetters(t *testing.T) {
	defer Reset()

	r := &recorder{}
	SetPipelineHooks(r)
	SetCacheHooks(r)
	SetHTTPHooks(r)
	if Pipeline() != r || Cache() != r || HTTP() != r {
		t.Fatal("setters did not install hooks")
	}

	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)
	if Pipeline() != r || Cache() != r || HTTP() != r {
		t.Error("nil hooks replaced installed ones")
	}

	Reset()
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("after Reset, HTTP() = %T", HTTP())
	}
}

func TestConcurrentRegister(t *testing.T) {
	defer Reset()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Register(&recorder{})
		}()
		go func() {
			defer wg.Done()
			Cache().OnCacheMiss(ctx, "fetch")
			HTTP().OnResponse(ctx, "GET", "example.org", "/", 200, time.Millisecond)
		}()
	}
	wg.Wait()

	if _, ok := Pipeline().(*recorder); !ok {
		t.Errorf("Pipeline() = %T, want *recorder", Pipeline())
	}
}

func TestLogHooks(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	h.Register()

	ctx := context.Background()
	Pipeline().OnLoadComplete(ctx, "events.csv", 12, 1, time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "artifact")
	HTTP().OnResponse(ctx, "GET", "example.org", "/events.csv", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"load complete", "events=12", "cache miss", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
