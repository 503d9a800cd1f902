package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/chronoline/pkg/errors"
	"github.com/matzehuels/chronoline/pkg/lod"
	"github.com/matzehuels/chronoline/pkg/view"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if got := cfg.View(); got != view.DefaultConfig() {
		t.Errorf("View() = %+v, want view defaults", got)
	}
	if cfg.Calendar().Epoch != -5000 {
		t.Errorf("Calendar epoch = %d", cfg.Calendar().Epoch)
	}
}

func TestDecodeTOML(t *testing.T) {
	cfg := Default()
	data := []byte(`
[zoom]
max = 10000

[server]
addr = ":9000"
session_ttl = "2h"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
`)
	if err := Decode(data, "toml", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Zoom.Max != 10000 || cfg.Zoom.Min != view.DefaultMinZoom {
		t.Errorf("zoom = %+v", cfg.Zoom)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.SessionTTL.Std() != 2*time.Hour {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.CleanupInterval.Std() != time.Minute {
		t.Error("unset keys should keep their defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDecodeYAML(t *testing.T) {
	cfg := Default()
	data := []byte(`
domain:
  min: -1000
  initial_center: 0
render:
  legend: true
  dpr: 2
server:
  debounce: 250ms
`)
	if err := Decode(data, "yaml", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Domain.Min != -1000 || cfg.Domain.Max != view.DefaultDomainMax || cfg.Domain.InitialCenter != 0 {
		t.Errorf("domain = %+v", cfg.Domain)
	}
	if !cfg.Render.Legend || cfg.Render.DPR != 2 || !cfg.Render.MinorTicks {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Server.Debounce.Std() != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Server.Debounce.Std())
	}
}

func TestDecodeUnknownKeys(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{"toml", "[zoom]\nmaxx = 3\n"},
		{"yaml", "zoom:\n  maxx: 3\n"},
		{"toml", "[zoom\n"},
		{"yaml", "zoom: [\n"},
		{"toml", "[server]\nsession_ttl = \"soon\"\n"},
	}
	for _, tt := range tests {
		cfg := Default()
		if err := Decode([]byte(tt.data), tt.format, &cfg); err == nil {
			t.Errorf("Decode(%s, %q) should fail", tt.format, tt.data)
		}
	}

	cfg := Default()
	if err := Decode(nil, "ini", &cfg); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("unsupported format error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"inverted domain", func(c *Config) { c.Domain.Min, c.Domain.Max = 100, 0 }},
		{"center outside", func(c *Config) { c.Domain.InitialCenter = 5000 }},
		{"zero min zoom", func(c *Config) { c.Zoom.Min = 0 }},
		{"max below min", func(c *Config) { c.Zoom.Max = 0.1 }},
		{"step not growing", func(c *Config) { c.Zoom.Step = 1 }},
		{"wheel out above one", func(c *Config) { c.Zoom.WheelOut = 1.1 }},
		{"zero width", func(c *Config) { c.Render.Width = 0 }},
		{"low dpr", func(c *Config) { c.Render.DPR = 0.5 }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero ttl", func(c *Config) { c.Server.SessionTTL = 0 }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without url", func(c *Config) { c.Cache.Backend = CacheRedis }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv(EnvConfig, "")

	if p, err := Resolve(""); p != "" || err != nil {
		t.Errorf("Resolve with nothing present = %q, %v", p, err)
	}

	dir := filepath.Join(xdg, "chronoline")
	os.MkdirAll(dir, 0755)
	yml := filepath.Join(dir, "config.yaml")
	os.WriteFile(yml, []byte("render:\n  legend: true\n"), 0644)
	if p, _ := Resolve(""); p != yml {
		t.Errorf("Resolve = %q, want XDG yaml %q", p, yml)
	}

	envPath := filepath.Join(t.TempDir(), "env.toml")
	os.WriteFile(envPath, nil, 0644)
	t.Setenv(EnvConfig, envPath)
	if p, _ := Resolve(""); p != envPath {
		t.Errorf("Resolve = %q, want $%s path", p, EnvConfig)
	}

	flagPath := filepath.Join(t.TempDir(), "flag.toml")
	os.WriteFile(flagPath, nil, 0644)
	if p, _ := Resolve(flagPath); p != flagPath {
		t.Errorf("Resolve = %q, want explicit path", p)
	}

	if _, err := Resolve(filepath.Join(t.TempDir(), "missing.toml")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing explicit path error = %v", err)
	}
}

func TestLoadAppliesEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvConfig, "")
	t.Setenv("CHRONOLINE_ADDR", ":7777")
	t.Setenv("CHRONOLINE_CACHE_BACKEND", "none")

	cfg, path, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("path = %q, want defaults", path)
	}
	if cfg.Server.Addr != ":7777" || cfg.Cache.Backend != CacheNone {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Server, cfg.Cache)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("[zoom]\nstep = 0.5\n"), 0644)

	_, got, err := Load(path)
	if got != path || !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("Load = %q, %v", got, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []string{"toml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			want := Default()
			want.Server.SessionTTL = Duration(90 * time.Second)

			var buf bytes.Buffer
			if err := Encode(&buf, want, format); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), "1m30s") {
				t.Errorf("durations should encode as strings:\n%s", buf.String())
			}

			var got Config
			if err := Decode(buf.Bytes(), format, &got); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	if p, _ := (CacheConfig{}).Path(); p != "/tmp/xdg-cache/chronoline" {
		t.Errorf("Path() = %q", p)
	}
	if p, _ := (CacheConfig{Dir: "/var/cache/x"}).Path(); p != "/var/cache/x" {
		t.Errorf("Path() with dir = %q", p)
	}
}

func TestFormat(t *testing.T) {
	tests := map[string]string{
		"a.toml":  "toml",
		"a.YAML":  "yaml",
		"a.yml":   "yaml",
		"noext":   "toml",
		"dir/a.x": "toml",
	}
	for in, want := range tests {
		if got := Format(in); got != want {
			t.Errorf("Format(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestZoomMaxBoundsLevelOfDetail(t *testing.T) {
	tests := []struct {
		max  float64
		want lod.Level
	}{
		{view.DefaultMaxZoom, lod.Year},
		{1000, lod.Month},
		{10000, lod.Hour},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Zoom.Max = tt.max
		if err := cfg.Validate(); err != nil {
			t.Fatalf("max %v: %v", tt.max, err)
		}
		v := view.New(cfg.View(), 800, 400, 1)
		v.ZoomTo(1e9, 400)
		if got := lod.Choose(v.Zoom).Level; got != tt.want {
			t.Errorf("zoom.max %v: finest level = %v, want %v", tt.max, got, tt.want)
		}
	}
}
