// Package config loads Chronoline settings from TOML or YAML files and the
// environment.
//
// # Search Order
//
// The first of these that is set or exists is used:
//
//  1. an explicit path (the --config flag)
//  2. $CHRONOLINE_CONFIG
//  3. $XDG_CONFIG_HOME/chronoline/config.toml (or config.yaml, config.yml),
//     with ~/.config standing in for an unset XDG_CONFIG_HOME
//
// When nothing is found the defaults apply. Values read from a file are laid
// over [Default], so a file only needs the keys it changes.
//
// # Environment
//
// A .env file in the working directory is loaded first (existing variables
// win). Then these variables override the file:
//
//	CHRONOLINE_ADDR           server.addr
//	CHRONOLINE_CACHE_BACKEND  cache.backend
//	CHRONOLINE_CACHE_DIR      cache.dir
//	CHRONOLINE_REDIS_URL      cache.redis_url
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/chronoline/pkg/calendar"
	errs "github.com/matzehuels/chronoline/pkg/errors"
	"github.com/matzehuels/chronoline/pkg/view"
)

const (
	appName = "chronoline"

	// EnvConfig names the environment variable holding a config path.
	EnvConfig = "CHRONOLINE_CONFIG"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete settings tree.
type Config struct {
	Domain DomainConfig `toml:"domain" yaml:"domain"`
	Zoom   ZoomConfig   `toml:"zoom" yaml:"zoom"`
	Render RenderConfig `toml:"render" yaml:"render"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
}

// DomainConfig bounds the timeline in years.
type DomainConfig struct {
	Min           float64 `toml:"min" yaml:"min"`
	Max           float64 `toml:"max" yaml:"max"`
	InitialCenter float64 `toml:"initial_center" yaml:"initial_center"`
}

// ZoomConfig bounds zoom in pixels per year and sets the step factors.
// The default max of 500 stops at the year level; the month, day and hour
// levels start at 600, 1200 and 8000 and need a larger max.
type ZoomConfig struct {
	Min      float64 `toml:"min" yaml:"min"`
	Max      float64 `toml:"max" yaml:"max"`
	Step     float64 `toml:"step" yaml:"step"`
	WheelIn  float64 `toml:"wheel_in" yaml:"wheel_in"`
	WheelOut float64 `toml:"wheel_out" yaml:"wheel_out"`
}

// RenderConfig holds defaults for rendered frames.
type RenderConfig struct {
	Width      float64 `toml:"width" yaml:"width"`
	Height     float64 `toml:"height" yaml:"height"`
	DPR        float64 `toml:"dpr" yaml:"dpr"`
	Legend     bool    `toml:"legend" yaml:"legend"`
	MinorTicks bool    `toml:"minor_ticks" yaml:"minor_ticks"`
	FontFamily string  `toml:"font_family" yaml:"font_family"`
	EmbedFont  bool    `toml:"embed_font" yaml:"embed_font"`
}

// ServerConfig configures the HTTP viewer.
type ServerConfig struct {
	Addr            string   `toml:"addr" yaml:"addr"`
	SessionTTL      Duration `toml:"session_ttl" yaml:"session_ttl"`
	CleanupInterval Duration `toml:"cleanup_interval" yaml:"cleanup_interval"`
	Watch           bool     `toml:"watch" yaml:"watch"`
	Debounce        Duration `toml:"debounce" yaml:"debounce"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend" yaml:"backend"`
	Dir      string   `toml:"dir" yaml:"dir"`
	RedisURL string   `toml:"redis_url" yaml:"redis_url"`
	Prefix   string   `toml:"prefix" yaml:"prefix"`
	FetchTTL Duration `toml:"fetch_ttl" yaml:"fetch_ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	vc := view.DefaultConfig()
	return Config{
		Domain: DomainConfig{
			Min:           vc.DomainMin,
			Max:           vc.DomainMax,
			InitialCenter: vc.InitialCenter,
		},
		Zoom: ZoomConfig{
			Min:      vc.MinZoom,
			Max:      vc.MaxZoom,
			Step:     vc.ZoomStep,
			WheelIn:  vc.WheelIn,
			WheelOut: vc.WheelOut,
		},
		Render: RenderConfig{
			Width:      1200,
			Height:     400,
			DPR:        1,
			MinorTicks: true,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			SessionTTL:      Duration(30 * time.Minute),
			CleanupInterval: Duration(time.Minute),
			Watch:           true,
			Debounce:        Duration(100 * time.Millisecond),
		},
		Cache: CacheConfig{
			Backend:  CacheFile,
			Prefix:   appName + ":",
			FetchTTL: Duration(15 * time.Minute),
		},
	}
}

// View converts the domain and zoom sections into a view configuration.
func (c Config) View() view.Config {
	return view.Config{
		DomainMin:     c.Domain.Min,
		DomainMax:     c.Domain.Max,
		InitialCenter: c.Domain.InitialCenter,
		MinZoom:       c.Zoom.Min,
		MaxZoom:       c.Zoom.Max,
		ZoomStep:      c.Zoom.Step,
		WheelIn:       c.Zoom.WheelIn,
		WheelOut:      c.Zoom.WheelOut,
	}
}

// Calendar returns a calendar anchored at the domain minimum.
func (c Config) Calendar() calendar.Calendar {
	return calendar.New(int(c.Domain.Min))
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	bad := func(format string, args ...any) error {
		return errs.New(errs.ErrCodeInvalidConfig, format, args...)
	}
	switch {
	case c.Domain.Min >= c.Domain.Max:
		return bad("domain.min (%v) must be below domain.max (%v)", c.Domain.Min, c.Domain.Max)
	case c.Domain.InitialCenter < c.Domain.Min || c.Domain.InitialCenter > c.Domain.Max:
		return bad("domain.initial_center (%v) must lie within the domain", c.Domain.InitialCenter)
	case c.Zoom.Min <= 0 || c.Zoom.Max < c.Zoom.Min:
		return bad("zoom bounds must satisfy 0 < min <= max, got [%v, %v]", c.Zoom.Min, c.Zoom.Max)
	case c.Zoom.Step <= 1:
		return bad("zoom.step must be greater than 1, got %v", c.Zoom.Step)
	case c.Zoom.WheelIn <= 1 || c.Zoom.WheelOut <= 0 || c.Zoom.WheelOut >= 1:
		return bad("zoom.wheel_in must exceed 1 and zoom.wheel_out must lie in (0, 1)")
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return bad("render size must be positive, got %vx%v", c.Render.Width, c.Render.Height)
	case c.Render.DPR < 1:
		return bad("render.dpr must be at least 1, got %v", c.Render.DPR)
	case c.Server.Addr == "":
		return bad("server.addr cannot be empty")
	case c.Server.SessionTTL <= 0 || c.Server.CleanupInterval <= 0:
		return bad("server.session_ttl and server.cleanup_interval must be positive")
	case c.Server.Debounce < 0:
		return bad("server.debounce cannot be negative")
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return bad("cache.redis_url is required for the redis backend")
		}
	default:
		return bad("cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	return nil
}

// =============================================================================
// Loading
// =============================================================================

// Load resolves the config path, decodes it over the defaults, applies
// environment overrides and validates the result. It returns the path that
// was read, or "" when the defaults were used.
func Load(explicit string) (Config, string, error) {
	_ = godotenv.Load()

	cfg := Default()
	path, err := Resolve(explicit)
	if err != nil {
		return cfg, "", err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, path, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
		}
		if err := Decode(data, Format(path), &cfg); err != nil {
			return cfg, path, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

// Resolve returns the config file to read. An explicit path or one named by
// $CHRONOLINE_CONFIG must exist; the XDG locations are optional.
func Resolve(explicit string) (string, error) {
	for _, p := range []string{explicit, os.Getenv(EnvConfig)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", p)
		}
		return p, nil
	}

	dir, err := Dir()
	if err != nil {
		return "", nil
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Dir returns the config directory ($XDG_CONFIG_HOME/chronoline).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the file cache directory: cache.dir when set, otherwise
// $XDG_CACHE_HOME/chronoline with ~/.cache standing in for an unset
// XDG_CACHE_HOME.
func (c CacheConfig) Path() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Format returns "yaml" for .yaml/.yml paths and "toml" otherwise.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// Decode parses data in the given format into cfg. Unknown keys are errors.
func Decode(data []byte, format string, cfg *Config) error {
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return err
		}
		return nil
	case "toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil
	default:
		return errs.New(errs.ErrCodeUnsupported, "config format %q", format)
	}
}

// Encode writes cfg in the given format.
func Encode(w io.Writer, cfg Config, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(cfg)
	default:
		return errs.New(errs.ErrCodeUnsupported, "config format %q", format)
	}
}

// ApplyEnv overrides settings from environment variables read via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Addr, "CHRONOLINE_ADDR")
	set(&c.Cache.Backend, "CHRONOLINE_CACHE_BACKEND")
	set(&c.Cache.Dir, "CHRONOLINE_CACHE_DIR")
	set(&c.Cache.RedisURL, "CHRONOLINE_REDIS_URL")
}

// =============================================================================
// Duration
// =============================================================================

// Duration is a time.Duration written as a string such as "30m" in both
// TOML and YAML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
