// Package cache stores fetched timeline data and rendered artifacts.
//
// Two kinds of entries are cached:
//
//   - Fetch entries: raw bytes of a remote CSV, keyed by URL ([Keyer.FetchKey]).
//   - Artifact entries: rendered SVG/PNG/PDF/JSON, keyed by the dataset hash
//     and the view parameters that produced them ([Keyer.ArtifactKey]).
//
// Backends are interchangeable: [FileCache] for the CLI, [RedisCache] when
// several viewer processes share a cache, and [NullCache] to disable caching.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Default TTLs for each entry kind.
const (
	// TTLFetch bounds how long a remote CSV is reused before refetching.
	TTLFetch = 15 * time.Minute

	// TTLArtifact is the lifetime of a rendered artifact. Artifacts are keyed
	// by content hash, so they never go stale; the TTL only limits growth.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with per-entry expiration.
type Cache interface {
	// Get returns the data for key. The boolean reports whether the key was
	// found; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts holds the render parameters that affect an artifact.
type ArtifactKeyOpts struct {
	Format string   `json:"format"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	DPR    float64  `json:"dpr"`
	Zoom   float64  `json:"zoom"`
	Center float64  `json:"center"`
	Groups []string `json:"groups,omitempty"`
	Legend bool     `json:"legend,omitempty"`

	// Domain and zoom bounds. DomainMin is also the calendar epoch and the
	// major tick anchor, so it changes labels even at the same zoom.
	DomainMin float64 `json:"domain_min"`
	DomainMax float64 `json:"domain_max"`
	MinZoom   float64 `json:"min_zoom"`
	MaxZoom   float64 `json:"max_zoom"`

	// Output variants.
	NoMinorTicks bool   `json:"no_minor_ticks,omitempty"`
	FontFamily   string `json:"font_family,omitempty"`
	EmbedFont    bool   `json:"embed_font,omitempty"`
	HitRegions   bool   `json:"hit_regions,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// FetchKey returns the key for the raw bytes behind a source URL.
	FetchKey(url string) string

	// ArtifactKey returns the key for a rendered artifact of a dataset.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "fetch:<url>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FetchKey returns "fetch:" + url.
func (DefaultKeyer) FetchKey(url string) string {
	return "fetch:" + url
}

// ArtifactKey hashes the dataset hash together with the JSON form of opts.
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	b, _ := json.Marshal(struct {
		Dataset string          `json:"dataset"`
		Opts    ArtifactKeyOpts `json:"opts"`
	}{datasetHash, opts})
	return "artifact:" + Hash(b)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Keyer = DefaultKeyer{}
