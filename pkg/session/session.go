// Package session holds per-viewer state for the HTTP viewer.
//
// Each browser tab gets a [Session] with its own view (zoom and pan), legend
// filter, drag controller and the most recently built frame. Clicks are
// hit-tested against that frame, so a click always refers to what the
// viewer actually saw.
//
// # Concurrency
//
// A Session is locked for the whole of an input, render or click request,
// which serializes the requests of one viewer. Different sessions never
// share state and proceed in parallel.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New(view.DefaultConfig(), 1200, 400, 2, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err // SESSION_NOT_FOUND or SESSION_EXPIRED
//	}
//	sess.Lock()
//	defer sess.Unlock()
//	sess.Sync(dataset.Generation, dataset.Groups)
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/chronoline/pkg/legend"
	"github.com/matzehuels/chronoline/pkg/render"
	"github.com/matzehuels/chronoline/pkg/view"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Session is the state of one viewer.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	mu  sync.Mutex
	ttl time.Duration

	View       *view.View
	Filter     *legend.Filter
	Controller view.Controller

	// LastFrame is the frame most recently sent to the viewer; nil until
	// the first render.
	LastFrame *render.Frame

	// Generation is the dataset generation Filter was built for.
	Generation uint64
}

// New creates a session with a fresh view of the given size and an empty
// filter. The filter picks up groups on the first [Session.Sync].
func New(cfg view.Config, width, height, dpr float64, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		ttl:       ttl,
		View:      view.New(cfg, width, height, dpr),
		Filter:    legend.NewFilter(nil),
	}
}

// Lock acquires the session for one request.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.expiredAt(time.Now())
}

func (s *Session) expiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Sync resets the legend filter to groups when a newer dataset generation
// has been loaded since the last call. It reports whether a reset happened.
// The caller holds the lock.
func (s *Session) Sync(generation uint64, groups []string) bool {
	if generation == s.Generation {
		return false
	}
	s.Filter.Reset(groups)
	s.Generation = generation
	return true
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID and extends its expiry.
	// Missing sessions return an error wrapping ErrNotFound, expired ones an
	// error wrapping ErrExpired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
