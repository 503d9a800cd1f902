package session

import (
	"context"
	"sync"
	"time"

	errs "github.com/matzehuels/chronoline/pkg/errors"
)

// MemoryStore keeps sessions in process memory. Reads slide the expiry
// forward by the session's original TTL.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	if err := errs.ValidateSessionID(sessionID); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSessionNotFound, ErrNotFound, "session %q", sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeSessionNotFound, ErrNotFound, "session %s", sessionID)
	}
	now := s.now()
	if sess.expiredAt(now) {
		delete(s.sessions, sessionID)
		return nil, errs.Wrap(errs.ErrCodeSessionExpired, ErrExpired, "session %s", sessionID)
	}
	if sess.ttl > 0 {
		sess.ExpiresAt = now.Add(sess.ttl)
	}
	return sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.expiredAt(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)
