// =============================================================================
// Text Info Extractor - Session Registry
// =============================================================================
//
// Sessions maps anonymous session IDs to their own Store.
//
// LIFECYCLE:
//   - Create starts a session with a random UUID
//   - Get refreshes the session's idle timer
//   - Sweep drops sessions idle for longer than the TTL; Run sweeps on a ticker
//
// =============================================================================

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION REGISTRY
// =============================================================================

// Sessions maps session IDs to their own Store. Sessions idle for longer
// than the TTL are dropped by Sweep.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID]*session
}

type session struct {
	store    *Store
	lastSeen time.Time
}

// NewSessions creates an empty registry. A ttl <= 0 disables eviction.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Create starts a new session and returns its ID and store.
func (s *Sessions) Create() (uuid.UUID, *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	st := New()
	s.sessions[id] = &session{store: st, lastSeen: s.now()}
	return id, st
}

// Get returns the store of a live session and refreshes its idle timer.
func (s *Sessions) Get(id uuid.UUID) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.store, true
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// =============================================================================
// EVICTION
// =============================================================================

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
