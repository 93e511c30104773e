// =============================================================================
// Text Info Extractor - Record Store
// =============================================================================
//
// This module holds extracted records in the order they were added.
//
// OWNERSHIP:
//   A Store belongs to exactly one session (one CLI invocation, one HTTP
//   client). It is guarded by its own mutex so a session may be served by
//   concurrent requests; the extractor itself needs no locking.
//
// OPERATIONS:
//   - Append returns the new record's 0-based index
//   - Delete is bounds-checked and leaves the store untouched on failure
//   - Records returns a snapshot copy
//
// =============================================================================

package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

// ErrIndexOutOfRange is returned by Delete for an index outside the store.
var ErrIndexOutOfRange = errors.New("record index out of range")

// =============================================================================
// STORE
// =============================================================================

// Store is an ordered, growable list of records.
type Store struct {
	mu      sync.RWMutex
	records []types.Record
}

// New returns a store seeded with a copy of records.
func New(records ...types.Record) *Store {
	return &Store{records: append([]types.Record(nil), records...)}
}

// Append adds r at the end and returns its index.
func (s *Store) Append(r types.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return len(s.records) - 1
}

// Delete removes the record at index i. An out of range index leaves the
// store untouched and returns ErrIndexOutOfRange.
func (s *Store) Delete(i int) (types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.records) {
		return types.Record{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.records))
	}
	removed := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	return removed, nil
}

// Clear removes every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a snapshot copy in insertion order.
func (s *Store) Records() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Record(nil), s.records...)
}
