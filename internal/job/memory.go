package job

import (
	"context"
	"sync"
)

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of Store. It uses a map
// with a mutex so updates to the same job are linearized. State is
// process-lifetime only; the bootstrap falls back to it when Redis is
// unavailable.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Record
}

// NewMemoryStore creates a new in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*Record),
	}
}

// Upsert inserts or replaces a record. A clone is stored to avoid
// external mutations.
func (s *MemoryStore) Upsert(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[record.JobID] = record.Clone()
	return nil
}

// Get retrieves a record by job ID. Returns a clone to prevent
// external mutations.
func (s *MemoryStore) Get(_ context.Context, jobID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

// Update applies the non-nil fields to an existing record under the
// store lock and returns the updated record.
func (s *MemoryStore) Update(_ context.Context, jobID string, fields Fields) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	record.Apply(fields)
	return record.Clone(), nil
}
