package record

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store, used by tests and read-only views.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates a store seeded with a copy of initial.
func NewMemoryStore(initial map[string]Record) *MemoryStore {
	m := make(map[string]Record, len(initial))
	maps.Copy(m, initial)
	return &MemoryStore{records: m}
}

func (s *MemoryStore) Get(_ context.Context, code string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[code]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Set(_ context.Context, code string, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[code] = r
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, code)
	return nil
}

func (s *MemoryStore) All(_ context.Context) (map[string]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.records), nil
}

func (s *MemoryStore) CompareAndSet(_ context.Context, code string, prev time.Time, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[code]
	switch {
	case !ok && !prev.IsZero():
		return ErrConflict
	case ok && !cur.SavedAt.Equal(prev):
		return ErrConflict
	}
	s.records[code] = r
	return nil
}
