package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps reports in process memory. Used by the CLI's --report
// flag within a single run and by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]Report
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]Report)}
}

// Put saves a report, overwriting any previous report with the same ID.
func (s *MemoryStore) Put(ctx context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r
	return nil
}

// Get retrieves a report by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return Report{}, ErrNotFound
	}
	return r, nil
}

// Recent returns up to limit reports, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Report, 0, len(s.reports))
	for _, r := range s.reports {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Close does nothing for a memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
