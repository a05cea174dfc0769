package memory

import (
	"context"
	"sync"

	"plenty-analytics-indexer/internal/storage"
)

// LastIndexedStore is an in-memory implementation of storage.LastIndexedStore.
type LastIndexedStore struct {
	mu   sync.RWMutex
	data map[string]int64
}

// NewLastIndexedStore creates a new in-memory per-pool watermark store.
func NewLastIndexedStore() *LastIndexedStore {
	return &LastIndexedStore{data: make(map[string]int64)}
}

// Compile-time interface check.
var _ storage.LastIndexedStore = (*LastIndexedStore)(nil)

// Get returns the last indexed level for pool. Returns ErrNotFound if the pool
// has never been recorded.
func (s *LastIndexedStore) Get(_ context.Context, pool string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	level, ok := s.data[pool]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return level, nil
}

// Record stores the last indexed level for pool, replacing any previous value.
func (s *LastIndexedStore) Record(_ context.Context, pool string, level int64) error {
	if pool == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[pool] = level
	return nil
}
