package memory

import (
	"context"
	"fmt"
	"sync"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// PoolAggregateStore is an in-memory implementation of storage.PoolAggregateStore.
type PoolAggregateStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PoolAggregate // keyed by (period, ts, pool)
}

// NewPoolAggregateStore creates a new in-memory pool aggregate store.
func NewPoolAggregateStore() *PoolAggregateStore {
	return &PoolAggregateStore{data: make(map[string]*domain.PoolAggregate)}
}

// Compile-time interface check.
var _ storage.PoolAggregateStore = (*PoolAggregateStore)(nil)

func poolAggregateKey(period domain.Period, ts int64, pool string) string {
	return fmt.Sprintf("%s|%d|%s", period, ts, pool)
}

// Get retrieves the bucket row. Returns ErrNotFound if absent.
func (s *PoolAggregateStore) Get(_ context.Context, period domain.Period, ts int64, pool string) (*domain.PoolAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[poolAggregateKey(period, ts, pool)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	aggCopy := *a
	return &aggCopy, nil
}

// Exists reports whether the pool has at least one daily bucket row.
func (s *PoolAggregateStore) Exists(_ context.Context, pool string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.data {
		if a.Pool != pool {
			continue
		}
		if s.data[poolAggregateKey(domain.PeriodDay, a.Timestamp, a.Pool)] == a {
			return true, nil
		}
	}
	return false, nil
}

// Insert adds a fresh bucket row.
func (s *PoolAggregateStore) Insert(_ context.Context, period domain.Period, a *domain.PoolAggregate) error {
	if a == nil || a.Pool == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := poolAggregateKey(period, a.Timestamp, a.Pool)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	aggCopy := *a
	s.data[key] = &aggCopy
	return nil
}

// Update overwrites all mutable fields of an existing bucket row.
func (s *PoolAggregateStore) Update(_ context.Context, period domain.Period, a *domain.PoolAggregate) error {
	if a == nil || a.Pool == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := poolAggregateKey(period, a.Timestamp, a.Pool)
	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}
	aggCopy := *a
	s.data[key] = &aggCopy
	return nil
}
