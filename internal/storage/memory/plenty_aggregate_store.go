package memory

import (
	"context"
	"fmt"
	"sync"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// PlentyAggregateStore is an in-memory implementation of storage.PlentyAggregateStore.
type PlentyAggregateStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PlentyAggregate // keyed by (period, ts)
}

// NewPlentyAggregateStore creates a new in-memory system aggregate store.
func NewPlentyAggregateStore() *PlentyAggregateStore {
	return &PlentyAggregateStore{data: make(map[string]*domain.PlentyAggregate)}
}

// Compile-time interface check.
var _ storage.PlentyAggregateStore = (*PlentyAggregateStore)(nil)

func plentyAggregateKey(period domain.Period, ts int64) string {
	return fmt.Sprintf("%s|%d", period, ts)
}

// Get retrieves the bucket row. Returns ErrNotFound if absent.
func (s *PlentyAggregateStore) Get(_ context.Context, period domain.Period, ts int64) (*domain.PlentyAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[plentyAggregateKey(period, ts)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	aggCopy := *a
	return &aggCopy, nil
}

// GetLastAtOrBefore retrieves the latest bucket row at or before ts.
func (s *PlentyAggregateStore) GetLastAtOrBefore(_ context.Context, period domain.Period, ts int64) (*domain.PlentyAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.PlentyAggregate
	for _, a := range s.data {
		if a.Timestamp > ts {
			continue
		}
		if stored, ok := s.data[plentyAggregateKey(period, a.Timestamp)]; !ok || stored != a {
			continue
		}
		if best == nil || a.Timestamp > best.Timestamp {
			best = a
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	aggCopy := *best
	return &aggCopy, nil
}

// Insert adds a fresh bucket row.
func (s *PlentyAggregateStore) Insert(_ context.Context, period domain.Period, a *domain.PlentyAggregate) error {
	if a == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := plentyAggregateKey(period, a.Timestamp)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	aggCopy := *a
	s.data[key] = &aggCopy
	return nil
}

// Update overwrites all mutable fields of an existing bucket row.
func (s *PlentyAggregateStore) Update(_ context.Context, period domain.Period, a *domain.PlentyAggregate) error {
	if a == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := plentyAggregateKey(period, a.Timestamp)
	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}
	aggCopy := *a
	s.data[key] = &aggCopy
	return nil
}
