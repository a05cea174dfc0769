package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// TokenAggregateStore is an in-memory implementation of storage.TokenAggregateStore.
type TokenAggregateStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenAggregate // keyed by (period, ts, token)
}

// NewTokenAggregateStore creates a new in-memory token aggregate store.
func NewTokenAggregateStore() *TokenAggregateStore {
	return &TokenAggregateStore{data: make(map[string]*domain.TokenAggregate)}
}

// Compile-time interface check.
var _ storage.TokenAggregateStore = (*TokenAggregateStore)(nil)

func tokenAggregateKey(period domain.Period, ts int64, token int64) string {
	return fmt.Sprintf("%s|%d|%d", period, ts, token)
}

// Get retrieves the bucket row. Returns ErrNotFound if absent.
func (s *TokenAggregateStore) Get(_ context.Context, period domain.Period, ts int64, token int64) (*domain.TokenAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[tokenAggregateKey(period, ts, token)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	aggCopy := *a
	return &aggCopy, nil
}

// GetLastBefore retrieves the token's latest bucket row strictly before ts.
func (s *TokenAggregateStore) GetLastBefore(_ context.Context, period domain.Period, token int64, ts int64) (*domain.TokenAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.TokenAggregate
	for _, a := range s.data {
		if a.Token != token || a.Timestamp >= ts {
			continue
		}
		if !s.inPeriod(period, a) {
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
func (s *TokenAggregateStore) Insert(_ context.Context, period domain.Period, a *domain.TokenAggregate) error {
	if a == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := tokenAggregateKey(period, a.Timestamp, a.Token)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	aggCopy := *a
	s.data[key] = &aggCopy
	return nil
}

// Update overwrites all mutable fields of an existing bucket row.
func (s *TokenAggregateStore) Update(_ context.Context, period domain.Period, a *domain.TokenAggregate) error {
	if a == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := tokenAggregateKey(period, a.Timestamp, a.Token)
	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}
	aggCopy := *a
	s.data[key] = &aggCopy
	return nil
}

// SumLatestLockedValue sums, over every token, the locked value of the
// token's most recent hourly bucket at or before ts.
func (s *TokenAggregateStore) SumLatestLockedValue(_ context.Context, ts int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[int64]*domain.TokenAggregate)
	for _, a := range s.data {
		if a.Timestamp > ts || !s.inPeriod(domain.PeriodHour, a) {
			continue
		}
		if cur, ok := latest[a.Token]; !ok || a.Timestamp > cur.Timestamp {
			latest[a.Token] = a
		}
	}

	total := decimal.Zero
	for _, a := range latest {
		total = total.Add(a.LockedValue)
	}
	return total, nil
}

// inPeriod reports whether the row is stored under the given period's keys.
// The map key embeds the period, so membership is checked by key lookup.
func (s *TokenAggregateStore) inPeriod(period domain.Period, a *domain.TokenAggregate) bool {
	stored, ok := s.data[tokenAggregateKey(period, a.Timestamp, a.Token)]
	return ok && stored == a
}
