package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// SpotPriceStore is an in-memory implementation of storage.SpotPriceStore.
type SpotPriceStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SpotPrice // keyed by (ts, token)
}

// NewSpotPriceStore creates a new in-memory spot price store.
func NewSpotPriceStore() *SpotPriceStore {
	return &SpotPriceStore{data: make(map[string]*domain.SpotPrice)}
}

// Compile-time interface check.
var _ storage.SpotPriceStore = (*SpotPriceStore)(nil)

func spotPriceKey(ts int64, token int64) string {
	return fmt.Sprintf("%d|%d", ts, token)
}

// GetLatestAt returns the most recent price for token at or before ts.
func (s *SpotPriceStore) GetLatestAt(_ context.Context, token int64, ts int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.SpotPrice
	for _, p := range s.data {
		if p.Token != token || p.Timestamp > ts {
			continue
		}
		if best == nil || p.Timestamp > best.Timestamp {
			best = p
		}
	}
	if best == nil {
		return decimal.Zero, storage.ErrNotFound
	}
	return best.Value, nil
}

// Upsert inserts or replaces the price row for (ts, token).
func (s *SpotPriceStore) Upsert(_ context.Context, p *domain.SpotPrice) error {
	if p == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	priceCopy := *p
	s.data[spotPriceKey(p.Timestamp, p.Token)] = &priceCopy
	return nil
}
