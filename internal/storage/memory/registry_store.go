package memory

import (
	"context"
	"sync"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// PoolStore is an in-memory implementation of storage.PoolStore, used as a
// fixture source in tests.
type PoolStore struct {
	mu    sync.RWMutex
	pools []*domain.Pool
}

// NewPoolStore creates an in-memory pool store seeded with the given pools.
func NewPoolStore(pools ...*domain.Pool) *PoolStore {
	return &PoolStore{pools: pools}
}

// Compile-time interface check.
var _ storage.PoolStore = (*PoolStore)(nil)

// GetAll returns all registered pools.
func (s *PoolStore) GetAll(_ context.Context) ([]*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		poolCopy := *p
		out = append(out, &poolCopy)
	}
	return out, nil
}

// Add registers another pool.
func (s *PoolStore) Add(p *domain.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools = append(s.pools, p)
}

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens []*domain.Token
}

// NewTokenStore creates an in-memory token store seeded with the given tokens.
func NewTokenStore(tokens ...*domain.Token) *TokenStore {
	return &TokenStore{tokens: tokens}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// GetAll returns all registered tokens.
func (s *TokenStore) GetAll(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		tokenCopy := *t
		out = append(out, &tokenCopy)
	}
	return out, nil
}
