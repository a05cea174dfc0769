// Package registry caches the tracked pool set read from storage.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// Cache serves the pool registry with a time-to-live, refreshing
// transparently from the backing store on expiry. Pool and token rows change
// rarely, so a short TTL keeps the pipeline off the database without ever
// serving a long-stale registry.
type Cache struct {
	pools storage.PoolStore
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	cached   []*domain.Pool
	storedAt time.Time
}

// NewCache creates a registry cache over the pool store.
func NewCache(pools storage.PoolStore, ttl time.Duration) *Cache {
	return &Cache{pools: pools, ttl: ttl, now: time.Now}
}

// GetPools returns the tracked pools, reloading from storage when the cached
// copy has expired or was never loaded.
func (c *Cache) GetPools(ctx context.Context) ([]*domain.Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.now().Sub(c.storedAt) <= c.ttl {
		return c.cached, nil
	}

	pools, err := c.pools.GetAll(ctx)
	if err != nil {
		// Serve the stale copy rather than fail when a refresh breaks.
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, fmt.Errorf("load pool registry: %w", err)
	}

	c.cached = pools
	c.storedAt = c.now()
	return c.cached, nil
}
