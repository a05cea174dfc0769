package postgres

import (
	"context"
	"fmt"

	"plenty-analytics-indexer/internal/storage"
)

// LastIndexedStore implements storage.LastIndexedStore using PostgreSQL.
type LastIndexedStore struct {
	pool *Pool
}

// NewLastIndexedStore creates a new LastIndexedStore.
func NewLastIndexedStore(pool *Pool) *LastIndexedStore {
	return &LastIndexedStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LastIndexedStore = (*LastIndexedStore)(nil)

// Get returns the pool's last indexed level. Returns ErrNotFound if the
// pool has never been indexed.
func (s *LastIndexedStore) Get(ctx context.Context, pool string) (int64, error) {
	var level int64
	err := s.pool.QueryRow(ctx, `SELECT level FROM last_indexed WHERE pool = $1`, pool).Scan(&level)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get last indexed level: %w", err)
	}
	return level, nil
}

// Record sets the pool's last indexed level, inserting or updating.
func (s *LastIndexedStore) Record(ctx context.Context, pool string, level int64) error {
	query := `
		INSERT INTO last_indexed (pool, level)
		VALUES ($1, $2)
		ON CONFLICT (pool) DO UPDATE SET level = EXCLUDED.level
	`

	if _, err := s.pool.Exec(ctx, query, pool, level); err != nil {
		return fmt.Errorf("record last indexed level: %w", err)
	}
	return nil
}
