package postgres

import (
	"context"
	"fmt"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// PoolAggregateStore implements storage.PoolAggregateStore using PostgreSQL.
// Hour and day buckets live in period-suffixed tables sharing one layout.
type PoolAggregateStore struct {
	pool *Pool
}

// NewPoolAggregateStore creates a new PoolAggregateStore.
func NewPoolAggregateStore(pool *Pool) *PoolAggregateStore {
	return &PoolAggregateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolAggregateStore = (*PoolAggregateStore)(nil)

func poolAggregateTable(period domain.Period) string {
	return "pool_aggregate_" + string(period)
}

// Get retrieves the bucket row. Returns ErrNotFound if absent.
func (s *PoolAggregateStore) Get(ctx context.Context, period domain.Period, ts int64, poolAddr string) (*domain.PoolAggregate, error) {
	query := fmt.Sprintf(`
		SELECT ts, pool, token_1_volume, token_2_volume, volume_value,
		       token_1_fees, token_2_fees, fees_value,
		       token_1_locked, token_2_locked, locked_value
		FROM %s
		WHERE ts = $1 AND pool = $2
	`, poolAggregateTable(period))

	var a domain.PoolAggregate
	err := s.pool.QueryRow(ctx, query, ts, poolAddr).Scan(
		&a.Timestamp,
		&a.Pool,
		&a.Token1Volume,
		&a.Token2Volume,
		&a.VolumeValue,
		&a.Token1Fees,
		&a.Token2Fees,
		&a.FeesValue,
		&a.Token1Locked,
		&a.Token2Locked,
		&a.LockedValue,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pool aggregate: %w", err)
	}
	return &a, nil
}

// Exists reports whether the pool has at least one daily bucket row.
func (s *PoolAggregateStore) Exists(ctx context.Context, poolAddr string) (bool, error) {
	var found string
	err := s.pool.QueryRow(ctx,
		`SELECT pool FROM pool_aggregate_day WHERE pool = $1 LIMIT 1`, poolAddr,
	).Scan(&found)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("check pool aggregate exists: %w", err)
	}
	return true, nil
}

// Insert adds a fresh bucket row.
func (s *PoolAggregateStore) Insert(ctx context.Context, period domain.Period, a *domain.PoolAggregate) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			ts, pool, token_1_volume, token_2_volume, volume_value,
			token_1_fees, token_2_fees, fees_value,
			token_1_locked, token_2_locked, locked_value
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, poolAggregateTable(period))

	_, err := s.pool.Exec(ctx, query,
		a.Timestamp,
		a.Pool,
		a.Token1Volume,
		a.Token2Volume,
		a.VolumeValue,
		a.Token1Fees,
		a.Token2Fees,
		a.FeesValue,
		a.Token1Locked,
		a.Token2Locked,
		a.LockedValue,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pool aggregate: %w", err)
	}
	return nil
}

// Update overwrites all mutable fields of an existing bucket row.
func (s *PoolAggregateStore) Update(ctx context.Context, period domain.Period, a *domain.PoolAggregate) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			token_1_volume = $3, token_2_volume = $4, volume_value = $5,
			token_1_fees = $6, token_2_fees = $7, fees_value = $8,
			token_1_locked = $9, token_2_locked = $10, locked_value = $11
		WHERE ts = $1 AND pool = $2
	`, poolAggregateTable(period))

	tag, err := s.pool.Exec(ctx, query,
		a.Timestamp,
		a.Pool,
		a.Token1Volume,
		a.Token2Volume,
		a.VolumeValue,
		a.Token1Fees,
		a.Token2Fees,
		a.FeesValue,
		a.Token1Locked,
		a.Token2Locked,
		a.LockedValue,
	)
	if err != nil {
		return fmt.Errorf("update pool aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
