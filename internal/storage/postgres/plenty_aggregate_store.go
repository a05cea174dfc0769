package postgres

import (
	"context"
	"fmt"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// PlentyAggregateStore implements storage.PlentyAggregateStore using PostgreSQL.
type PlentyAggregateStore struct {
	pool *Pool
}

// NewPlentyAggregateStore creates a new PlentyAggregateStore.
func NewPlentyAggregateStore(pool *Pool) *PlentyAggregateStore {
	return &PlentyAggregateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PlentyAggregateStore = (*PlentyAggregateStore)(nil)

func plentyAggregateTable(period domain.Period) string {
	return "plenty_aggregate_" + string(period)
}

// Get retrieves the bucket row. Returns ErrNotFound if absent.
func (s *PlentyAggregateStore) Get(ctx context.Context, period domain.Period, ts int64) (*domain.PlentyAggregate, error) {
	query := fmt.Sprintf(`
		SELECT ts, volume_value, fees_value, tvl_value
		FROM %s
		WHERE ts = $1
	`, plentyAggregateTable(period))

	return s.scanRow(ctx, query, ts)
}

// GetLastAtOrBefore retrieves the latest bucket row at or before ts.
// Returns ErrNotFound if no such bucket exists.
func (s *PlentyAggregateStore) GetLastAtOrBefore(ctx context.Context, period domain.Period, ts int64) (*domain.PlentyAggregate, error) {
	query := fmt.Sprintf(`
		SELECT ts, volume_value, fees_value, tvl_value
		FROM %s
		WHERE ts <= $1
		ORDER BY ts DESC
		LIMIT 1
	`, plentyAggregateTable(period))

	return s.scanRow(ctx, query, ts)
}

// Insert adds a fresh bucket row.
func (s *PlentyAggregateStore) Insert(ctx context.Context, period domain.Period, a *domain.PlentyAggregate) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (ts, volume_value, fees_value, tvl_value)
		VALUES ($1, $2, $3, $4)
	`, plentyAggregateTable(period))

	_, err := s.pool.Exec(ctx, query, a.Timestamp, a.VolumeValue, a.FeesValue, a.TVLValue)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert plenty aggregate: %w", err)
	}
	return nil
}

// Update overwrites all mutable fields of an existing bucket row.
func (s *PlentyAggregateStore) Update(ctx context.Context, period domain.Period, a *domain.PlentyAggregate) error {
	query := fmt.Sprintf(`
		UPDATE %s SET volume_value = $2, fees_value = $3, tvl_value = $4
		WHERE ts = $1
	`, plentyAggregateTable(period))

	tag, err := s.pool.Exec(ctx, query, a.Timestamp, a.VolumeValue, a.FeesValue, a.TVLValue)
	if err != nil {
		return fmt.Errorf("update plenty aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PlentyAggregateStore) scanRow(ctx context.Context, query string, args ...any) (*domain.PlentyAggregate, error) {
	var a domain.PlentyAggregate
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&a.Timestamp,
		&a.VolumeValue,
		&a.FeesValue,
		&a.TVLValue,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get plenty aggregate: %w", err)
	}
	return &a, nil
}
