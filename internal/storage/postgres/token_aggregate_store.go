package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// TokenAggregateStore implements storage.TokenAggregateStore using PostgreSQL.
type TokenAggregateStore struct {
	pool *Pool
}

// NewTokenAggregateStore creates a new TokenAggregateStore.
func NewTokenAggregateStore(pool *Pool) *TokenAggregateStore {
	return &TokenAggregateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenAggregateStore = (*TokenAggregateStore)(nil)

func tokenAggregateTable(period domain.Period) string {
	return "token_aggregate_" + string(period)
}

const tokenAggregateColumns = `
	ts, token, open_price, high_price, low_price, close_price,
	volume, volume_value, fees, fees_value, locked, locked_value
`

// Get retrieves the bucket row. Returns ErrNotFound if absent.
func (s *TokenAggregateStore) Get(ctx context.Context, period domain.Period, ts int64, token int64) (*domain.TokenAggregate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE ts = $1 AND token = $2
	`, tokenAggregateColumns, tokenAggregateTable(period))

	return s.scanRow(ctx, query, ts, token)
}

// GetLastBefore retrieves the token's latest bucket row strictly before ts.
// Returns ErrNotFound if the token has no earlier bucket.
func (s *TokenAggregateStore) GetLastBefore(ctx context.Context, period domain.Period, token int64, ts int64) (*domain.TokenAggregate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE token = $1 AND ts < $2
		ORDER BY ts DESC
		LIMIT 1
	`, tokenAggregateColumns, tokenAggregateTable(period))

	return s.scanRow(ctx, query, token, ts)
}

// Insert adds a fresh bucket row.
func (s *TokenAggregateStore) Insert(ctx context.Context, period domain.Period, a *domain.TokenAggregate) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, tokenAggregateTable(period), tokenAggregateColumns)

	_, err := s.pool.Exec(ctx, query,
		a.Timestamp,
		a.Token,
		a.OpenPrice,
		a.HighPrice,
		a.LowPrice,
		a.ClosePrice,
		a.Volume,
		a.VolumeValue,
		a.Fees,
		a.FeesValue,
		a.Locked,
		a.LockedValue,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token aggregate: %w", err)
	}
	return nil
}

// Update overwrites all mutable fields of an existing bucket row.
func (s *TokenAggregateStore) Update(ctx context.Context, period domain.Period, a *domain.TokenAggregate) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			open_price = $3, high_price = $4, low_price = $5, close_price = $6,
			volume = $7, volume_value = $8, fees = $9, fees_value = $10,
			locked = $11, locked_value = $12
		WHERE ts = $1 AND token = $2
	`, tokenAggregateTable(period))

	tag, err := s.pool.Exec(ctx, query,
		a.Timestamp,
		a.Token,
		a.OpenPrice,
		a.HighPrice,
		a.LowPrice,
		a.ClosePrice,
		a.Volume,
		a.VolumeValue,
		a.Fees,
		a.FeesValue,
		a.Locked,
		a.LockedValue,
	)
	if err != nil {
		return fmt.Errorf("update token aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SumLatestLockedValue sums, over every token, the locked value of the
// token's most recent hourly bucket at or before ts.
func (s *TokenAggregateStore) SumLatestLockedValue(ctx context.Context, ts int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(t.locked_value), 0)
		FROM (
			SELECT token, MAX(ts) AS mts
			FROM token_aggregate_hour
			WHERE ts <= $1
			GROUP BY token
		) r
		JOIN token_aggregate_hour t ON r.token = t.token AND r.mts = t.ts
	`

	var total decimal.Decimal
	if err := s.pool.QueryRow(ctx, query, ts).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum latest locked value: %w", err)
	}
	return total, nil
}

// scanRow runs a single-row token aggregate query.
func (s *TokenAggregateStore) scanRow(ctx context.Context, query string, args ...any) (*domain.TokenAggregate, error) {
	var a domain.TokenAggregate
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&a.Timestamp,
		&a.Token,
		&a.OpenPrice,
		&a.HighPrice,
		&a.LowPrice,
		&a.ClosePrice,
		&a.Volume,
		&a.VolumeValue,
		&a.Fees,
		&a.FeesValue,
		&a.Locked,
		&a.LockedValue,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token aggregate: %w", err)
	}
	return &a, nil
}
