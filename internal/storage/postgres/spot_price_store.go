package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// SpotPriceStore implements storage.SpotPriceStore using PostgreSQL.
type SpotPriceStore struct {
	pool *Pool
}

// NewSpotPriceStore creates a new SpotPriceStore.
func NewSpotPriceStore(pool *Pool) *SpotPriceStore {
	return &SpotPriceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SpotPriceStore = (*SpotPriceStore)(nil)

// GetLatestAt returns the most recent price for the token at or before ts.
// Returns ErrNotFound if the token has never been priced.
func (s *SpotPriceStore) GetLatestAt(ctx context.Context, token int64, ts int64) (decimal.Decimal, error) {
	query := `
		SELECT value FROM price_spot
		WHERE token = $1 AND ts <= $2
		ORDER BY ts DESC
		LIMIT 1
	`

	var value decimal.Decimal
	err := s.pool.QueryRow(ctx, query, token, ts).Scan(&value)
	if err != nil {
		if isNotFoundError(err) {
			return decimal.Zero, storage.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("get latest spot price: %w", err)
	}
	return value, nil
}

// Upsert records the price at (ts, token), overwriting an existing point.
func (s *SpotPriceStore) Upsert(ctx context.Context, p *domain.SpotPrice) error {
	query := `
		INSERT INTO price_spot (ts, token, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (ts, token) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := s.pool.Exec(ctx, query, p.Timestamp, p.Token, p.Value); err != nil {
		return fmt.Errorf("upsert spot price: %w", err)
	}
	return nil
}
