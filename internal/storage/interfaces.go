package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
)

// TransactionStore provides access to the transaction table.
type TransactionStore interface {
	// Insert adds a new transaction row. Returns ErrDuplicateKey if the
	// operation id was already recorded.
	Insert(ctx context.Context, t *domain.Transaction) error

	// Exists reports whether a transaction with the given operation id
	// has been recorded.
	Exists(ctx context.Context, id int64) (bool, error)
}

// PoolAggregateStore provides access to pool_aggregate_hour/day.
// Read-modify-write stays explicit: the aggregation engine reads the row,
// computes new cumulative values and writes them back.
type PoolAggregateStore interface {
	// Get retrieves the bucket row. Returns ErrNotFound if absent.
	Get(ctx context.Context, period domain.Period, ts int64, pool string) (*domain.PoolAggregate, error)

	// Exists reports whether the pool has ever been aggregated, i.e. has at
	// least one daily bucket row. The first observation of a pool loads its
	// whole reserve into the token locked figures rather than a delta.
	Exists(ctx context.Context, pool string) (bool, error)

	// Insert adds a fresh bucket row.
	Insert(ctx context.Context, period domain.Period, a *domain.PoolAggregate) error

	// Update overwrites all mutable fields of an existing bucket row.
	Update(ctx context.Context, period domain.Period, a *domain.PoolAggregate) error
}

// TokenAggregateStore provides access to token_aggregate_hour/day.
type TokenAggregateStore interface {
	// Get retrieves the bucket row. Returns ErrNotFound if absent.
	Get(ctx context.Context, period domain.Period, ts int64, token int64) (*domain.TokenAggregate, error)

	// GetLastBefore retrieves the token's latest bucket row strictly before
	// ts, used to carry the locked figure into a fresh bucket.
	// Returns ErrNotFound if the token has no earlier bucket.
	GetLastBefore(ctx context.Context, period domain.Period, token int64, ts int64) (*domain.TokenAggregate, error)

	// Insert adds a fresh bucket row.
	Insert(ctx context.Context, period domain.Period, a *domain.TokenAggregate) error

	// Update overwrites all mutable fields of an existing bucket row.
	Update(ctx context.Context, period domain.Period, a *domain.TokenAggregate) error

	// SumLatestLockedValue sums, over every token, the locked value of the
	// token's most recent hourly bucket at or before ts. Seeds the TVL of a
	// system bucket that has no predecessor to delta-adjust from.
	SumLatestLockedValue(ctx context.Context, ts int64) (decimal.Decimal, error)
}

// PlentyAggregateStore provides access to plenty_aggregate_hour/day.
type PlentyAggregateStore interface {
	// Get retrieves the bucket row. Returns ErrNotFound if absent.
	Get(ctx context.Context, period domain.Period, ts int64) (*domain.PlentyAggregate, error)

	// GetLastAtOrBefore retrieves the latest bucket row at or before ts.
	// Returns ErrNotFound if no such bucket exists.
	GetLastAtOrBefore(ctx context.Context, period domain.Period, ts int64) (*domain.PlentyAggregate, error)

	// Insert adds a fresh bucket row.
	Insert(ctx context.Context, period domain.Period, a *domain.PlentyAggregate) error

	// Update overwrites all mutable fields of an existing bucket row.
	Update(ctx context.Context, period domain.Period, a *domain.PlentyAggregate) error
}

// SpotPriceStore provides access to the price_spot time series.
type SpotPriceStore interface {
	// GetLatestAt returns the most recent price for the token at or before
	// ts. Returns ErrNotFound if the token has never been priced.
	GetLatestAt(ctx context.Context, token int64, ts int64) (decimal.Decimal, error)

	// Upsert records the price at (ts, token), overwriting an existing point.
	Upsert(ctx context.Context, p *domain.SpotPrice) error
}

// LastIndexedStore tracks the last indexed block level per pool. The
// recorder only writes these rows; replay safety comes from the global
// checkpoint plus idempotent transaction inserts, so per-pool progress is
// kept purely as a read surface for downstream API consumers, which is why
// Get is part of the interface.
type LastIndexedStore interface {
	// Get returns the pool's last indexed level. Returns ErrNotFound if the
	// pool has never been indexed.
	Get(ctx context.Context, pool string) (int64, error)

	// Record sets the pool's last indexed level, inserting or updating.
	Record(ctx context.Context, pool string, level int64) error
}

// PoolStore provides read access to the registered v2/v3 pools.
type PoolStore interface {
	// GetAll returns every registered pool with token metadata resolved.
	GetAll(ctx context.Context) ([]*domain.Pool, error)
}

// TokenStore provides read access to registered token metadata.
type TokenStore interface {
	// GetAll returns every registered token.
	GetAll(ctx context.Context) ([]*domain.Token, error)
}
