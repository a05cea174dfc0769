package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

func testPoolAggregate(ts int64) *domain.PoolAggregate {
	return &domain.PoolAggregate{
		Timestamp:    ts,
		Pool:         "KT1volatile",
		Token1Volume: decimal.NewFromInt(10),
		Token2Volume: decimal.Zero,
		VolumeValue:  decimal.NewFromInt(20),
		Token1Fees:   decimal.RequireFromString("0.02"),
		Token2Fees:   decimal.Zero,
		FeesValue:    decimal.RequireFromString("0.04"),
		Token1Locked: decimal.NewFromInt(1010),
		Token2Locked: decimal.RequireFromString("1980.1"),
		LockedValue:  decimal.RequireFromString("4000.1"),
	}
}

func TestPoolAggregateStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolAggregateStore(pool)

	agg := testPoolAggregate(3600)
	require.NoError(t, store.Insert(ctx, domain.PeriodHour, agg))

	got, err := store.Get(ctx, domain.PeriodHour, 3600, "KT1volatile")
	require.NoError(t, err)

	assert.Equal(t, agg.Timestamp, got.Timestamp)
	assert.Equal(t, agg.Pool, got.Pool)
	assert.True(t, got.Token1Volume.Equal(agg.Token1Volume), "got %s", got.Token1Volume)
	assert.True(t, got.FeesValue.Equal(agg.FeesValue), "got %s", got.FeesValue)
	assert.True(t, got.LockedValue.Equal(agg.LockedValue), "got %s", got.LockedValue)
}

func TestPoolAggregateStore_PeriodsAreIsolated(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolAggregateStore(pool)

	require.NoError(t, store.Insert(ctx, domain.PeriodHour, testPoolAggregate(0)))

	_, err := store.Get(ctx, domain.PeriodDay, 0, "KT1volatile")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Same key in the daily table is a distinct row, not a duplicate.
	require.NoError(t, store.Insert(ctx, domain.PeriodDay, testPoolAggregate(0)))
}

func TestPoolAggregateStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolAggregateStore(pool)

	require.NoError(t, store.Insert(ctx, domain.PeriodHour, testPoolAggregate(3600)))

	err := store.Insert(ctx, domain.PeriodHour, testPoolAggregate(3600))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPoolAggregateStore_Update(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolAggregateStore(pool)

	agg := testPoolAggregate(3600)
	require.NoError(t, store.Insert(ctx, domain.PeriodHour, agg))

	agg.Token1Volume = decimal.NewFromInt(15)
	agg.Token1Locked = decimal.NewFromInt(1015)
	require.NoError(t, store.Update(ctx, domain.PeriodHour, agg))

	got, err := store.Get(ctx, domain.PeriodHour, 3600, "KT1volatile")
	require.NoError(t, err)
	assert.True(t, got.Token1Volume.Equal(decimal.NewFromInt(15)), "got %s", got.Token1Volume)
	assert.True(t, got.Token1Locked.Equal(decimal.NewFromInt(1015)), "got %s", got.Token1Locked)
}

func TestPoolAggregateStore_Exists(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolAggregateStore(pool)

	seen, err := store.Exists(ctx, "KT1volatile")
	require.NoError(t, err)
	assert.False(t, seen)

	// Hourly rows alone do not mark the pool as observed.
	require.NoError(t, store.Insert(ctx, domain.PeriodHour, testPoolAggregate(3600)))
	seen, err = store.Exists(ctx, "KT1volatile")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Insert(ctx, domain.PeriodDay, testPoolAggregate(0)))
	seen, err = store.Exists(ctx, "KT1volatile")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestPoolAggregateStore_UpdateNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolAggregateStore(pool)

	err := store.Update(ctx, domain.PeriodHour, testPoolAggregate(3600))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
