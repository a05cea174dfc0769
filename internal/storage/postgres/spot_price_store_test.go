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

func TestSpotPriceStore_UpsertAndGetLatestAt(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSpotPriceStore(pool)

	prices := []*domain.SpotPrice{
		{Timestamp: 1000, Token: 1, Value: decimal.RequireFromString("1.9")},
		{Timestamp: 2000, Token: 1, Value: decimal.RequireFromString("2.0")},
		{Timestamp: 3000, Token: 1, Value: decimal.RequireFromString("2.1")},
		{Timestamp: 2000, Token: 2, Value: decimal.RequireFromString("0.9")},
	}
	for _, p := range prices {
		require.NoError(t, store.Upsert(ctx, p))
	}

	// Latest at or before the cutoff, per token.
	got, err := store.GetLatestAt(ctx, 1, 2500)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("2.0")), "got %s", got)

	got, err = store.GetLatestAt(ctx, 1, 3000)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("2.1")), "got %s", got)

	got, err = store.GetLatestAt(ctx, 2, 2500)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("0.9")), "got %s", got)
}

func TestSpotPriceStore_NeverPriced(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSpotPriceStore(pool)

	_, err := store.GetLatestAt(ctx, 1, 2500)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Upsert(ctx, &domain.SpotPrice{Timestamp: 3000, Token: 1, Value: decimal.NewFromInt(2)}))

	// Prices only apply from their timestamp forward.
	_, err = store.GetLatestAt(ctx, 1, 2500)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSpotPriceStore_UpsertOverwrites(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSpotPriceStore(pool)

	require.NoError(t, store.Upsert(ctx, &domain.SpotPrice{Timestamp: 1000, Token: 1, Value: decimal.NewFromInt(2)}))
	require.NoError(t, store.Upsert(ctx, &domain.SpotPrice{Timestamp: 1000, Token: 1, Value: decimal.NewFromInt(3)}))

	got, err := store.GetLatestAt(ctx, 1, 1000)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(3)), "got %s", got)
}
