package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plenty-analytics-indexer/internal/storage"
)

func TestLastIndexedStore_RecordAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLastIndexedStore(pool)

	_, err := store.Get(ctx, "KT1volatile")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Record(ctx, "KT1volatile", 2525525))

	level, err := store.Get(ctx, "KT1volatile")
	require.NoError(t, err)
	assert.Equal(t, int64(2525525), level)

	// Recording again advances the existing row.
	require.NoError(t, store.Record(ctx, "KT1volatile", 2525530))

	level, err = store.Get(ctx, "KT1volatile")
	require.NoError(t, err)
	assert.Equal(t, int64(2525530), level)
}

func TestLastIndexedStore_PerPoolCursors(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLastIndexedStore(pool)

	require.NoError(t, store.Record(ctx, "KT1volatile", 100))
	require.NoError(t, store.Record(ctx, "KT1stable", 200))

	level, err := store.Get(ctx, "KT1volatile")
	require.NoError(t, err)
	assert.Equal(t, int64(100), level)

	level, err = store.Get(ctx, "KT1stable")
	require.NoError(t, err)
	assert.Equal(t, int64(200), level)
}
