package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

func TestTransactionStore_InsertAndExists(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	txn := &domain.Transaction{
		ID:        1001,
		Hash:      "oo7abc",
		Timestamp: 1700000000,
		Account:   "tz1sender",
		Pool:      &domain.Pool{Address: "KT1pool", Generation: domain.GenVolatile},
		Type:      domain.SwapToken1,
		Amounts:   domain.TokenPair{Token1: decimal.NewFromInt(5)},
	}

	if err := store.Insert(ctx, txn); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	exists, err := store.Exists(ctx, 1001)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected transaction to exist after insert")
	}

	exists, err = store.Exists(ctx, 9999)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected unknown id to not exist")
	}
}

func TestTransactionStore_DuplicateKey(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	txn := &domain.Transaction{
		ID:   42,
		Pool: &domain.Pool{Address: "KT1pool"},
		Type: domain.AddLiquidity,
	}

	if err := store.Insert(ctx, txn); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, txn)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 transaction, got %d", store.Count())
	}
}

func TestTransactionStore_InvalidInput(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	err := store.Insert(ctx, nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
}
