package postgres

import (
	"context"
	"fmt"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds a new transaction row. Returns ErrDuplicateKey if the
// operation id was already recorded.
func (s *TransactionStore) Insert(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transaction (
			id, ts, hash, pool, account, type, token_1_amount, token_2_amount, value
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID,
		t.Timestamp,
		t.Hash,
		t.Pool.Address,
		t.Account,
		string(t.Type),
		t.Amounts.Token1,
		t.Amounts.Token2,
		t.Value(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Exists reports whether a transaction with the given operation id has been
// recorded.
func (s *TransactionStore) Exists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM transaction WHERE id = $1`, id).Scan(&found)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("check transaction exists: %w", err)
	}
	return true, nil
}
