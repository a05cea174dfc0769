package memory

import (
	"context"
	"sync"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.Transaction // keyed by operation id
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{data: make(map[int64]*domain.Transaction)}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds a new transaction row. Returns ErrDuplicateKey if the
// operation id was already recorded.
func (s *TransactionStore) Insert(_ context.Context, t *domain.Transaction) error {
	if t == nil || t.Pool == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}
	txnCopy := *t
	s.data[t.ID] = &txnCopy
	return nil
}

// Exists reports whether a transaction with the given operation id has been
// recorded.
func (s *TransactionStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[id]
	return exists, nil
}

// Count returns the number of recorded transactions. Test helper.
func (s *TransactionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// Get returns the recorded transaction for an operation id. Test helper.
func (s *TransactionStore) Get(id int64) (*domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.data[id]
	if !ok {
		return nil, false
	}
	txnCopy := *t
	return &txnCopy, true
}
