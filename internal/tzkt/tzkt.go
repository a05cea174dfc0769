package tzkt

import (
	"context"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
)

// Provider abstracts the chain indexer API consumed by the processing
// pipeline.
type Provider interface {
	// GetOperationHashes returns the hashes of applied operations that
	// called one of the entrypoints on the contract at the given level,
	// paginating until exhausted. Duplicate hashes may be returned when a
	// group touches the contract more than once.
	GetOperationHashes(ctx context.Context, contract string, entrypoints []string, level int64) ([]string, error)

	// GetOperation returns the full ordered step list of an operation group.
	GetOperation(ctx context.Context, hash string) ([]OperationStep, error)

	// GetTokenBalance returns the account's balance of the token,
	// normalized by the token's decimals.
	GetTokenBalance(ctx context.Context, token domain.Token, account string) (decimal.Decimal, error)

	// GetHead returns the latest block level known to the indexer API.
	GetHead(ctx context.Context) (int64, error)
}
