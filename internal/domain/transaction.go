package domain

import "github.com/shopspring/decimal"

// TransactionType classifies a recorded pool transaction.
// Values match the transaction_type enum in PostgreSQL.
type TransactionType string

const (
	// SwapToken1 means token 1 was swapped in for token 2.
	SwapToken1 TransactionType = "SWAP_TOKEN_1"
	// SwapToken2 means token 2 was swapped in for token 1.
	SwapToken2      TransactionType = "SWAP_TOKEN_2"
	AddLiquidity    TransactionType = "ADD_LIQUIDITY"
	RemoveLiquidity TransactionType = "REMOVE_LIQUIDITY"
)

// IsSwap reports whether the type is one of the two swap directions.
func (t TransactionType) IsSwap() bool {
	return t == SwapToken1 || t == SwapToken2
}

// TokenPair holds a per-token value pair keyed by pool token ordering.
type TokenPair struct {
	Token1 decimal.Decimal
	Token2 decimal.Decimal
}

// Side returns the value for token n (1 or 2).
func (p TokenPair) Side(n int) decimal.Decimal {
	if n == 1 {
		return p.Token1
	}
	return p.Token2
}

// Transaction is the canonical record of one classified and priced pool
// operation. Constructed once per qualifying operation step, persisted
// exactly once, never mutated after insert.
type Transaction struct {
	ID        int64  // operation id, unique across the chain's transaction log
	Hash      string // operation group hash
	Timestamp int64  // epoch seconds
	Account   string // initiator if present, else sender
	Pool      *Pool
	Type      TransactionType
	Amounts   TokenPair // token amounts moved, decimal-normalized
	Reserves  TokenPair // pool reserves after this transaction
	Prices    TokenPair // USD unit prices
	Values    TokenPair // Amounts × Prices
	Fees      TokenPair // fee amounts from the pool's fee parameter
	FeeValues TokenPair // Fees priced in USD
}

// Value is the total USD value recorded for the transaction: the swapped-in
// side's value for swaps, both sides summed for liquidity operations.
func (t *Transaction) Value() decimal.Decimal {
	switch t.Type {
	case SwapToken1:
		return t.Values.Token1
	case SwapToken2:
		return t.Values.Token2
	default:
		return t.Values.Token1.Add(t.Values.Token2)
	}
}

// SwappedIn reports whether token n (1 or 2) is the swapped-in side.
func (t *Transaction) SwappedIn(n int) bool {
	return (n == 1 && t.Type == SwapToken1) || (n == 2 && t.Type == SwapToken2)
}
