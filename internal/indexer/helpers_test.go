package indexer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage/memory"
	"plenty-analytics-indexer/internal/tzkt"
)

// Shared fixture tokens. IDs mirror registry rows.
var (
	usdtToken = domain.Token{ID: 1, Name: "Tether USD", Symbol: "USDt", Decimals: 6, Standard: domain.StandardFA2, Address: "KT1usdt", TokenID: 0}
	tkaToken  = domain.Token{ID: 2, Name: "Token A", Symbol: "TKA", Decimals: 6, Standard: domain.StandardFA12, Address: "KT1tka"}
	ctezToken = domain.Token{ID: 3, Name: "CTez", Symbol: "CTez", Decimals: 6, Standard: domain.StandardFA12, Address: "KT1ctez"}
	tezToken  = domain.Token{ID: 4, Name: "Tezos", Symbol: "XTZ", Decimals: 6, Standard: domain.StandardTez}
	kusdToken = domain.Token{ID: 5, Name: "Kolibri USD", Symbol: "kUSD", Decimals: 18, Standard: domain.StandardFA12, Address: "KT1kusd"}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func volatilePool() *domain.Pool {
	return &domain.Pool{
		Address:    "KT1volatile",
		Token1:     tkaToken,
		Token2:     usdtToken,
		Fee:        dec("500"),
		Generation: domain.GenVolatile,
	}
}

func stablePool() *domain.Pool {
	return &domain.Pool{
		Address:    "KT1stable",
		Token1:     kusdToken,
		Token2:     usdtToken,
		Fee:        dec("2000"),
		Generation: domain.GenStable,
	}
}

func tezPool() *domain.Pool {
	return &domain.Pool{
		Address:    "KT1tezctez",
		Token1:     tezToken,
		Token2:     ctezToken,
		Fee:        dec("1000"),
		Generation: domain.GenTez,
	}
}

func v3Pool() *domain.Pool {
	return &domain.Pool{
		Address:    "KT1v3",
		Token1:     tkaToken,
		Token2:     usdtToken,
		Fee:        dec("10"),
		Generation: domain.GenV3,
	}
}

// testStores bundles the in-memory stores an Engine writes to.
type testStores struct {
	txns   *memory.TransactionStore
	pools  *memory.PoolAggregateStore
	tokens *memory.TokenAggregateStore
	plenty *memory.PlentyAggregateStore
	prices *memory.SpotPriceStore
}

func newTestStores() *testStores {
	return &testStores{
		txns:   memory.NewTransactionStore(),
		pools:  memory.NewPoolAggregateStore(),
		tokens: memory.NewTokenAggregateStore(),
		plenty: memory.NewPlentyAggregateStore(),
		prices: memory.NewSpotPriceStore(),
	}
}

func newTestEngine(s *testStores) *Engine {
	return NewEngine(s.txns, s.pools, s.tokens, s.plenty)
}

// pricedSwap builds a fully priced token-1-in swap on the given pool.
func pricedSwap(id int64, ts int64, pool *domain.Pool, amount1, amount2, reserve1, reserve2, price1, price2 decimal.Decimal) *domain.Transaction {
	txn := &domain.Transaction{
		ID:        id,
		Hash:      fmt.Sprintf("oo%d", id),
		Timestamp: ts,
		Account:   "tz1trader",
		Pool:      pool,
		Type:      domain.SwapToken1,
		Amounts:   domain.TokenPair{Token1: amount1, Token2: amount2},
		Reserves:  domain.TokenPair{Token1: reserve1, Token2: reserve2},
		Prices:    domain.TokenPair{Token1: price1, Token2: price2},
	}
	txn.Values = domain.TokenPair{
		Token1: amount1.Mul(price1),
		Token2: amount2.Mul(price2),
	}
	txn.Fees = domain.TokenPair{
		Token1: pool.SwapFee(amount1),
		Token2: pool.SwapFee(amount2),
	}
	txn.FeeValues = domain.TokenPair{
		Token1: pool.SwapFee(txn.Values.Token1),
		Token2: pool.SwapFee(txn.Values.Token2),
	}
	return txn
}

// stubProvider is a canned tzkt.Provider for classifier and processor tests.
type stubProvider struct {
	hashes     map[string][]string              // key "pool|level"
	operations map[string][]tzkt.OperationStep  // key hash
	balances   map[string]decimal.Decimal       // key "token|account"
	head       int64
}

var _ tzkt.Provider = (*stubProvider)(nil)

func (p *stubProvider) GetOperationHashes(_ context.Context, contract string, _ []string, level int64) ([]string, error) {
	return p.hashes[fmt.Sprintf("%s|%d", contract, level)], nil
}

func (p *stubProvider) GetOperation(_ context.Context, hash string) ([]tzkt.OperationStep, error) {
	steps, ok := p.operations[hash]
	if !ok {
		return nil, fmt.Errorf("unknown operation %s", hash)
	}
	return steps, nil
}

func (p *stubProvider) GetTokenBalance(_ context.Context, token domain.Token, account string) (decimal.Decimal, error) {
	return p.balances[fmt.Sprintf("%s|%s", token.Address, account)], nil
}

func (p *stubProvider) GetHead(_ context.Context) (int64, error) {
	return p.head, nil
}
