package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// DefaultPricingTree is the prioritized reference-asset tree. Group 0 holds
// hard-pegged dollar stablecoins whose price is definitionally 1 and never
// stored; each later group is priced off the groups before it.
var DefaultPricingTree = [][]string{
	{"USDt", "USDC.e"},
	{"CTez"},
	{"uUSD", "kUSD"},
	{"YOU"},
}

var one = decimal.NewFromInt(1)

// Resolver derives per-token USD unit prices for classified transactions and
// maintains the spot-price time series they are derived from.
type Resolver struct {
	prices storage.SpotPriceStore
	tree   [][]string
}

// NewResolver creates a Resolver. A nil tree selects DefaultPricingTree.
func NewResolver(prices storage.SpotPriceStore, tree [][]string) *Resolver {
	if tree == nil {
		tree = DefaultPricingTree
	}
	return &Resolver{prices: prices, tree: tree}
}

// PriceAt returns the token's USD unit price at ts: exactly 1 for group 0
// stablecoins, otherwise the most recent recorded spot price. A token that
// has never been priced yields zero, the accepted unpriced outcome.
func (r *Resolver) PriceAt(ctx context.Context, ts int64, token domain.Token) (decimal.Decimal, error) {
	if r.isStablecoin(token.Symbol) {
		return one, nil
	}

	price, err := r.prices.GetLatestAt(ctx, token.ID, ts)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("look up spot price of %s: %w", token.Symbol, err)
	}
	return price, nil
}

// Resolve attaches prices, USD values and fee values to the transaction and
// records the resulting spot prices at the transaction's timestamp.
func (r *Resolver) Resolve(ctx context.Context, txn *domain.Transaction) error {
	price1, err := r.PriceAt(ctx, txn.Timestamp, txn.Pool.Token1)
	if err != nil {
		return err
	}
	price2, err := r.PriceAt(ctx, txn.Timestamp, txn.Pool.Token2)
	if err != nil {
		return err
	}

	if r.shouldDerive(txn, price1, price2) {
		base1, base2 := r.pricingBasis(txn)

		// The first tree group containing one of the pair anchors the
		// other side's price off the executed rate.
		for _, group := range r.tree {
			if containsSymbol(group, txn.Pool.Token1.Symbol) {
				if !base2.IsZero() {
					price2 = base1.Mul(price1).Div(base2)
				}
				break
			}
			if containsSymbol(group, txn.Pool.Token2.Symbol) {
				if !base1.IsZero() {
					price1 = base2.Mul(price2).Div(base1)
				}
				break
			}
		}
	}

	txn.Prices = domain.TokenPair{Token1: price1, Token2: price2}
	txn.Values = domain.TokenPair{
		Token1: txn.Amounts.Token1.Mul(price1),
		Token2: txn.Amounts.Token2.Mul(price2),
	}
	txn.FeeValues = domain.TokenPair{
		Token1: txn.Pool.SwapFee(txn.Values.Token1),
		Token2: txn.Pool.SwapFee(txn.Values.Token2),
	}

	if err := r.recordSpot(ctx, txn.Timestamp, txn.Pool.Token1, price1); err != nil {
		return err
	}
	return r.recordSpot(ctx, txn.Timestamp, txn.Pool.Token2, price2)
}

// shouldDerive reports whether the reference-tree walk should run, or the
// looked-up spot prices stand as-is.
func (r *Resolver) shouldDerive(txn *domain.Transaction, price1, price2 decimal.Decimal) bool {
	// Balanced stable deposits with both sides already priced would only add
	// reserve-ratio noise.
	if txn.Pool.Generation == domain.GenStable && txn.Type == domain.AddLiquidity &&
		!price1.IsZero() && !price2.IsZero() {
		return false
	}

	// Tick-based pool amounts only reveal a rate on swaps.
	if txn.Pool.Generation == domain.GenV3 && !txn.Type.IsSwap() {
		return false
	}

	return true
}

// pricingBasis picks reserve ratios for volatile pools and executed swap
// amounts for stable and tick-based pools, where reserve ratios are a poor
// proxy for the instantaneous price.
func (r *Resolver) pricingBasis(txn *domain.Transaction) (decimal.Decimal, decimal.Decimal) {
	if txn.Pool.Generation == domain.GenStable || txn.Pool.Generation == domain.GenV3 {
		return txn.Amounts.Token1, txn.Amounts.Token2
	}
	return txn.Reserves.Token1, txn.Reserves.Token2
}

func (r *Resolver) recordSpot(ctx context.Context, ts int64, token domain.Token, price decimal.Decimal) error {
	// Stablecoin prices are constant and not stored.
	if r.isStablecoin(token.Symbol) {
		return nil
	}

	err := r.prices.Upsert(ctx, &domain.SpotPrice{Timestamp: ts, Token: token.ID, Value: price})
	if err != nil {
		return fmt.Errorf("record spot price of %s: %w", token.Symbol, err)
	}
	return nil
}

func (r *Resolver) isStablecoin(symbol string) bool {
	return len(r.tree) > 0 && containsSymbol(r.tree[0], symbol)
}

func containsSymbol(group []string, symbol string) bool {
	for _, s := range group {
		if s == symbol {
			return true
		}
	}
	return false
}
