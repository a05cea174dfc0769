package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// Engine folds one priced transaction into the persistent aggregate views.
// Each call performs, in order: transaction insert, pool aggregate update,
// token aggregate update and system aggregate update, hourly before daily.
// The order matters: later steps read values written by earlier ones.
type Engine struct {
	txns   storage.TransactionStore
	pools  storage.PoolAggregateStore
	tokens storage.TokenAggregateStore
	plenty storage.PlentyAggregateStore
}

// NewEngine creates an aggregation engine over the given stores.
func NewEngine(txns storage.TransactionStore, pools storage.PoolAggregateStore, tokens storage.TokenAggregateStore, plenty storage.PlentyAggregateStore) *Engine {
	return &Engine{txns: txns, pools: pools, tokens: tokens, plenty: plenty}
}

// Record persists the transaction and updates every aggregate level. When a
// token in the pair is unpriced (zero price), the transaction row is written
// but no aggregate changes, so unresolvable prices never pollute the sums.
func (e *Engine) Record(ctx context.Context, txn *domain.Transaction) error {
	if err := e.txns.Insert(ctx, txn); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Already fully recorded, including aggregates.
			return nil
		}
		return fmt.Errorf("insert transaction %d: %w", txn.ID, err)
	}

	if txn.Prices.Token1.IsZero() || txn.Prices.Token2.IsZero() {
		return nil
	}

	// Reserves as they were before this transaction, reconstructed from the
	// direction each side moved. Needed for the locked-value deltas below.
	// A pool observed for the first time has contributed nothing to any
	// locked figure yet, so its prior reserves count as zero and the whole
	// post-transaction reserve enters as new. Indexing can start mid-chain,
	// so a first observation is not necessarily the pool's first transaction.
	var old domain.TokenPair
	seen, err := e.pools.Exists(ctx, txn.Pool.Address)
	if err != nil {
		return fmt.Errorf("check pool aggregate history: %w", err)
	}
	if seen {
		old = domain.TokenPair{
			Token1: oldReserve(txn, 1),
			Token2: oldReserve(txn, 2),
		}
	}

	for _, period := range domain.Periods {
		if err := e.recordPool(ctx, period, txn); err != nil {
			return fmt.Errorf("pool aggregate %s: %w", period, err)
		}
	}
	for _, period := range domain.Periods {
		if err := e.recordToken(ctx, period, txn, old); err != nil {
			return fmt.Errorf("token aggregate %s: %w", period, err)
		}
	}
	for _, period := range domain.Periods {
		if err := e.recordPlenty(ctx, period, txn, old); err != nil {
			return fmt.Errorf("system aggregate %s: %w", period, err)
		}
	}

	return nil
}

// oldReserve reconstructs the pool's pre-transaction reserve of token n. A
// side the transaction added to (swap-in or liquidity deposit) had the amount
// subtracted; a side it drained had it added back.
func oldReserve(txn *domain.Transaction, n int) decimal.Decimal {
	reserve := txn.Reserves.Side(n)
	amount := txn.Amounts.Side(n)
	if txn.SwappedIn(n) || txn.Type == domain.AddLiquidity {
		return reserve.Sub(amount)
	}
	return reserve.Add(amount)
}

func (e *Engine) recordPool(ctx context.Context, period domain.Period, txn *domain.Transaction) error {
	ts := period.BucketStart(txn.Timestamp)
	lockedValue := txn.Reserves.Token1.Mul(txn.Prices.Token1).
		Add(txn.Reserves.Token2.Mul(txn.Prices.Token2))

	cur, err := e.pools.Get(ctx, period, ts, txn.Pool.Address)
	if errors.Is(err, storage.ErrNotFound) {
		agg := &domain.PoolAggregate{
			Timestamp:    ts,
			Pool:         txn.Pool.Address,
			Token1Locked: txn.Reserves.Token1,
			Token2Locked: txn.Reserves.Token2,
			LockedValue:  lockedValue,
		}
		switch {
		case txn.SwappedIn(1):
			agg.Token1Volume = txn.Amounts.Token1
			agg.VolumeValue = txn.Values.Token1
			agg.Token1Fees = txn.Fees.Token1
			agg.FeesValue = txn.FeeValues.Token1
		case txn.SwappedIn(2):
			agg.Token2Volume = txn.Amounts.Token2
			agg.VolumeValue = txn.Values.Token2
			agg.Token2Fees = txn.Fees.Token2
			agg.FeesValue = txn.FeeValues.Token2
		}
		return e.pools.Insert(ctx, period, agg)
	}
	if err != nil {
		return err
	}

	switch {
	case txn.SwappedIn(1):
		cur.Token1Volume = cur.Token1Volume.Add(txn.Amounts.Token1)
		cur.VolumeValue = cur.VolumeValue.Add(txn.Values.Token1)
		cur.Token1Fees = cur.Token1Fees.Add(txn.Fees.Token1)
		cur.FeesValue = cur.FeesValue.Add(txn.FeeValues.Token1)
	case txn.SwappedIn(2):
		cur.Token2Volume = cur.Token2Volume.Add(txn.Amounts.Token2)
		cur.VolumeValue = cur.VolumeValue.Add(txn.Values.Token2)
		cur.Token2Fees = cur.Token2Fees.Add(txn.Fees.Token2)
		cur.FeesValue = cur.FeesValue.Add(txn.FeeValues.Token2)
	}
	// Locked figures are last-observation-wins, never summed.
	cur.Token1Locked = txn.Reserves.Token1
	cur.Token2Locked = txn.Reserves.Token2
	cur.LockedValue = lockedValue
	return e.pools.Update(ctx, period, cur)
}

func (e *Engine) recordToken(ctx context.Context, period domain.Period, txn *domain.Transaction, old domain.TokenPair) error {
	ts := period.BucketStart(txn.Timestamp)

	for n := 1; n <= 2; n++ {
		token := txn.Pool.Token1
		if n == 2 {
			token = txn.Pool.Token2
		}
		price := txn.Prices.Side(n)
		swapIn := txn.SwappedIn(n)

		// A token's locked figure is a cross-pool sum, so only this pool's
		// reserve change is applied, never a wholesale replacement.
		delta := txn.Reserves.Side(n).Sub(old.Side(n))

		cur, err := e.tokens.Get(ctx, period, ts, token.ID)
		if errors.Is(err, storage.ErrNotFound) {
			locked := delta
			prev, err := e.tokens.GetLastBefore(ctx, period, token.ID, ts)
			if err == nil {
				locked = prev.Locked.Add(delta)
			} else if !errors.Is(err, storage.ErrNotFound) {
				return err
			}

			agg := &domain.TokenAggregate{
				Timestamp:   ts,
				Token:       token.ID,
				OpenPrice:   price,
				HighPrice:   price,
				LowPrice:    price,
				ClosePrice:  price,
				Locked:      locked,
				LockedValue: locked.Mul(price),
			}
			if swapIn {
				agg.Volume = txn.Amounts.Side(n)
				agg.VolumeValue = txn.Values.Side(n)
				agg.Fees = txn.Fees.Side(n)
				agg.FeesValue = txn.FeeValues.Side(n)
			}
			if err := e.tokens.Insert(ctx, period, agg); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if price.GreaterThan(cur.HighPrice) {
			cur.HighPrice = price
		}
		if price.LessThan(cur.LowPrice) {
			cur.LowPrice = price
		}
		cur.ClosePrice = price
		if swapIn {
			cur.Volume = cur.Volume.Add(txn.Amounts.Side(n))
			cur.VolumeValue = cur.VolumeValue.Add(txn.Values.Side(n))
			cur.Fees = cur.Fees.Add(txn.Fees.Side(n))
			cur.FeesValue = cur.FeesValue.Add(txn.FeeValues.Side(n))
		}
		cur.Locked = cur.Locked.Add(delta)
		cur.LockedValue = cur.Locked.Mul(price)
		if err := e.tokens.Update(ctx, period, cur); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) recordPlenty(ctx context.Context, period domain.Period, txn *domain.Transaction, old domain.TokenPair) error {
	ts := period.BucketStart(txn.Timestamp)

	oldValue := old.Token1.Mul(txn.Prices.Token1).Add(old.Token2.Mul(txn.Prices.Token2))
	newValue := txn.Reserves.Token1.Mul(txn.Prices.Token1).
		Add(txn.Reserves.Token2.Mul(txn.Prices.Token2))

	// Liquidity events contribute nothing to system volume and fees.
	swapValue, swapFees := decimal.Zero, decimal.Zero
	switch {
	case txn.SwappedIn(1):
		swapValue, swapFees = txn.Values.Token1, txn.FeeValues.Token1
	case txn.SwappedIn(2):
		swapValue, swapFees = txn.Values.Token2, txn.FeeValues.Token2
	}

	cur, err := e.plenty.Get(ctx, period, ts)
	if errors.Is(err, storage.ErrNotFound) {
		tvl, err := e.bucketTVL(ctx, period, txn, oldValue, newValue, nil)
		if err != nil {
			return err
		}
		return e.plenty.Insert(ctx, period, &domain.PlentyAggregate{
			Timestamp:   ts,
			VolumeValue: swapValue,
			FeesValue:   swapFees,
			TVLValue:    tvl,
		})
	}
	if err != nil {
		return err
	}

	tvl, err := e.bucketTVL(ctx, period, txn, oldValue, newValue, cur)
	if err != nil {
		return err
	}
	cur.VolumeValue = cur.VolumeValue.Add(swapValue)
	cur.FeesValue = cur.FeesValue.Add(swapFees)
	cur.TVLValue = tvl
	return e.plenty.Update(ctx, period, cur)
}

// bucketTVL computes the system TVL for the bucket being written. Daily
// buckets copy the hourly bucket already reconciled earlier in this call;
// hourly buckets apply the reserve-value delta to the previous bucket's TVL.
// A first-ever hourly bucket sums the latest token locked values fresh, which
// already include this transaction's token aggregate updates.
func (e *Engine) bucketTVL(ctx context.Context, period domain.Period, txn *domain.Transaction, oldValue, newValue decimal.Decimal, cur *domain.PlentyAggregate) (decimal.Decimal, error) {
	if period == domain.PeriodDay {
		hour, err := e.plenty.Get(ctx, domain.PeriodHour, domain.PeriodHour.BucketStart(txn.Timestamp))
		if err == nil {
			return hour.TVLValue, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return decimal.Zero, err
		}
	}

	if cur != nil {
		return cur.TVLValue.Sub(oldValue).Add(newValue), nil
	}

	prev, err := e.plenty.GetLastAtOrBefore(ctx, period, period.BucketStart(txn.Timestamp))
	if err == nil {
		return prev.TVLValue.Sub(oldValue).Add(newValue), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return decimal.Zero, err
	}

	return e.tokens.SumLatestLockedValue(ctx, period.BucketStart(txn.Timestamp))
}
