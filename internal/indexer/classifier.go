package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/tzkt"
)

// Classifier turns a qualifying operation step into a canonical pre-price
// transaction record: type, moved amounts, post-transaction reserves and fee
// amounts. Prices and USD values are attached later by the Resolver.
type Classifier struct {
	provider    tzkt.Provider
	tezCtezPool string
}

// NewClassifier creates a Classifier. tezCtezPool is the address of the
// native-paired pool whose swap entrypoints encode direction in their name.
func NewClassifier(provider tzkt.Provider, tezCtezPool string) *Classifier {
	return &Classifier{provider: provider, tezCtezPool: tezCtezPool}
}

// Classify builds the transaction for the step at index, which must target
// the pool with a recognized entrypoint. Returns (nil, nil) when the step is
// a recognized no-op, such as a zero-delta position call collecting fees.
func (c *Classifier) Classify(ctx context.Context, steps []tzkt.OperationStep, index int, pool *domain.Pool) (*domain.Transaction, error) {
	step := &steps[index]

	kind, ok := pool.Generation.ClassifyEntrypoint(step.Entrypoint())
	if !ok {
		return nil, nil
	}

	txnType, skip, err := c.classifyType(step, pool, kind)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}

	amount1, err := extractAmount(pool.Token1, steps, index)
	if err != nil {
		return nil, err
	}
	amount2, err := extractAmount(pool.Token2, steps, index)
	if err != nil {
		return nil, err
	}

	var reserve1, reserve2 decimal.Decimal
	if pool.Generation == domain.GenV3 {
		// Tick-based pools expose no paired reserves in storage, so the
		// current pool balances stand in for them.
		reserve1, err = c.provider.GetTokenBalance(ctx, pool.Token1, pool.Address)
		if err != nil {
			return nil, fmt.Errorf("fetch token 1 reserve: %w", err)
		}
		reserve2, err = c.provider.GetTokenBalance(ctx, pool.Token2, pool.Address)
		if err != nil {
			return nil, fmt.Errorf("fetch token 2 reserve: %w", err)
		}
	} else {
		reserve1, reserve2, err = reservesFromStorage(step, pool)
		if err != nil {
			return nil, err
		}
	}

	account := ""
	if step.Initiator != nil {
		account = step.Initiator.Address
	} else if step.Sender != nil {
		account = step.Sender.Address
	}

	return &domain.Transaction{
		ID:        step.ID,
		Hash:      step.Hash,
		Timestamp: step.Timestamp.Unix(),
		Account:   account,
		Pool:      pool,
		Type:      txnType,
		Amounts:   domain.TokenPair{Token1: amount1, Token2: amount2},
		Reserves:  domain.TokenPair{Token1: reserve1, Token2: reserve2},
		Fees: domain.TokenPair{
			Token1: pool.SwapFee(amount1),
			Token2: pool.SwapFee(amount2),
		},
	}, nil
}

// swapParameter is the call payload of a v2 swap, identifying the token the
// caller wants out of the pool.
type swapParameter struct {
	RequiredTokenAddress string `json:"requiredTokenAddress"`
	RequiredTokenID      string `json:"requiredTokenId"`
}

// positionParameter is the call payload of a concentrated-liquidity position
// entrypoint. Liquidity applies to set_position, LiquidityDelta to
// update_position.
type positionParameter struct {
	Liquidity      string `json:"liquidity"`
	LiquidityDelta string `json:"liquidity_delta"`
}

func (c *Classifier) classifyType(step *tzkt.OperationStep, pool *domain.Pool, kind domain.EntrypointKind) (domain.TransactionType, bool, error) {
	switch kind {
	case domain.EntrypointAddLiquidity:
		return domain.AddLiquidity, false, nil

	case domain.EntrypointRemoveLiquidity:
		return domain.RemoveLiquidity, false, nil

	case domain.EntrypointSwap:
		return c.swapDirection(step, pool)

	case domain.EntrypointPosition:
		var param positionParameter
		if err := json.Unmarshal(step.Parameter.Value, &param); err != nil {
			return "", false, fmt.Errorf("parse position parameter: %w", err)
		}
		if step.Entrypoint() == domain.V3SetPosition {
			liquidity, err := decimal.NewFromString(param.Liquidity)
			if err != nil {
				return "", false, fmt.Errorf("parse position liquidity %q: %w", param.Liquidity, err)
			}
			if liquidity.IsZero() {
				return "", true, nil
			}
			return domain.AddLiquidity, false, nil
		}
		delta, err := decimal.NewFromString(param.LiquidityDelta)
		if err != nil {
			return "", false, fmt.Errorf("parse liquidity delta %q: %w", param.LiquidityDelta, err)
		}
		switch {
		case delta.IsPositive():
			return domain.AddLiquidity, false, nil
		case delta.IsNegative():
			return domain.RemoveLiquidity, false, nil
		default:
			// Zero delta is a fee collection, deliberately not recorded.
			return "", true, nil
		}
	}

	return "", false, fmt.Errorf("entrypoint %q not classifiable for pool %s", step.Entrypoint(), pool.Address)
}

func (c *Classifier) swapDirection(step *tzkt.OperationStep, pool *domain.Pool) (domain.TransactionType, bool, error) {
	if pool.Generation == domain.GenV3 {
		if step.Entrypoint() == domain.V3SwapXToY {
			return domain.SwapToken1, false, nil
		}
		return domain.SwapToken2, false, nil
	}

	if pool.Generation == domain.GenTez || pool.Address == c.tezCtezPool {
		if step.Entrypoint() == domain.TezSwapEntrypoint {
			return domain.SwapToken1, false, nil
		}
		return domain.SwapToken2, false, nil
	}

	var param swapParameter
	if err := json.Unmarshal(step.Parameter.Value, &param); err != nil {
		return "", false, fmt.Errorf("parse swap parameter: %w", err)
	}

	// The required token is the one swapped out, so a match against token 1
	// means token 2 was swapped in.
	if param.RequiredTokenAddress == pool.Token1.Address &&
		param.RequiredTokenID == strconv.FormatInt(pool.Token1.TokenID, 10) {
		return domain.SwapToken2, false, nil
	}
	return domain.SwapToken1, false, nil
}

// fa2TransferBatch is the parameter shape of an FA2 transfer entrypoint.
type fa2TransferBatch []struct {
	Txs []struct {
		TokenID string `json:"token_id"`
		Amount  string `json:"amount"`
	} `json:"txs"`
}

// fa12Transfer is the parameter shape of an FA1.2 transfer entrypoint.
type fa12Transfer struct {
	Value string `json:"value"`
}

// extractAmount scans forward from index for the step that actually moves the
// token. The qualifying pool call is followed by internal transfer steps
// carrying the moved amounts; the scan is bounded by the step list so a
// malformed operation fails instead of looping.
func extractAmount(token domain.Token, steps []tzkt.OperationStep, index int) (decimal.Decimal, error) {
	for i := index; i < len(steps); i++ {
		step := &steps[i]

		switch token.Standard {
		case domain.StandardTez:
			if step.Amount != 0 {
				return decimal.NewFromInt(step.Amount).Shift(int32(-token.Decimals)), nil
			}

		case domain.StandardFA2:
			if !isTransferTo(step, token.Address) {
				continue
			}
			var batch fa2TransferBatch
			if err := json.Unmarshal(step.Parameter.Value, &batch); err != nil {
				continue
			}
			if len(batch) == 0 || len(batch[0].Txs) == 0 {
				continue
			}
			if batch[0].Txs[0].TokenID != strconv.FormatInt(token.TokenID, 10) {
				continue
			}
			raw, err := decimal.NewFromString(batch[0].Txs[0].Amount)
			if err != nil {
				return decimal.Zero, fmt.Errorf("parse FA2 amount %q: %w", batch[0].Txs[0].Amount, err)
			}
			return raw.Shift(int32(-token.Decimals)), nil

		case domain.StandardFA12:
			if !isTransferTo(step, token.Address) {
				continue
			}
			var transfer fa12Transfer
			if err := json.Unmarshal(step.Parameter.Value, &transfer); err != nil {
				continue
			}
			raw, err := decimal.NewFromString(transfer.Value)
			if err != nil {
				return decimal.Zero, fmt.Errorf("parse FA1.2 amount %q: %w", transfer.Value, err)
			}
			return raw.Shift(int32(-token.Decimals)), nil
		}
	}

	return decimal.Zero, fmt.Errorf("no step moves token %s after index %d", token.Symbol, index)
}

func isTransferTo(step *tzkt.OperationStep, address string) bool {
	return step.Target != nil && step.Target.Address == address && step.Entrypoint() == "transfer"
}

// Reserve field aliases tried in priority order; the name varies across pool
// contract generations.
var (
	reserve1Aliases = []string{"token1Pool", "token1_pool", "tezPool"}
	reserve2Aliases = []string{"token2Pool", "token2_pool", "ctezPool"}
)

// reservesFromStorage reads both post-transaction reserves out of the step's
// storage snapshot, normalized by token decimals.
func reservesFromStorage(step *tzkt.OperationStep, pool *domain.Pool) (decimal.Decimal, decimal.Decimal, error) {
	var storage map[string]json.RawMessage
	if err := json.Unmarshal(step.Storage, &storage); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parse storage snapshot: %w", err)
	}

	raw1, err := storageField(storage, reserve1Aliases)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("token 1 reserve: %w", err)
	}
	raw2, err := storageField(storage, reserve2Aliases)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("token 2 reserve: %w", err)
	}

	return raw1.Shift(int32(-pool.Token1.Decimals)), raw2.Shift(int32(-pool.Token2.Decimals)), nil
}

func storageField(storage map[string]json.RawMessage, aliases []string) (decimal.Decimal, error) {
	for _, name := range aliases {
		raw, ok := storage[name]
		if !ok {
			continue
		}
		value, err := decimal.NewFromString(strings.Trim(string(raw), `"`))
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse field %s %q: %w", name, raw, err)
		}
		return value, nil
	}
	return decimal.Zero, fmt.Errorf("no reserve field found (tried %s)", strings.Join(aliases, ", "))
}
