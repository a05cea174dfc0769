package domain

import "github.com/shopspring/decimal"

// PoolAggregate is one hour/day bucket row for a single pool.
// Volume and fee fields are cumulative within the bucket; locked fields are
// the last observed reserves, overwritten rather than summed.
type PoolAggregate struct {
	Timestamp    int64  // bucket start, epoch seconds
	Pool         string // pool address
	Token1Volume decimal.Decimal
	Token2Volume decimal.Decimal
	VolumeValue  decimal.Decimal
	Token1Fees   decimal.Decimal
	Token2Fees   decimal.Decimal
	FeesValue    decimal.Decimal
	Token1Locked decimal.Decimal
	Token2Locked decimal.Decimal
	LockedValue  decimal.Decimal
}

// TokenAggregate is one hour/day bucket row for a single token across all
// pools holding it. Locked is a cross-pool sum maintained by delta
// reconciliation, never recomputed from scratch.
type TokenAggregate struct {
	Timestamp   int64 // bucket start, epoch seconds
	Token       int64 // token id
	OpenPrice   decimal.Decimal
	HighPrice   decimal.Decimal
	LowPrice    decimal.Decimal
	ClosePrice  decimal.Decimal
	Volume      decimal.Decimal
	VolumeValue decimal.Decimal
	Fees        decimal.Decimal
	FeesValue   decimal.Decimal
	Locked      decimal.Decimal
	LockedValue decimal.Decimal
}

// PlentyAggregate is one system-wide hour/day bucket row. TVLValue equals
// the sum of token-aggregate locked values at the bucket.
type PlentyAggregate struct {
	Timestamp   int64 // bucket start, epoch seconds
	VolumeValue decimal.Decimal
	FeesValue   decimal.Decimal
	TVLValue    decimal.Decimal
}

// SpotPrice is the most recent known USD unit price of a token at an instant.
type SpotPrice struct {
	Timestamp int64
	Token     int64
	Value     decimal.Decimal
}
