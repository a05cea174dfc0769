package domain

// TokenStandard identifies the asset standard a token follows.
type TokenStandard string

// Supported token standards. TEZ denotes the chain native asset,
// which has no contract address of its own.
const (
	StandardTez  TokenStandard = "TEZ"
	StandardFA12 TokenStandard = "FA1.2"
	StandardFA2  TokenStandard = "FA2"
)

// Token describes one side of a pool pair.
// Corresponds to the token table in PostgreSQL; immutable for a processing run.
type Token struct {
	ID       int64         // database identity, referenced by aggregate rows
	Name     string        // display name
	Symbol   string        // pricing-tree lookup key
	Decimals int           // on-chain precision used to normalize raw amounts
	Standard TokenStandard // TEZ | FA1.2 | FA2
	Address  string        // contract address; empty for TEZ
	TokenID  int64         // FA2 sub-id; 0 for single-asset contracts
}
