package tzkt

import (
	"encoding/json"
	"time"
)

// Account is an address-bearing party of an operation step.
type Account struct {
	Address string `json:"address"`
}

// Parameter is the entrypoint call payload of a transaction step. Value keeps
// the raw Michelson-derived JSON since its shape varies per entrypoint.
type Parameter struct {
	Entrypoint string          `json:"entrypoint"`
	Value      json.RawMessage `json:"value"`
}

// OperationStep is one internal transaction inside an operation group, as
// returned by the /operations/{hash} endpoint. Steps are ordered; amount
// movements for a pool call appear in the steps following the call itself.
type OperationStep struct {
	ID        int64           `json:"id"`
	Level     int64           `json:"level"`
	Hash      string          `json:"hash"`
	Timestamp time.Time       `json:"timestamp"`
	Sender    *Account        `json:"sender"`
	Initiator *Account        `json:"initiator"`
	Target    *Account        `json:"target"`
	Amount    int64           `json:"amount"`
	Parameter *Parameter      `json:"parameter"`
	Storage   json.RawMessage `json:"storage"`
}

// Entrypoint returns the called entrypoint name, or "" when the step carries
// no parameter.
func (s *OperationStep) Entrypoint() string {
	if s.Parameter == nil {
		return ""
	}
	return s.Parameter.Entrypoint
}

// tokenBalanceRow is the raw /tokens/balances response item.
type tokenBalanceRow struct {
	Balance string `json:"balance"`
}
