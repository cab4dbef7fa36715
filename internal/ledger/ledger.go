// Package ledger provides read access to the managed account's home-chain
// ledger. The agent only reads: balances, gas estimates and gas prices.
package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Call describes a transaction for fee estimation.
type Call struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
}

// Client is the minimal ledger surface the agent depends on. The production
// implementation is EVMClient; tests inject stub.Client.
type Client interface {
	// BalanceAt returns the current balance of the address in atomic units.
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)

	// EstimateGas estimates the gas units the call would consume.
	EstimateGas(ctx context.Context, call Call) (uint64, error)

	// SuggestGasPrice returns the current recommended gas price.
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}
