// Package stub implements ledger.Client for testing.
package stub

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"treasury-agent/internal/ledger"
)

// Client is a configurable in-memory ledger.Client. Zero values fall back to
// the defaults set by NewClient; error fields, when set, are returned instead
// of values.
type Client struct {
	Balance     *big.Int
	GasEstimate uint64
	GasPrice    *big.Int

	BalanceErr  error
	EstimateErr error
	GasPriceErr error

	// BalanceCalls counts BalanceAt invocations.
	BalanceCalls int
}

// NewClient creates a stub client with a 1 coin balance, a 21000 gas
// estimate and a 1 gwei gas price.
func NewClient() *Client {
	return &Client{
		Balance:     new(big.Int).SetUint64(1_000_000_000_000_000_000),
		GasEstimate: 21_000,
		GasPrice:    big.NewInt(1_000_000_000),
	}
}

// Compile-time interface check.
var _ ledger.Client = (*Client)(nil)

// BalanceAt returns the configured balance.
func (c *Client) BalanceAt(_ context.Context, _ common.Address) (*big.Int, error) {
	c.BalanceCalls++
	if c.BalanceErr != nil {
		return nil, c.BalanceErr
	}
	return new(big.Int).Set(c.Balance), nil
}

// EstimateGas returns the configured gas estimate.
func (c *Client) EstimateGas(_ context.Context, _ ledger.Call) (uint64, error) {
	if c.EstimateErr != nil {
		return 0, c.EstimateErr
	}
	return c.GasEstimate, nil
}

// SuggestGasPrice returns the configured gas price.
func (c *Client) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	if c.GasPriceErr != nil {
		return nil, c.GasPriceErr
	}
	return new(big.Int).Set(c.GasPrice), nil
}
