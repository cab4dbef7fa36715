package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// DefaultTimeout bounds every individual ledger call.
const DefaultTimeout = 10 * time.Second

// EVMClient implements Client against an EVM JSON-RPC endpoint.
type EVMClient struct {
	eth     *ethclient.Client
	timeout time.Duration
}

// Option configures EVMClient.
type Option func(*EVMClient)

// WithTimeout sets the per-call deadline applied to every ledger query.
func WithTimeout(d time.Duration) Option {
	return func(c *EVMClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Dial connects to the given RPC endpoint.
func Dial(ctx context.Context, rpcURL string, opts ...Option) (*EVMClient, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc %s: %w", rpcURL, err)
	}

	c := &EVMClient{
		eth:     eth,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Compile-time interface check.
var _ Client = (*EVMClient)(nil)

// BalanceAt returns the current balance of the address in atomic units.
func (c *EVMClient) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	return c.eth.BalanceAt(ctx, addr, nil)
}

// EstimateGas estimates the gas units the call would consume.
func (c *EVMClient) EstimateGas(ctx context.Context, call Call) (uint64, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	to := call.To
	return c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:  call.From,
		To:    &to,
		Value: call.Value,
		Data:  call.Data,
	})
}

// SuggestGasPrice returns the current recommended gas price.
func (c *EVMClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	return c.eth.SuggestGasPrice(ctx)
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.eth.Close()
}

func (c *EVMClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
