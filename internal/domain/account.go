package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Account is the single managed treasury account.
type Account struct {
	Address   common.Address
	HomeChain Chain
}

// Transaction describes a transfer to be simulated or executed against the
// ledger. No signing or broadcasting happens anywhere in this codebase; the
// descriptor only feeds balance and fee checks.
type Transaction struct {
	To    common.Address
	Value *big.Int
	Data  []byte
	Nonce *uint64
}
