package domain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Class partitions agent failures by how the caller should react.
type Class int

const (
	// ClassValidation marks caller-correctable failures. Never retried.
	ClassValidation Class = iota
	// ClassResource marks hard failures carrying required-vs-available
	// context. A resource failure aborts the current cycle.
	ClassResource
	// ClassTransient marks provider, network and data-source failures.
	// The orchestrator retries them on the next cycle.
	ClassTransient
)

// String returns the class label used in logs and metrics.
func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassResource:
		return "resource"
	case ClassTransient:
		return "transient"
	}
	return "unknown"
}

// Classified is implemented by every error in the agent's closed taxonomy.
type Classified interface {
	error
	Class() Class
}

// ClassOf extracts the failure class from an error chain. The second return
// is false for errors outside the taxonomy.
func ClassOf(err error) (Class, bool) {
	var c Classified
	if errors.As(err, &c) {
		return c.Class(), true
	}
	return 0, false
}

// InvalidChainError reports a transfer endpoint outside the chain registry.
type InvalidChainError struct {
	Chain     Chain
	Supported []Chain
}

func (e *InvalidChainError) Error() string {
	return fmt.Sprintf("invalid chain %q, supported chains: %v", e.Chain, e.Supported)
}

// Class implements Classified.
func (e *InvalidChainError) Class() Class { return ClassValidation }

// SameChainError reports a transfer whose source and destination are equal.
// Bridging a corridor with identical endpoints is always a caller bug.
type SameChainError struct {
	Chain Chain
}

func (e *SameChainError) Error() string {
	return fmt.Sprintf("source and destination chain are both %q", e.Chain)
}

// Class implements Classified.
func (e *SameChainError) Class() Class { return ClassValidation }

// AmountTooLowError reports a transfer amount below the corridor minimum.
type AmountTooLowError struct {
	Amount  decimal.Decimal
	Minimum decimal.Decimal
}

func (e *AmountTooLowError) Error() string {
	return fmt.Sprintf("amount %s is below minimum %s", e.Amount, e.Minimum)
}

// Class implements Classified.
func (e *AmountTooLowError) Class() Class { return ClassValidation }

// InvalidAddressError reports a malformed account address.
type InvalidAddressError struct {
	Value string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q", e.Value)
}

// Class implements Classified.
func (e *InvalidAddressError) Class() Class { return ClassValidation }

// InsufficientBalanceError reports an account balance too low for a
// transaction.
type InsufficientBalanceError struct {
	Required  *big.Int
	Available *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, available %s", e.Required, e.Available)
}

// Class implements Classified.
func (e *InsufficientBalanceError) Class() Class { return ClassResource }

// InsufficientLiquidityError reports a transfer exceeding corridor liquidity.
type InsufficientLiquidityError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("insufficient liquidity: required %s, available %s", e.Required, e.Available)
}

// Class implements Classified.
func (e *InsufficientLiquidityError) Class() Class { return ClassResource }

// CriticalBalanceError is the hard, action-required signal raised when the
// balance falls to or below the critical threshold. It aborts the current
// cycle; the optimizer and router are skipped until the account is funded.
type CriticalBalanceError struct {
	Current *big.Int
	Minimum *big.Int
}

func (e *CriticalBalanceError) Error() string {
	return fmt.Sprintf("balance below critical threshold: current %s, minimum %s; fund the account to resume", e.Current, e.Minimum)
}

// Class implements Classified.
func (e *CriticalBalanceError) Class() Class { return ClassResource }

// ProviderError wraps a failed ledger query.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Class implements Classified.
func (e *ProviderError) Class() Class { return ClassTransient }

// GasEstimationError wraps a failed fee-estimation query.
type GasEstimationError struct {
	Err error
}

func (e *GasEstimationError) Error() string {
	return fmt.Sprintf("gas estimation failed: %v", e.Err)
}

func (e *GasEstimationError) Unwrap() error { return e.Err }

// Class implements Classified.
func (e *GasEstimationError) Class() Class { return ClassTransient }

// DataSourceError wraps a failed yield-data fetch.
type DataSourceError struct {
	Endpoint string
	Status   int // HTTP status, 0 when the request never completed
	Err      error
}

func (e *DataSourceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("yield data source %s returned status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("yield data source %s: %v", e.Endpoint, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// Class implements Classified.
func (e *DataSourceError) Class() Class { return ClassTransient }

// NoPoolsError reports an empty candidate list from the data source.
type NoPoolsError struct{}

func (e *NoPoolsError) Error() string { return "no pools found in response" }

// Class implements Classified.
func (e *NoPoolsError) Class() Class { return ClassTransient }

// NoValidPoolsError reports that every fetched candidate failed validation.
type NoValidPoolsError struct {
	Total int
}

func (e *NoValidPoolsError) Error() string {
	return fmt.Sprintf("no valid pools among %d candidates", e.Total)
}

// Class implements Classified.
func (e *NoValidPoolsError) Class() Class { return ClassTransient }

// BridgeError reports a failed bridge phase. When Phase is prove or release
// the transfer's funds remain locked on the source chain until an explicit
// unlock.
type BridgeError struct {
	Phase      BridgePhase
	TransferID string
	Err        error
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("bridge %s phase failed for transfer %s: %v", e.Phase, e.TransferID, e.Err)
}

func (e *BridgeError) Unwrap() error { return e.Err }

// Class implements Classified.
func (e *BridgeError) Class() Class { return ClassTransient }
