package domain

import "github.com/shopspring/decimal"

// TransferRequest is a proposed cross-chain transfer. Requests are built
// ephemerally once per cycle and consumed immediately by the router.
type TransferRequest struct {
	// ID is assigned by the router when empty.
	ID          string
	Amount      decimal.Decimal
	SourceChain Chain
	DestChain   Chain
	Nonce       *uint64
}

// TransferState is the persisted state of a bridge transfer.
type TransferState string

// Bridge transfer states. The happy path is
// PENDING → LOCKED → PROOF_GENERATED → RELEASED. A failure before the lock
// lands in FAILED (no funds at risk); a failure after the lock lands in
// FAILED_AFTER_LOCK and requires an explicit unlock to reach UNLOCKED.
const (
	TransferPending         TransferState = "PENDING"
	TransferLocked          TransferState = "LOCKED"
	TransferProofGenerated  TransferState = "PROOF_GENERATED"
	TransferReleased        TransferState = "RELEASED"
	TransferFailed          TransferState = "FAILED"
	TransferFailedAfterLock TransferState = "FAILED_AFTER_LOCK"
	TransferUnlocked        TransferState = "UNLOCKED"
)

// Terminal reports whether no further transition is allowed from the state.
func (s TransferState) Terminal() bool {
	switch s {
	case TransferReleased, TransferFailed, TransferUnlocked:
		return true
	}
	return false
}

// InFlight reports whether the transfer still holds (or may hold) funds that
// a restarted process must account for.
func (s TransferState) InFlight() bool {
	switch s {
	case TransferPending, TransferLocked, TransferProofGenerated:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s TransferState) CanTransitionTo(next TransferState) bool {
	switch s {
	case TransferPending:
		return next == TransferLocked || next == TransferFailed
	case TransferLocked:
		return next == TransferProofGenerated || next == TransferFailedAfterLock
	case TransferProofGenerated:
		return next == TransferReleased || next == TransferFailedAfterLock
	case TransferFailedAfterLock:
		return next == TransferUnlocked
	}
	return false
}

// BridgePhase names one leg of the bridge protocol.
type BridgePhase string

// Bridge phases, strictly ordered.
const (
	PhaseLock    BridgePhase = "lock"
	PhaseProve   BridgePhase = "prove"
	PhaseRelease BridgePhase = "release"
)

// BridgeTransfer is the durable record of a cross-chain transfer, persisted
// on every state transition so a crash mid-transfer is recoverable.
type BridgeTransfer struct {
	TransferID    string
	Amount        decimal.Decimal
	SourceChain   Chain
	DestChain     Chain
	State         TransferState
	FailureReason string // empty unless the transfer failed
	CreatedAt     int64  // Unix timestamp in milliseconds
	UpdatedAt     int64  // Unix timestamp in milliseconds
}
