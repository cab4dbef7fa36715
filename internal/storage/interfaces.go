// Package storage defines persistence interfaces for the bridge transfer
// state machine, with in-memory and PostgreSQL implementations in
// sub-packages.
package storage

import (
	"context"

	"treasury-agent/internal/domain"
)

// TransferStore persists bridge transfers. Every state transition is written
// through the store so that a crash mid-transfer leaves a recoverable record.
type TransferStore interface {
	// Insert adds a new transfer. Returns ErrDuplicateKey if transfer_id exists.
	Insert(ctx context.Context, t *domain.BridgeTransfer) error

	// GetByID retrieves a transfer by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, transferID string) (*domain.BridgeTransfer, error)

	// UpdateState transitions a transfer from state `from` to state `to`
	// with compare-and-set semantics: it returns ErrStateConflict when the
	// stored state is not `from` or when the transition is illegal for the
	// state machine. The reason is recorded for failure states and may be
	// empty otherwise.
	UpdateState(ctx context.Context, transferID string, from, to domain.TransferState, reason string) error

	// ListByState retrieves all transfers in the given state, ordered by
	// created_at ASC.
	ListByState(ctx context.Context, state domain.TransferState) ([]*domain.BridgeTransfer, error)

	// ListInFlight retrieves all transfers in a non-terminal, pre-release
	// state (PENDING, LOCKED, PROOF_GENERATED), ordered by created_at ASC.
	ListInFlight(ctx context.Context) ([]*domain.BridgeTransfer, error)
}
