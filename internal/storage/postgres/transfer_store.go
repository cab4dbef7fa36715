package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"treasury-agent/internal/domain"
	"treasury-agent/internal/storage"
)

// TransferStore implements storage.TransferStore using PostgreSQL.
type TransferStore struct {
	pool *Pool
}

// NewTransferStore creates a new TransferStore.
func NewTransferStore(pool *Pool) *TransferStore {
	return &TransferStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransferStore = (*TransferStore)(nil)

// Insert adds a new transfer. Returns ErrDuplicateKey if transfer_id exists.
func (s *TransferStore) Insert(ctx context.Context, t *domain.BridgeTransfer) error {
	if t == nil || t.TransferID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO bridge_transfers (
			transfer_id, amount, source_chain, dest_chain, state, failure_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TransferID,
		t.Amount.String(),
		string(t.SourceChain),
		string(t.DestChain),
		string(t.State),
		t.FailureReason,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByID retrieves a transfer by its ID. Returns ErrNotFound if not exists.
func (s *TransferStore) GetByID(ctx context.Context, transferID string) (*domain.BridgeTransfer, error) {
	query := `
		SELECT transfer_id, amount, source_chain, dest_chain, state, failure_reason, created_at, updated_at
		FROM bridge_transfers
		WHERE transfer_id = $1
	`

	row := s.pool.QueryRow(ctx, query, transferID)
	t, err := scanTransfer(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get transfer by id: %w", err)
	}
	return t, nil
}

// UpdateState transitions a transfer with compare-and-set semantics: the
// UPDATE matches on both transfer_id and the expected current state, so a
// concurrent transition loses cleanly with ErrStateConflict.
func (s *TransferStore) UpdateState(ctx context.Context, transferID string, from, to domain.TransferState, reason string) error {
	if transferID == "" {
		return storage.ErrInvalidInput
	}
	if !from.CanTransitionTo(to) {
		return storage.ErrStateConflict
	}

	query := `
		UPDATE bridge_transfers
		SET state = $1,
		    failure_reason = CASE WHEN $2 <> '' THEN $2 ELSE failure_reason END,
		    updated_at = (extract(epoch FROM now()) * 1000)::bigint
		WHERE transfer_id = $3 AND state = $4
	`

	tag, err := s.pool.Exec(ctx, query, string(to), reason, transferID, string(from))
	if err != nil {
		return fmt.Errorf("update transfer state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a lost compare-and-set.
		if _, getErr := s.GetByID(ctx, transferID); getErr != nil {
			return getErr
		}
		return storage.ErrStateConflict
	}
	return nil
}

// ListByState retrieves all transfers in the given state, ordered by
// created_at ASC.
func (s *TransferStore) ListByState(ctx context.Context, state domain.TransferState) ([]*domain.BridgeTransfer, error) {
	query := `
		SELECT transfer_id, amount, source_chain, dest_chain, state, failure_reason, created_at, updated_at
		FROM bridge_transfers
		WHERE state = $1
		ORDER BY created_at ASC, transfer_id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(state))
	if err != nil {
		return nil, fmt.Errorf("list transfers by state: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// ListInFlight retrieves all transfers in PENDING, LOCKED or PROOF_GENERATED
// state, ordered by created_at ASC.
func (s *TransferStore) ListInFlight(ctx context.Context) ([]*domain.BridgeTransfer, error) {
	query := `
		SELECT transfer_id, amount, source_chain, dest_chain, state, failure_reason, created_at, updated_at
		FROM bridge_transfers
		WHERE state = ANY($1)
		ORDER BY created_at ASC, transfer_id ASC
	`

	states := []string{
		string(domain.TransferPending),
		string(domain.TransferLocked),
		string(domain.TransferProofGenerated),
	}

	rows, err := s.pool.Query(ctx, query, states)
	if err != nil {
		return nil, fmt.Errorf("list in-flight transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

func scanTransfer(row pgx.Row) (*domain.BridgeTransfer, error) {
	var (
		t      domain.BridgeTransfer
		amount string
		source string
		dest   string
		state  string
	)
	if err := row.Scan(&t.TransferID, &amount, &source, &dest, &state, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	t.Amount = parsed
	t.SourceChain = domain.Chain(source)
	t.DestChain = domain.Chain(dest)
	t.State = domain.TransferState(state)
	return &t, nil
}

func scanTransfers(rows pgx.Rows) ([]*domain.BridgeTransfer, error) {
	var result []*domain.BridgeTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return result, nil
}
