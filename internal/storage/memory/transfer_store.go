// Package memory provides in-memory store implementations. They back tests
// and runs without a configured database; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"treasury-agent/internal/domain"
	"treasury-agent/internal/storage"
)

// TransferStore is an in-memory implementation of storage.TransferStore.
type TransferStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BridgeTransfer // keyed by transfer_id
}

// NewTransferStore creates a new in-memory transfer store.
func NewTransferStore() *TransferStore {
	return &TransferStore{
		data: make(map[string]*domain.BridgeTransfer),
	}
}

// Compile-time interface check.
var _ storage.TransferStore = (*TransferStore)(nil)

// Insert adds a new transfer. Returns ErrDuplicateKey if transfer_id exists.
func (s *TransferStore) Insert(_ context.Context, t *domain.BridgeTransfer) error {
	if t == nil || t.TransferID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TransferID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	transferCopy := *t
	s.data[t.TransferID] = &transferCopy
	return nil
}

// GetByID retrieves a transfer by its ID. Returns ErrNotFound if not exists.
func (s *TransferStore) GetByID(_ context.Context, transferID string) (*domain.BridgeTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[transferID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	transferCopy := *t
	return &transferCopy, nil
}

// UpdateState transitions a transfer with compare-and-set semantics.
func (s *TransferStore) UpdateState(_ context.Context, transferID string, from, to domain.TransferState, reason string) error {
	if transferID == "" {
		return storage.ErrInvalidInput
	}
	if !from.CanTransitionTo(to) {
		return storage.ErrStateConflict
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[transferID]
	if !exists {
		return storage.ErrNotFound
	}
	if t.State != from {
		return storage.ErrStateConflict
	}

	t.State = to
	if reason != "" {
		t.FailureReason = reason
	}
	t.UpdatedAt = time.Now().UnixMilli()
	return nil
}

// ListByState retrieves all transfers in the given state, ordered by
// created_at ASC.
func (s *TransferStore) ListByState(_ context.Context, state domain.TransferState) ([]*domain.BridgeTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BridgeTransfer
	for _, t := range s.data {
		if t.State == state {
			transferCopy := *t
			result = append(result, &transferCopy)
		}
	}

	sortByCreatedAt(result)
	return result, nil
}

// ListInFlight retrieves all transfers still holding (or possibly holding)
// funds, ordered by created_at ASC.
func (s *TransferStore) ListInFlight(_ context.Context) ([]*domain.BridgeTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BridgeTransfer
	for _, t := range s.data {
		if t.State.InFlight() {
			transferCopy := *t
			result = append(result, &transferCopy)
		}
	}

	sortByCreatedAt(result)
	return result, nil
}

func sortByCreatedAt(transfers []*domain.BridgeTransfer) {
	sort.Slice(transfers, func(i, j int) bool {
		if transfers[i].CreatedAt != transfers[j].CreatedAt {
			return transfers[i].CreatedAt < transfers[j].CreatedAt
		}
		return transfers[i].TransferID < transfers[j].TransferID
	})
}
