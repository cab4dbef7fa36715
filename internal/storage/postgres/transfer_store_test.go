package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury-agent/internal/domain"
	"treasury-agent/internal/storage"
)

func testTransfer(id string, state domain.TransferState, createdAt int64) *domain.BridgeTransfer {
	return &domain.BridgeTransfer{
		TransferID:  id,
		Amount:      decimal.RequireFromString("100.5"),
		SourceChain: domain.ChainEthereum,
		DestChain:   domain.ChainArbitrum,
		State:       state,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestTransferStore_InsertAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferStore(pool)
	ctx := context.Background()

	tr := testTransfer("tr-1", domain.TransferPending, 1704067200000)
	require.NoError(t, store.Insert(ctx, tr))

	got, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, "tr-1", got.TransferID)
	assert.Equal(t, domain.TransferPending, got.State)
	assert.Equal(t, domain.ChainEthereum, got.SourceChain)
	assert.Equal(t, domain.ChainArbitrum, got.DestChain)
	assert.True(t, got.Amount.Equal(tr.Amount), "amount round-trip: got %s", got.Amount)

	// Duplicate inserts are rejected.
	assert.ErrorIs(t, store.Insert(ctx, tr), storage.ErrDuplicateKey)

	// Missing rows map to ErrNotFound.
	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransferStore_StateMachine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTransfer("tr-1", domain.TransferPending, 1)))

	// Happy path transitions.
	require.NoError(t, store.UpdateState(ctx, "tr-1", domain.TransferPending, domain.TransferLocked, ""))
	require.NoError(t, store.UpdateState(ctx, "tr-1", domain.TransferLocked, domain.TransferProofGenerated, ""))
	require.NoError(t, store.UpdateState(ctx, "tr-1", domain.TransferProofGenerated, domain.TransferReleased, ""))

	got, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransferReleased, got.State)
	assert.GreaterOrEqual(t, got.UpdatedAt, got.CreatedAt)

	// A stale compare-and-set loses.
	err = store.UpdateState(ctx, "tr-1", domain.TransferProofGenerated, domain.TransferReleased, "")
	assert.ErrorIs(t, err, storage.ErrStateConflict)

	// Illegal transitions are rejected before touching the database.
	err = store.UpdateState(ctx, "tr-1", domain.TransferReleased, domain.TransferPending, "")
	assert.ErrorIs(t, err, storage.ErrStateConflict)

	// Unknown transfers surface ErrNotFound.
	err = store.UpdateState(ctx, "missing", domain.TransferPending, domain.TransferLocked, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransferStore_FailureReasonAndListing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTransfer("tr-1", domain.TransferLocked, 2)))
	require.NoError(t, store.Insert(ctx, testTransfer("tr-2", domain.TransferPending, 1)))
	require.NoError(t, store.Insert(ctx, testTransfer("tr-3", domain.TransferReleased, 3)))

	require.NoError(t, store.UpdateState(ctx, "tr-1", domain.TransferLocked, domain.TransferFailedAfterLock, "release timed out"))

	got, err := store.GetByID(ctx, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransferFailedAfterLock, got.State)
	assert.Equal(t, "release timed out", got.FailureReason)

	failed, err := store.ListByState(ctx, domain.TransferFailedAfterLock)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "tr-1", failed[0].TransferID)

	inFlight, err := store.ListInFlight(ctx)
	require.NoError(t, err)
	require.Len(t, inFlight, 1)
	assert.Equal(t, "tr-2", inFlight[0].TransferID)
}
