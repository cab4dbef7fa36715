package bridge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"treasury-agent/internal/domain"
	"treasury-agent/internal/observability"
	"treasury-agent/internal/storage"
)

// Corridor defaults, denominated in transfer units.
var (
	DefaultMinAmount         = decimal.RequireFromString("0.1")
	DefaultCorridorLiquidity = decimal.RequireFromString("1000")
)

// Options configures a Router. Registry, Protocol, Store, and Logger are
// required; the rest have defaults.
type Options struct {
	Registry *domain.Registry
	Protocol Protocol
	Store    storage.TransferStore
	Logger   *logrus.Logger

	// MinAmount is the smallest routable transfer. Zero means DefaultMinAmount.
	MinAmount decimal.Decimal
	// CorridorLiquidity caps a single transfer. Zero means
	// DefaultCorridorLiquidity.
	CorridorLiquidity decimal.Decimal
	// Metrics is optional.
	Metrics *observability.Metrics
}

// Router validates transfer requests and drives them through the bridge
// protocol, persisting each transition.
type Router struct {
	registry  *domain.Registry
	protocol  Protocol
	store     storage.TransferStore
	log       *logrus.Entry
	metrics   *observability.Metrics
	minAmount decimal.Decimal
	liquidity decimal.Decimal
}

// NewRouter creates a router from the options.
func NewRouter(opts Options) *Router {
	minAmount := opts.MinAmount
	if minAmount.IsZero() {
		minAmount = DefaultMinAmount
	}
	liquidity := opts.CorridorLiquidity
	if liquidity.IsZero() {
		liquidity = DefaultCorridorLiquidity
	}
	return &Router{
		registry:  opts.Registry,
		protocol:  opts.Protocol,
		store:     opts.Store,
		log:       opts.Logger.WithField("component", "bridge"),
		metrics:   opts.Metrics,
		minAmount: minAmount,
		liquidity: liquidity,
	}
}

// validate checks the request against the registry and corridor limits.
// Validation failures never create a transfer record.
func (r *Router) validate(req domain.TransferRequest) error {
	if !r.registry.Supported(req.SourceChain) {
		return &domain.InvalidChainError{Chain: req.SourceChain, Supported: r.registry.List()}
	}
	if !r.registry.Supported(req.DestChain) {
		return &domain.InvalidChainError{Chain: req.DestChain, Supported: r.registry.List()}
	}
	if req.SourceChain == req.DestChain {
		return &domain.SameChainError{Chain: req.SourceChain}
	}
	if req.Amount.LessThan(r.minAmount) {
		return &domain.AmountTooLowError{Amount: req.Amount, Minimum: r.minAmount}
	}
	if req.Amount.GreaterThan(r.liquidity) {
		return &domain.InsufficientLiquidityError{Required: req.Amount, Available: r.liquidity}
	}
	return nil
}

// RouteFunds validates the request and runs the lock, prove, and release
// phases in order. The returned transfer carries the final persisted state;
// on a phase failure it is returned alongside the error so callers can see
// where the transfer stopped.
func (r *Router) RouteFunds(ctx context.Context, req domain.TransferRequest) (*domain.BridgeTransfer, error) {
	if err := r.validate(req); err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UnixMilli()
	transfer := &domain.BridgeTransfer{
		TransferID:  id,
		Amount:      req.Amount,
		SourceChain: req.SourceChain,
		DestChain:   req.DestChain,
		State:       domain.TransferPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.Insert(ctx, transfer); err != nil {
		return nil, err
	}

	log := r.log.WithFields(logrus.Fields{
		"transfer_id": id,
		"amount":      req.Amount.String(),
		"source":      req.SourceChain,
		"dest":        req.DestChain,
	})
	log.Info("routing transfer")

	phases := []struct {
		phase domain.BridgePhase
		run   func(context.Context, domain.BridgeTransfer) error
		next  domain.TransferState
	}{
		{domain.PhaseLock, r.protocol.Lock, domain.TransferLocked},
		{domain.PhaseProve, r.protocol.Prove, domain.TransferProofGenerated},
		{domain.PhaseRelease, r.protocol.Release, domain.TransferReleased},
	}

	for _, p := range phases {
		started := time.Now()
		err := p.run(ctx, *transfer)
		r.metrics.ObservePhase(string(p.phase), time.Since(started))

		if err != nil {
			bridgeErr := &domain.BridgeError{Phase: p.phase, TransferID: id, Err: err}
			failState := domain.TransferFailed
			if transfer.State != domain.TransferPending {
				// Funds are locked on the source chain. The transfer parks in
				// FAILED_AFTER_LOCK until an operator unlocks it.
				failState = domain.TransferFailedAfterLock
			}
			if storeErr := r.store.UpdateState(ctx, id, transfer.State, failState, bridgeErr.Error()); storeErr != nil {
				log.WithError(storeErr).Error("failed to persist failure state")
			}
			transfer.State = failState
			transfer.FailureReason = bridgeErr.Error()
			r.metrics.RecordTransfer(string(failState))
			log.WithError(err).WithField("phase", p.phase).Error("bridge phase failed")
			return transfer, bridgeErr
		}

		if err := r.store.UpdateState(ctx, id, transfer.State, p.next, ""); err != nil {
			return transfer, err
		}
		transfer.State = p.next
		log.WithField("state", p.next).Debug("transfer advanced")
	}

	r.metrics.RecordTransfer(string(domain.TransferReleased))
	log.Info("transfer released")
	return transfer, nil
}

// Unlock returns a FAILED_AFTER_LOCK transfer's funds on the source chain
// and moves it to UNLOCKED. Any other current state yields ErrStateConflict.
func (r *Router) Unlock(ctx context.Context, transferID string) error {
	err := r.store.UpdateState(ctx, transferID, domain.TransferFailedAfterLock, domain.TransferUnlocked, "")
	if err != nil {
		return err
	}
	r.metrics.RecordTransfer(string(domain.TransferUnlocked))
	r.log.WithField("transfer_id", transferID).Info("transfer unlocked")
	return nil
}

// RecoverInFlight reconciles transfers left mid-protocol by a previous
// process. Transfers that never locked are failed outright; transfers at or
// past the lock park in FAILED_AFTER_LOCK for an explicit unlock. Returns
// the number of transfers reconciled.
func (r *Router) RecoverInFlight(ctx context.Context) (int, error) {
	inFlight, err := r.store.ListInFlight(ctx)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, t := range inFlight {
		target := domain.TransferFailedAfterLock
		reason := "process restarted with funds locked"
		if t.State == domain.TransferPending {
			target = domain.TransferFailed
			reason = "process restarted before lock"
		}
		if err := r.store.UpdateState(ctx, t.TransferID, t.State, target, reason); err != nil {
			r.log.WithError(err).WithField("transfer_id", t.TransferID).Error("failed to recover transfer")
			continue
		}
		r.metrics.RecordTransfer(string(target))
		r.log.WithFields(logrus.Fields{
			"transfer_id": t.TransferID,
			"from":        t.State,
			"to":          target,
		}).Warn("recovered in-flight transfer")
		recovered++
	}
	return recovered, nil
}
