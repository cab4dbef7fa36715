// Package bridge routes funds between chains through a three-phase
// lock/prove/release protocol, persisting every state transition so that a
// crash mid-transfer never loses track of locked funds.
package bridge

import (
	"context"
	"time"

	"treasury-agent/internal/domain"
)

// Protocol performs the three bridge legs. The simulated implementation
// below stands in for a real bridge; the router is written against this
// interface so swapping in a real protocol touches nothing else.
type Protocol interface {
	// Lock escrows the amount on the source chain.
	Lock(ctx context.Context, t domain.BridgeTransfer) error
	// Prove generates the proof of the source-chain lock.
	Prove(ctx context.Context, t domain.BridgeTransfer) error
	// Release mints or releases the amount on the destination chain.
	Release(ctx context.Context, t domain.BridgeTransfer) error
}

// DefaultPhaseDelay approximates the latency of one bridge leg.
const DefaultPhaseDelay = time.Second

// SimulatedProtocol models each leg as a fixed delay. No funds move.
type SimulatedProtocol struct {
	// PhaseDelay is how long each leg takes. Zero means DefaultPhaseDelay;
	// tests set it to a small value.
	PhaseDelay time.Duration
}

func (p *SimulatedProtocol) delay() time.Duration {
	if p.PhaseDelay > 0 {
		return p.PhaseDelay
	}
	return DefaultPhaseDelay
}

// wait blocks for the phase delay, cutting out early on context cancel.
func (p *SimulatedProtocol) wait(ctx context.Context) error {
	timer := time.NewTimer(p.delay())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *SimulatedProtocol) Lock(ctx context.Context, _ domain.BridgeTransfer) error {
	return p.wait(ctx)
}

func (p *SimulatedProtocol) Prove(ctx context.Context, _ domain.BridgeTransfer) error {
	return p.wait(ctx)
}

func (p *SimulatedProtocol) Release(ctx context.Context, _ domain.BridgeTransfer) error {
	return p.wait(ctx)
}

var _ Protocol = (*SimulatedProtocol)(nil)
