// Package orchestrator runs the agent's periodic cycle.
// It coordinates: balance monitoring → yield scanning → fund routing.
package orchestrator

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"treasury-agent/internal/bridge"
	"treasury-agent/internal/domain"
	"treasury-agent/internal/monitor"
	"treasury-agent/internal/observability"
	"treasury-agent/internal/yield"
)

// Defaults for the periodic cycle.
var (
	DefaultInterval       = 60 * time.Second
	DefaultTransferAmount = decimal.RequireFromString("100")
)

// atomicPerCoin converts atomic units to whole coins for logging.
var atomicPerCoin = new(big.Float).SetFloat64(1e18)

// Orchestrator drives the monitor, optimizer, and router once per interval.
type Orchestrator struct {
	monitor   *monitor.Monitor
	simulator *monitor.Simulator
	optimizer *yield.Optimizer
	router    *bridge.Router
	log       *logrus.Entry
	metrics   *observability.Metrics

	interval time.Duration
	amount   decimal.Decimal
}

// Options for creating an Orchestrator. Monitor, Optimizer, Router, and
// Logger are required; Simulator and Metrics are optional.
type Options struct {
	Monitor   *monitor.Monitor
	Simulator *monitor.Simulator
	Optimizer *yield.Optimizer
	Router    *bridge.Router
	Logger    *logrus.Logger
	Metrics   *observability.Metrics

	// Interval between cycles. Zero means DefaultInterval.
	Interval time.Duration
	// TransferAmount routed when a better pool sits on another chain. Zero
	// means DefaultTransferAmount.
	TransferAmount decimal.Decimal
}

// New creates an orchestrator from the options.
func New(opts Options) *Orchestrator {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	amount := opts.TransferAmount
	if amount.IsZero() {
		amount = DefaultTransferAmount
	}
	return &Orchestrator{
		monitor:   opts.Monitor,
		simulator: opts.Simulator,
		optimizer: opts.Optimizer,
		router:    opts.Router,
		log:       opts.Logger.WithField("component", "orchestrator"),
		metrics:   opts.Metrics,
		interval:  interval,
		amount:    amount,
	}
}

// CycleResult records what one cycle observed and did.
type CycleResult struct {
	Health   monitor.Health
	Balance  *big.Int
	BestPool *domain.PoolCandidate
	Transfer *domain.BridgeTransfer
}

// RunCycle executes one monitor → optimize → route pass. A critical balance
// aborts the cycle before the optimizer runs; funds are only routed when the
// best pool sits on a chain other than the account's home chain.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleResult, error) {
	o.metrics.RecordCycle()
	result := &CycleResult{Health: monitor.HealthHealthy}

	balance, err := o.monitor.Balance(ctx)
	if err != nil {
		return result, err
	}
	result.Balance = balance
	o.metrics.RecordBalance(atomicToFloat(balance))
	o.log.WithFields(logrus.Fields{
		"balance_atomic": balance.String(),
		"balance_coin":   formatCoin(balance),
	}).Info("account balance")

	below, err := o.monitor.CheckThreshold(ctx)
	if err != nil {
		var critical *domain.CriticalBalanceError
		if errors.As(err, &critical) {
			result.Health = monitor.HealthCritical
		}
		return result, err
	}
	if below {
		result.Health = monitor.HealthWarning
	}

	best, err := o.optimizer.BestPool(ctx)
	if err != nil {
		return result, err
	}
	result.BestPool = &best
	o.metrics.RecordBestPool(best.Score())

	if best.APYOrZero() <= 0 || best.TVL <= 0 {
		o.log.WithField("protocol", best.Protocol).Info("best pool not worth routing into")
		o.metrics.RecordCycleSuccess()
		return result, nil
	}
	home := o.monitor.Account().HomeChain
	if domain.Chain(best.Chain) == home {
		o.log.WithFields(logrus.Fields{
			"protocol": best.Protocol,
			"chain":    best.Chain,
		}).Info("best pool is on the home chain, nothing to route")
		o.metrics.RecordCycleSuccess()
		return result, nil
	}

	// Pre-flight: make sure a deposit transaction would go through before
	// committing to the bridge.
	if o.simulator != nil {
		gas, err := o.simulator.Simulate(ctx, domain.Transaction{
			To:    o.monitor.Account().Address,
			Value: big.NewInt(0),
		})
		if err != nil {
			return result, err
		}
		o.log.WithField("gas", gas).Debug("deposit simulation passed")
	}

	transfer, err := o.router.RouteFunds(ctx, domain.TransferRequest{
		Amount:      o.amount,
		SourceChain: home,
		DestChain:   domain.Chain(best.Chain),
	})
	result.Transfer = transfer
	if err != nil {
		return result, err
	}

	o.metrics.RecordCycleSuccess()
	return result, nil
}

// Run loops RunCycle every interval until the context is cancelled. Cycle
// errors are logged by class and never stop the loop.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.WithField("interval", o.interval).Info("agent started")

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		if _, err := o.RunCycle(ctx); err != nil {
			o.logCycleError(err)
		}
		select {
		case <-ctx.Done():
			o.log.Info("agent stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// logCycleError routes cycle failures to the right log level. Transient
// faults are expected and retried next cycle; resource faults need operator
// action; validation faults indicate a configuration bug.
func (o *Orchestrator) logCycleError(err error) {
	class, ok := domain.ClassOf(err)
	if !ok {
		o.metrics.RecordCycleError("unknown")
		o.log.WithError(err).Error("cycle failed")
		return
	}
	o.metrics.RecordCycleError(class.String())

	entry := o.log.WithError(err).WithField("class", class.String())
	switch class {
	case domain.ClassTransient:
		entry.Warn("cycle failed, retrying next interval")
	case domain.ClassResource:
		entry.Error("cycle failed, operator action required")
	default:
		entry.Error("cycle failed, configuration problem")
	}
}

func atomicToFloat(atomic *big.Int) float64 {
	f, _ := new(big.Float).SetInt(atomic).Float64()
	return f
}

// formatCoin renders an atomic amount in whole coins for humans.
func formatCoin(atomic *big.Int) string {
	coins := new(big.Float).Quo(new(big.Float).SetInt(atomic), atomicPerCoin)
	return coins.Text('f', 6)
}
