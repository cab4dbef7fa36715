package monitor

import (
	"context"
	"math/big"

	"github.com/sirupsen/logrus"

	"treasury-agent/internal/domain"
	"treasury-agent/internal/ledger"
)

// Simulator runs pre-flight checks for transactions before anything would be
// signed. Execution is stubbed: it validates cost and sufficiency, then
// reports success without touching ledger state.
type Simulator struct {
	monitor *Monitor
	client  ledger.Client
	log     *logrus.Entry
}

// NewSimulator creates a simulator sharing the monitor's account and ledger.
func NewSimulator(m *Monitor, client ledger.Client, log *logrus.Logger) *Simulator {
	return &Simulator{
		monitor: m,
		client:  client,
		log:     log.WithField("component", "simulator"),
	}
}

// Simulate checks that the balance covers the transaction value and returns
// the estimated gas units. It fails with InsufficientBalanceError when
// balance < value and with GasEstimationError when the fee-estimation query
// errors.
func (s *Simulator) Simulate(ctx context.Context, tx domain.Transaction) (uint64, error) {
	balance, err := s.monitor.Balance(ctx)
	if err != nil {
		return 0, err
	}

	if balance.Cmp(tx.Value) < 0 {
		return 0, &domain.InsufficientBalanceError{
			Required:  new(big.Int).Set(tx.Value),
			Available: balance,
		}
	}

	gas, err := s.client.EstimateGas(ctx, ledger.Call{
		From:  s.monitor.Account().Address,
		To:    tx.To,
		Value: tx.Value,
		Data:  tx.Data,
	})
	if err != nil {
		return 0, &domain.GasEstimationError{Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"to":  tx.To.Hex(),
		"gas": gas,
	}).Debug("transaction simulation succeeded")
	return gas, nil
}

// Execute re-simulates the transaction, prices the gas estimate and verifies
// the balance covers value plus the estimated fee. No signing or
// broadcasting happens; a successful return only means the transfer would
// have been affordable.
func (s *Simulator) Execute(ctx context.Context, tx domain.Transaction) error {
	gas, err := s.Simulate(ctx, tx)
	if err != nil {
		return err
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return &domain.ProviderError{Op: "fetch gas price", Err: err}
	}

	fee := new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice)
	totalRequired := new(big.Int).Add(tx.Value, fee)

	balance, err := s.monitor.Balance(ctx)
	if err != nil {
		return err
	}
	if balance.Cmp(totalRequired) < 0 {
		return &domain.InsufficientBalanceError{
			Required:  totalRequired,
			Available: balance,
		}
	}

	s.log.WithFields(logrus.Fields{
		"to":             tx.To.Hex(),
		"value":          tx.Value.String(),
		"estimated_fee":  fee.String(),
		"total_required": totalRequired.String(),
	}).Info("transaction executed (simulated, nothing broadcast)")
	return nil
}
