// Package monitor implements balance monitoring against configurable
// thresholds and pre-flight transaction simulation for the managed account.
package monitor

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/sirupsen/logrus"

	"treasury-agent/internal/domain"
	"treasury-agent/internal/ledger"
)

// DefaultMinBalance is 0.001 coin in atomic units.
var DefaultMinBalance = new(big.Int).SetUint64(1_000_000_000_000_000)

// Health is the balance state derived from the two thresholds.
type Health string

// Balance health states. Critical is a hard signal that aborts the rest of
// the cycle.
const (
	HealthHealthy  Health = "HEALTHY"
	HealthWarning  Health = "WARNING"
	HealthCritical Health = "CRITICAL"
)

// Monitor owns the account's balance query and threshold evaluation. The
// threshold pair is the only shared mutable state in the agent; SetMinBalance
// is the single mutator and updates both values under one lock, preserving
// critical == min/2.
type Monitor struct {
	account domain.Account
	client  ledger.Client
	log     *logrus.Entry

	mu              sync.Mutex
	minBalance      *big.Int
	criticalBalance *big.Int
}

// New creates a monitor for the account. A nil minBalance falls back to
// DefaultMinBalance.
func New(account domain.Account, client ledger.Client, minBalance *big.Int, log *logrus.Logger) *Monitor {
	if minBalance == nil {
		minBalance = DefaultMinBalance
	}
	m := &Monitor{
		account: account,
		client:  client,
		log:     log.WithField("component", "monitor"),
	}
	m.SetMinBalance(minBalance)
	return m
}

// Account returns the monitored account.
func (m *Monitor) Account() domain.Account {
	return m.account
}

// SetMinBalance updates the minimum balance threshold and derives the
// critical threshold as min/2 (integer division). Both values change under
// one lock so readers never observe a torn pair.
func (m *Monitor) SetMinBalance(min *big.Int) {
	critical := new(big.Int).Div(min, big.NewInt(2))

	m.mu.Lock()
	m.minBalance = new(big.Int).Set(min)
	m.criticalBalance = critical
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"min_balance":      min.String(),
		"critical_balance": critical.String(),
	}).Info("updated balance thresholds")
}

// Thresholds returns copies of the current (min, critical) pair.
func (m *Monitor) Thresholds() (*big.Int, *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.minBalance), new(big.Int).Set(m.criticalBalance)
}

// Balance reads the account balance from the ledger. Query failures surface
// as a transient ProviderError.
func (m *Monitor) Balance(ctx context.Context) (*big.Int, error) {
	balance, err := m.client.BalanceAt(ctx, m.account.Address)
	if err != nil {
		return nil, &domain.ProviderError{Op: "fetch balance", Err: err}
	}
	return balance, nil
}

// CheckThreshold reads the balance and evaluates it against the thresholds.
// It fails with CriticalBalanceError when balance <= critical; otherwise it
// returns true when the balance is below the minimum and false when it is
// sufficient.
func (m *Monitor) CheckThreshold(ctx context.Context) (bool, error) {
	balance, err := m.Balance(ctx)
	if err != nil {
		return false, err
	}

	min, critical := m.Thresholds()

	if balance.Cmp(critical) <= 0 {
		m.log.WithFields(logrus.Fields{
			"balance":          balance.String(),
			"critical_balance": critical.String(),
		}).Error("balance at or below critical threshold")
		return false, &domain.CriticalBalanceError{Current: balance, Minimum: critical}
	}

	if balance.Cmp(min) < 0 {
		m.log.WithFields(logrus.Fields{
			"balance":     balance.String(),
			"min_balance": min.String(),
		}).Warn("balance below minimum threshold, consider funding the account")
		return true, nil
	}

	m.log.WithFields(logrus.Fields{
		"balance":     balance.String(),
		"min_balance": min.String(),
	}).Debug("balance is sufficient")
	return false, nil
}

// Evaluate maps the current balance onto the health state machine. A
// Critical result carries the CriticalBalanceError alongside it; a failed
// balance read returns an empty state.
func (m *Monitor) Evaluate(ctx context.Context) (Health, error) {
	below, err := m.CheckThreshold(ctx)
	if err != nil {
		var critical *domain.CriticalBalanceError
		if errors.As(err, &critical) {
			return HealthCritical, err
		}
		return "", err
	}
	if below {
		return HealthWarning, nil
	}
	return HealthHealthy, nil
}
