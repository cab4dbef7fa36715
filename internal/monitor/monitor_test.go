package monitor

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/sirupsen/logrus"

	"treasury-agent/internal/domain"
	"treasury-agent/internal/ledger/stub"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testAccount() domain.Account {
	return domain.Account{HomeChain: domain.ChainEthereum}
}

func TestSetMinBalance_DerivesCritical(t *testing.T) {
	m := New(testAccount(), stub.NewClient(), nil, testLogger())

	m.SetMinBalance(big.NewInt(1000))
	min, critical := m.Thresholds()
	if min.Int64() != 1000 || critical.Int64() != 500 {
		t.Errorf("got (min=%s, critical=%s), want (1000, 500)", min, critical)
	}

	// Integer division: odd minimums round the critical threshold down.
	m.SetMinBalance(big.NewInt(3))
	min, critical = m.Thresholds()
	if min.Int64() != 3 || critical.Int64() != 1 {
		t.Errorf("got (min=%s, critical=%s), want (3, 1)", min, critical)
	}
}

func TestNew_DefaultThresholds(t *testing.T) {
	m := New(testAccount(), stub.NewClient(), nil, testLogger())

	min, critical := m.Thresholds()
	if min.Cmp(DefaultMinBalance) != 0 {
		t.Errorf("min = %s, want %s", min, DefaultMinBalance)
	}
	half := new(big.Int).Div(DefaultMinBalance, big.NewInt(2))
	if critical.Cmp(half) != 0 {
		t.Errorf("critical = %s, want %s", critical, half)
	}
}

func TestCheckThreshold_StateMachine(t *testing.T) {
	cases := []struct {
		name         string
		balance      int64
		wantBelow    bool
		wantCritical bool
	}{
		{"well above minimum", 2000, false, false},
		{"exactly at minimum", 1000, false, false},
		{"between critical and minimum", 999, true, false},
		{"just above critical", 501, true, false},
		{"exactly at critical", 500, false, true},
		{"below critical", 100, false, true},
		{"zero balance", 0, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := stub.NewClient()
			client.Balance = big.NewInt(tc.balance)

			m := New(testAccount(), client, big.NewInt(1000), testLogger())
			below, err := m.CheckThreshold(context.Background())

			if tc.wantCritical {
				var critical *domain.CriticalBalanceError
				if !errors.As(err, &critical) {
					t.Fatalf("expected CriticalBalanceError, got %v", err)
				}
				if critical.Current.Int64() != tc.balance {
					t.Errorf("Current = %s, want %d", critical.Current, tc.balance)
				}
				if critical.Minimum.Int64() != 500 {
					t.Errorf("Minimum = %s, want 500", critical.Minimum)
				}
				if class, ok := domain.ClassOf(err); !ok || class != domain.ClassResource {
					t.Errorf("expected resource class, got %v", class)
				}
				return
			}

			if err != nil {
				t.Fatalf("CheckThreshold failed: %v", err)
			}
			if below != tc.wantBelow {
				t.Errorf("below = %v, want %v", below, tc.wantBelow)
			}
		})
	}
}

func TestBalance_ProviderError(t *testing.T) {
	client := stub.NewClient()
	client.BalanceErr = errors.New("connection refused")

	m := New(testAccount(), client, nil, testLogger())
	_, err := m.Balance(context.Background())

	var provider *domain.ProviderError
	if !errors.As(err, &provider) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if class, ok := domain.ClassOf(err); !ok || class != domain.ClassTransient {
		t.Errorf("expected transient class, got %v", class)
	}
}

func TestEvaluate_HealthStates(t *testing.T) {
	cases := []struct {
		balance int64
		want    Health
	}{
		{2000, HealthHealthy},
		{700, HealthWarning},
		{400, HealthCritical},
	}

	for _, tc := range cases {
		client := stub.NewClient()
		client.Balance = big.NewInt(tc.balance)

		m := New(testAccount(), client, big.NewInt(1000), testLogger())
		health, err := m.Evaluate(context.Background())
		if health != tc.want {
			t.Errorf("balance %d: health = %s, want %s", tc.balance, health, tc.want)
		}
		if (err != nil) != (tc.want == HealthCritical) {
			t.Errorf("balance %d: unexpected error state: %v", tc.balance, err)
		}
	}
}
