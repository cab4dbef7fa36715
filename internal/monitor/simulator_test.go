package monitor

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"treasury-agent/internal/domain"
	"treasury-agent/internal/ledger/stub"
)

func TestSimulate_ReturnsGasEstimate(t *testing.T) {
	client := stub.NewClient()
	client.Balance = big.NewInt(1_000_000)
	client.GasEstimate = 21_000

	m := New(testAccount(), client, nil, testLogger())
	sim := NewSimulator(m, client, testLogger())

	gas, err := sim.Simulate(context.Background(), domain.Transaction{Value: big.NewInt(500)})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if gas != 21_000 {
		t.Errorf("gas = %d, want 21000", gas)
	}
}

func TestSimulate_InsufficientBalance(t *testing.T) {
	client := stub.NewClient()
	client.Balance = big.NewInt(100)

	m := New(testAccount(), client, nil, testLogger())
	sim := NewSimulator(m, client, testLogger())

	_, err := sim.Simulate(context.Background(), domain.Transaction{Value: big.NewInt(500)})

	var insufficient *domain.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Required.Int64() != 500 || insufficient.Available.Int64() != 100 {
		t.Errorf("got (required=%s, available=%s), want (500, 100)",
			insufficient.Required, insufficient.Available)
	}
}

func TestSimulate_GasEstimationFailure(t *testing.T) {
	client := stub.NewClient()
	client.EstimateErr = errors.New("execution reverted")

	m := New(testAccount(), client, nil, testLogger())
	sim := NewSimulator(m, client, testLogger())

	_, err := sim.Simulate(context.Background(), domain.Transaction{Value: big.NewInt(1)})

	var gasErr *domain.GasEstimationError
	if !errors.As(err, &gasErr) {
		t.Fatalf("expected GasEstimationError, got %v", err)
	}
	if class, ok := domain.ClassOf(err); !ok || class != domain.ClassTransient {
		t.Errorf("expected transient class, got %v", class)
	}
}

func TestExecute_ChecksTotalRequired(t *testing.T) {
	client := stub.NewClient()
	client.GasEstimate = 100
	client.GasPrice = big.NewInt(10)

	// Value alone fits, value plus the 1000 fee does not.
	client.Balance = big.NewInt(1500)
	m := New(testAccount(), client, nil, testLogger())
	sim := NewSimulator(m, client, testLogger())

	err := sim.Execute(context.Background(), domain.Transaction{Value: big.NewInt(900)})

	var insufficient *domain.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Required.Int64() != 1900 {
		t.Errorf("Required = %s, want 1900 (value + fee)", insufficient.Required)
	}
}

func TestExecute_Success(t *testing.T) {
	client := stub.NewClient()
	client.Balance = big.NewInt(2000)
	client.GasEstimate = 100
	client.GasPrice = big.NewInt(10)

	m := New(testAccount(), client, nil, testLogger())
	sim := NewSimulator(m, client, testLogger())

	if err := sim.Execute(context.Background(), domain.Transaction{Value: big.NewInt(900)}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

func TestExecute_GasPriceFailure(t *testing.T) {
	client := stub.NewClient()
	client.Balance = big.NewInt(2000)
	client.GasPriceErr = errors.New("rpc timeout")

	m := New(testAccount(), client, nil, testLogger())
	sim := NewSimulator(m, client, testLogger())

	err := sim.Execute(context.Background(), domain.Transaction{Value: big.NewInt(1)})

	var provider *domain.ProviderError
	if !errors.As(err, &provider) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}
