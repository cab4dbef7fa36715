// Package main routes a single transfer through the simulated bridge, or
// unlocks a transfer stuck in FAILED_AFTER_LOCK.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"treasury-agent/internal/bridge"
	"treasury-agent/internal/domain"
	"treasury-agent/internal/storage"
	"treasury-agent/internal/storage/memory"
	"treasury-agent/internal/storage/migrations"
	pgstore "treasury-agent/internal/storage/postgres"
	"treasury-agent/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	amount := flag.String("amount", "100", "Transfer amount")
	from := flag.String("from", "Ethereum", "Source chain")
	to := flag.String("to", "Arbitrum", "Destination chain")
	dsn := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (empty: in-memory)")
	unlock := flag.String("unlock", "", "Unlock the given transfer ID instead of routing")
	phaseDelay := flag.Duration("phase-delay", bridge.DefaultPhaseDelay, "Simulated bridge phase delay")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel})

	if err := run(*amount, *from, *to, *dsn, *unlock, *phaseDelay, log); err != nil {
		fmt.Fprintf(os.Stderr, "routefunds: %v\n", err)
		os.Exit(1)
	}
}

func run(amount, from, to, dsn, unlock string, phaseDelay time.Duration, log *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, cleanup, err := openStore(ctx, dsn, log)
	if err != nil {
		return err
	}
	defer cleanup()

	router := bridge.NewRouter(bridge.Options{
		Registry: domain.DefaultRegistry(),
		Protocol: &bridge.SimulatedProtocol{PhaseDelay: phaseDelay},
		Store:    store,
		Logger:   log,
	})

	if unlock != "" {
		if err := router.Unlock(ctx, unlock); err != nil {
			return err
		}
		fmt.Printf("Transfer %s unlocked\n", unlock)
		return nil
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", amount, err)
	}

	transfer, err := router.RouteFunds(ctx, domain.TransferRequest{
		Amount:      value,
		SourceChain: domain.Chain(from),
		DestChain:   domain.Chain(to),
	})
	if err != nil {
		if transfer != nil {
			fmt.Fprintf(os.Stderr, "transfer %s stopped in state %s\n", transfer.TransferID, transfer.State)
		}
		return err
	}

	fmt.Printf("Transfer %s: %s %s -> %s (%s)\n",
		transfer.TransferID, transfer.Amount, transfer.SourceChain, transfer.DestChain, transfer.State)
	return nil
}

func openStore(ctx context.Context, dsn string, log *logrus.Logger) (storage.TransferStore, func(), error) {
	if dsn == "" {
		log.Warn("no postgres DSN, using in-memory store (state is lost on exit)")
		return memory.NewTransferStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return pgstore.NewTransferStore(pool), pool.Close, nil
}
