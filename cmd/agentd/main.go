// Package main runs the treasury agent daemon: balance monitoring, yield
// scanning, and cross-chain fund routing on a fixed interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"treasury-agent/internal/bridge"
	"treasury-agent/internal/config"
	"treasury-agent/internal/domain"
	"treasury-agent/internal/ledger"
	"treasury-agent/internal/monitor"
	"treasury-agent/internal/observability"
	"treasury-agent/internal/orchestrator"
	"treasury-agent/internal/storage"
	"treasury-agent/internal/storage/memory"
	"treasury-agent/internal/storage/migrations"
	pgstore "treasury-agent/internal/storage/postgres"
	"treasury-agent/internal/yield"
	"treasury-agent/pkg/logger"
)

func main() {
	// Load .env if present. Real env vars win.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	useFixture := flag.Bool("use-fixture", false, "Use the built-in pool fixture instead of the live API")
	flag.Parse()

	if err := run(*configPath, *useMemory, *useFixture); err != nil {
		fmt.Fprintf(os.Stderr, "agentd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, useMemory, useFixture bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := ledger.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("dial rpc: %w", err)
	}
	defer client.Close()

	store, cleanup, err := openStore(ctx, cfg.PostgresDSN, useMemory, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var source yield.Source
	if useFixture {
		source = yield.DefaultFixture()
		log.Info("using built-in pool fixture")
	} else {
		source = yield.NewHTTPSource(cfg.DeFiAPIURL, yield.WithTimeout(cfg.APITimeout()))
	}

	metrics := observability.NewMetrics("")
	mon := monitor.New(cfg.Account(), client, cfg.MinBalance(), log)
	router := bridge.NewRouter(bridge.Options{
		Registry: domain.DefaultRegistry(),
		Protocol: &bridge.SimulatedProtocol{PhaseDelay: cfg.PhaseDelay()},
		Store:    store,
		Logger:   log,
		Metrics:  metrics,
	})

	// Fail transfers a previous process left mid-bridge before starting
	// new ones.
	recovered, err := router.RecoverInFlight(ctx)
	if err != nil {
		return fmt.Errorf("recover in-flight transfers: %w", err)
	}
	if recovered > 0 {
		log.WithField("count", recovered).Warn("reconciled transfers from previous run")
	}

	go serveMetrics(cfg.MetricsAddr, log)

	orch := orchestrator.New(orchestrator.Options{
		Monitor:        mon,
		Simulator:      monitor.NewSimulator(mon, client, log),
		Optimizer:      yield.NewOptimizer(source, log),
		Router:         router,
		Logger:         log,
		Metrics:        metrics,
		Interval:       cfg.PollInterval(),
		TransferAmount: cfg.Amount(),
	})

	if err := orch.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// openStore returns the transfer store and its cleanup. PostgreSQL is the
// default; -use-memory or an empty DSN falls back to the in-memory store.
func openStore(ctx context.Context, dsn string, useMemory bool, log *logrus.Logger) (storage.TransferStore, func(), error) {
	if useMemory || dsn == "" {
		log.Info("using in-memory transfer store")
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
	log.Info("using postgres transfer store")
	return pgstore.NewTransferStore(pool), pool.Close, nil
}

func serveMetrics(addr string, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.WithField("addr", addr).Info("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("metrics server failed")
	}
}
