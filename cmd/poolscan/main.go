// Package main scans the DeFi pool listing and prints the best pool by
// TVL-weighted APY score.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"treasury-agent/internal/yield"
	"treasury-agent/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	endpoint := flag.String("endpoint", os.Getenv("DEFI_API_URL"), "Pool listing endpoint (default: the public API)")
	timeout := flag.Duration("timeout", yield.DefaultTimeout, "Fetch timeout")
	useFixture := flag.Bool("use-fixture", false, "Use the built-in pool fixture instead of the live API")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel})

	var source yield.Source
	if *useFixture {
		source = yield.DefaultFixture()
	} else {
		source = yield.NewHTTPSource(*endpoint, yield.WithTimeout(*timeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	best, err := yield.NewOptimizer(source, log).BestPool(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "poolscan: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Best pool: %s\n", best.Protocol)
	fmt.Printf("  Chain: %s\n", best.Chain)
	fmt.Printf("  APY:   %.2f%%\n", best.APYOrZero())
	fmt.Printf("  TVL:   $%.0f\n", best.TVL)
	fmt.Printf("  Score: %.4f\n", best.Score())
}
