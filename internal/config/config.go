// Package config loads agent configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"treasury-agent/internal/domain"
)

// Config is the full agent configuration. String fields for numeric values
// keep arbitrary-precision amounts exact until parse time.
type Config struct {
	RPCURL         string `yaml:"rpc_url"`
	AccountAddress string `yaml:"account_address"`
	HomeChain      string `yaml:"home_chain"`
	MinBalanceWei  string `yaml:"min_balance_wei"`

	DeFiAPIURL     string `yaml:"defi_api_url"`
	APITimeoutSecs int    `yaml:"api_timeout_secs"`

	PostgresDSN string `yaml:"postgres_dsn"`

	PollIntervalSecs   int    `yaml:"poll_interval_secs"`
	TransferAmount     string `yaml:"transfer_amount"`
	BridgePhaseDelayMS int    `yaml:"bridge_phase_delay_ms"`

	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		RPCURL:             "http://localhost:8545",
		HomeChain:          string(domain.ChainEthereum),
		MinBalanceWei:      "1000000000000000",
		DeFiAPIURL:         "",
		APITimeoutSecs:     10,
		PollIntervalSecs:   60,
		TransferAmount:     "100",
		BridgePhaseDelayMS: 1000,
		MetricsAddr:        ":9090",
		LogLevel:           "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path if
// path is non-empty, then environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables. Unset variables
// leave the current value alone.
func (c *Config) applyEnv() {
	setString(&c.RPCURL, "ETH_RPC_URL")
	setString(&c.AccountAddress, "ACCOUNT_ADDRESS")
	setString(&c.HomeChain, "HOME_CHAIN")
	setString(&c.MinBalanceWei, "MIN_BALANCE_WEI")
	setString(&c.DeFiAPIURL, "DEFI_API_URL")
	setInt(&c.APITimeoutSecs, "API_TIMEOUT_SECS")
	setString(&c.PostgresDSN, "POSTGRES_DSN")
	setInt(&c.PollIntervalSecs, "POLL_INTERVAL_SECS")
	setString(&c.TransferAmount, "TRANSFER_AMOUNT")
	setInt(&c.BridgePhaseDelayMS, "BRIDGE_PHASE_DELAY_MS")
	setString(&c.MetricsAddr, "METRICS_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFile, "LOG_FILE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the configuration for problems that would only surface
// deep inside a cycle.
func (c *Config) Validate() error {
	if c.AccountAddress != "" && !common.IsHexAddress(c.AccountAddress) {
		return &domain.InvalidAddressError{Value: c.AccountAddress}
	}
	registry := domain.DefaultRegistry()
	if !registry.Supported(domain.Chain(c.HomeChain)) {
		return &domain.InvalidChainError{Chain: domain.Chain(c.HomeChain), Supported: registry.List()}
	}
	minBalance, ok := new(big.Int).SetString(c.MinBalanceWei, 10)
	if !ok {
		return fmt.Errorf("min_balance_wei %q is not a base-10 integer", c.MinBalanceWei)
	}
	if minBalance.Sign() < 0 {
		return fmt.Errorf("min_balance_wei must not be negative, got %s", c.MinBalanceWei)
	}
	if _, err := decimal.NewFromString(c.TransferAmount); err != nil {
		return fmt.Errorf("transfer_amount %q: %w", c.TransferAmount, err)
	}
	if c.APITimeoutSecs <= 0 {
		return fmt.Errorf("api_timeout_secs must be positive, got %d", c.APITimeoutSecs)
	}
	if c.PollIntervalSecs <= 0 {
		return fmt.Errorf("poll_interval_secs must be positive, got %d", c.PollIntervalSecs)
	}
	return nil
}

// Account returns the configured account with its home chain.
func (c *Config) Account() domain.Account {
	return domain.Account{
		Address:   common.HexToAddress(c.AccountAddress),
		HomeChain: domain.Chain(c.HomeChain),
	}
}

// MinBalance returns the minimum balance threshold in atomic units.
// Validate must have passed.
func (c *Config) MinBalance() *big.Int {
	v, _ := new(big.Int).SetString(c.MinBalanceWei, 10)
	return v
}

// Amount returns the per-cycle transfer amount. Validate must have passed.
func (c *Config) Amount() decimal.Decimal {
	v, _ := decimal.NewFromString(c.TransferAmount)
	return v
}

// APITimeout returns the per-fetch timeout for the pool listing.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSecs) * time.Second
}

// PollInterval returns the cycle interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSecs) * time.Second
}

// PhaseDelay returns the simulated bridge leg duration.
func (c *Config) PhaseDelay() time.Duration {
	return time.Duration(c.BridgePhaseDelayMS) * time.Millisecond
}
