package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents application configuration
type Config struct {
	App     AppConfig     `yaml:"app"`
	Quote   QuoteConfig   `yaml:"quote"`
	Solana  SolanaConfig  `yaml:"solana"`
	Fees    FeeConfig     `yaml:"fees"`
	Storage StorageConfig `yaml:"storage"`
	Refresh RefreshConfig `yaml:"refresh"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// AppConfig represents application settings
type AppConfig struct {
	Name        string        `yaml:"name"`
	Environment string        `yaml:"environment"`
	GracePeriod time.Duration `yaml:"grace_period"`
}

// QuoteConfig represents swap-routing service settings
type QuoteConfig struct {
	BaseURL            string        `yaml:"base_url"`
	Timeout            time.Duration `yaml:"timeout"`
	DefaultSlippageBps int           `yaml:"default_slippage_bps"`
}

// SolanaConfig represents blockchain connection settings
type SolanaConfig struct {
	RPCURL      string `yaml:"rpc_url"`
	WSURL       string `yaml:"ws_url"`
	Commitment  string `yaml:"commitment"`
	MaxRetries  uint   `yaml:"max_retries"`
	KeypairPath string `yaml:"keypair_path"`
}

// FeeConfig represents protocol fee settings
type FeeConfig struct {
	ProtocolFeeBps  uint16 `yaml:"protocol_fee_bps"`
	TreasuryAddress string `yaml:"treasury_address"`
}

// StorageConfig represents persistence settings
type StorageConfig struct {
	MirrorPath string `yaml:"mirror_path"`
}

// RefreshConfig represents the pending-quote refresh sweep settings
type RefreshConfig struct {
	Interval        time.Duration `yaml:"interval"`
	StalenessWindow time.Duration `yaml:"staleness_window"`
}

// MetricsConfig represents metrics endpoint settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LogConfig represents logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from YAML file with env overrides
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.loadEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvOverrides overrides config with environment variables
func (c *Config) loadEnvOverrides() {
	if v := os.Getenv("QUOTE_BASE_URL"); v != "" {
		c.Quote.BaseURL = v
	}
	if v := os.Getenv("SOLANA_RPC_URL"); v != "" {
		c.Solana.RPCURL = v
	}
	if v := os.Getenv("SOLANA_WS_URL"); v != "" {
		c.Solana.WSURL = v
	}
	if v := os.Getenv("SOLANA_KEYPAIR_PATH"); v != "" {
		c.Solana.KeypairPath = v
	}
	if v := os.Getenv("TREASURY_ADDRESS"); v != "" {
		c.Fees.TreasuryAddress = v
	}
	if v := os.Getenv("PROTOCOL_FEE_BPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			c.Fees.ProtocolFeeBps = uint16(n)
		}
	}
	if v := os.Getenv("STORAGE_MIRROR_PATH"); v != "" {
		c.Storage.MirrorPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("APP_ENVIRONMENT"); v != "" {
		c.App.Environment = v
	}
}

// applyDefaults fills unset fields
func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "solswap"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.GracePeriod == 0 {
		c.App.GracePeriod = 30 * time.Second
	}
	if c.Quote.DefaultSlippageBps == 0 {
		c.Quote.DefaultSlippageBps = 50
	}
	if c.Storage.MirrorPath == "" {
		c.Storage.MirrorPath = "data/orders.json"
	}
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = time.Minute
	}
	if c.Refresh.StalenessWindow == 0 {
		c.Refresh.StalenessWindow = 5 * time.Minute
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9095"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// validate validates configuration
func (c *Config) validate() error {
	if c.Fees.ProtocolFeeBps > 10_000 {
		return fmt.Errorf("fees.protocol_fee_bps must not exceed 10000")
	}
	if c.Quote.DefaultSlippageBps < 0 {
		return fmt.Errorf("quote.default_slippage_bps must be non-negative")
	}
	if c.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh.interval must be at least 1s")
	}
	return nil
}
