package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  name: solswap
  environment: production

quote:
  base_url: https://quote.example.com
  default_slippage_bps: 75

solana:
  rpc_url: https://rpc.example.com
  commitment: finalized

fees:
  protocol_fee_bps: 100
  treasury_address: EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v

refresh:
  interval: 2m
  staleness_window: 10m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "https://quote.example.com", cfg.Quote.BaseURL)
	assert.Equal(t, 75, cfg.Quote.DefaultSlippageBps)
	assert.Equal(t, "finalized", cfg.Solana.Commitment)
	assert.Equal(t, uint16(100), cfg.Fees.ProtocolFeeBps)
	assert.Equal(t, 2*time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Refresh.StalenessWindow)

	// defaults fill what the file leaves out
	assert.Equal(t, "data/orders.json", cfg.Storage.MirrorPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":9095", cfg.Metrics.Addr)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "solswap", cfg.App.Name)
	assert.Equal(t, 50, cfg.Quote.DefaultSlippageBps)
	assert.Equal(t, time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Refresh.StalenessWindow)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://override.example.com")
	t.Setenv("TREASURY_ADDRESS", "So11111111111111111111111111111111111111112")
	t.Setenv("PROTOCOL_FEE_BPS", "25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", cfg.Solana.RPCURL)
	assert.Equal(t, "So11111111111111111111111111111111111111112", cfg.Fees.TreasuryAddress)
	assert.Equal(t, uint16(25), cfg.Fees.ProtocolFeeBps)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "fees:\n  protocol_fee_bps: 20000\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "refresh:\n  interval: 10ms\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
