package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000.0, cfg.MinLiquidity)
	assert.Equal(t, 1000000.0, cfg.MaxLiquidity)
	assert.True(t, cfg.RequireReputationGood)
	assert.True(t, cfg.SkipFakeVolume)
	assert.True(t, cfg.CheckBundledSupply)
	assert.Equal(t, 0.90, cfg.BundledSupplyThreshold)
	assert.Equal(t, 0.10, cfg.AnomalyContamination)
	assert.Equal(t, 45*time.Second, cfg.ScanInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.BlacklistTokens)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MIN_LIQUIDITY", "50000")
	t.Setenv("REQUIRE_REPUTATION_GOOD", "false")
	t.Setenv("SCAN_INTERVAL", "2m")
	t.Setenv("BLACKLIST_TOKENS", "MintA, MintB,,MintC")
	t.Setenv("TELEGRAM_CHAT_ID", "123456789")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50000.0, cfg.MinLiquidity)
	assert.False(t, cfg.RequireReputationGood)
	assert.Equal(t, 2*time.Minute, cfg.ScanInterval)
	assert.Equal(t, []string{"MintA", "MintB", "MintC"}, cfg.BlacklistTokens)
	assert.Equal(t, int64(123456789), cfg.TelegramChatID)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("MIN_LIQUIDITY", "lots")
	t.Setenv("SCAN_INTERVAL", "whenever")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000.0, cfg.MinLiquidity)
	assert.Equal(t, 45*time.Second, cfg.ScanInterval)
}

func TestFilterAssembly(t *testing.T) {
	t.Setenv("MIN_VOLUME", "1000")
	t.Setenv("MAX_VOLUME", "2000")
	t.Setenv("BUNDLED_SUPPLY_THRESHOLD", "0.85")

	cfg, err := Load()
	require.NoError(t, err)

	filter := cfg.Filter()
	assert.Equal(t, 1000.0, filter.MinVolume)
	assert.Equal(t, 2000.0, filter.MaxVolume)
	assert.Equal(t, 0.85, filter.BundledThreshold())
	require.NoError(t, filter.Validate())
}

func TestFilterValidateFlagsInvertedBounds(t *testing.T) {
	t.Setenv("MIN_LIQUIDITY", "900000")
	t.Setenv("MAX_LIQUIDITY", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.Filter().Validate())
}
