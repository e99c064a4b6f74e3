package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, "GSPC.INDX", cfg.Valuation.BenchmarkTicker)
	assert.Equal(t, 40, cfg.Valuation.MaxPointsIntraday)
	assert.Equal(t, 60, cfg.Valuation.MaxPoints)
	assert.Equal(t, 5*time.Minute, cfg.Valuation.GetQuoteCacheTTL())
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FINANCE_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_EODHDKeyFromEnv(t *testing.T) {
	t.Setenv("EODHD_API_KEY", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "from-env", cfg.Clients.EODHD.APIKey)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finance.toml")
	content := `
environment = "production"

[storage]
backend = "SQLite"

[valuation]
benchmark_ticker = "NDX.INDX"
quote_cache_ttl = "90s"
max_points = 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("FINANCE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "NDX.INDX", cfg.Valuation.BenchmarkTicker)
	assert.Equal(t, 90*time.Second, cfg.Valuation.GetQuoteCacheTTL())
	assert.Equal(t, 60, cfg.Valuation.MaxPoints, "invalid point budget falls back to default")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDurationFallbacks(t *testing.T) {
	c := EODHDConfig{Timeout: "not-a-duration"}
	assert.Equal(t, 30*time.Second, c.GetTimeout())

	s := SnapshotsConfig{Interval: "-1m"}
	assert.Equal(t, 15*time.Minute, s.GetInterval())
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	ts := time.Date(2024, 3, 10, 22, 30, 0, 0, loc) // 03:30 UTC on the 11th

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, "2024-03-11", DateKey(ts))
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, IsFresh(time.Time{}, now, time.Hour))
	assert.True(t, IsFresh(now.Add(-30*time.Minute), now, time.Hour))
	assert.False(t, IsFresh(now.Add(-2*time.Hour), now, time.Hour))
}
