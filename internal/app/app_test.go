package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
)

func TestNewAppWithConfig_WiresServices(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	cfg.Snapshots.Enabled = false

	a, err := NewAppWithConfig(cfg, common.NewSilentLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "badger", a.Storage.Backend())
	assert.NotNil(t, a.EODHDClient)
	assert.NotNil(t, a.CandleClient)
	assert.NotNil(t, a.MarketService)
	assert.NotNil(t, a.QuoteService)
	assert.NotNil(t, a.ValuationService)

	a.StartSnapshotScheduler()
	assert.Nil(t, a.schedulerCancel, "disabled scheduler is not started")
}

func TestNewApp_SQLiteFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finance.toml")
	content := "[storage]\nbackend = \"sqlite\"\nsqlite_path = \"" + filepath.ToSlash(filepath.Join(dir, "finance.db")) + "\"\n\n[logging]\nlevel = \"error\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	a, err := NewApp(path)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, "sqlite", a.Storage.Backend())
}

func TestApp_CloseStopsScheduler(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	cfg.Snapshots.Enabled = true
	cfg.Snapshots.Interval = "1h"
	cfg.Snapshots.Hour = 23

	a, err := NewAppWithConfig(cfg, common.NewSilentLogger())
	require.NoError(t, err)

	a.StartSnapshotScheduler()
	require.NotNil(t, a.schedulerCancel)
	a.Close()
	assert.Nil(t, a.schedulerCancel)
	assert.Nil(t, a.Storage)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.toml", ResolveConfigPath("explicit.toml"))
	t.Setenv("FINANCE_CONFIG", "/etc/finance.toml")
	assert.Equal(t, "/etc/finance.toml", ResolveConfigPath(""))
}
