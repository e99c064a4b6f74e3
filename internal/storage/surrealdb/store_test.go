package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
	tcommon "github.com/Adarsh-S-Nair/finance-next-sub000/tests/common"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	sc := tcommon.StartSurrealDB(t)
	user, pass := sc.Credentials()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "surrealdb"
	cfg.Storage.Address = sc.Address()
	cfg.Storage.Namespace = "finance_test"
	cfg.Storage.Database = tcommon.DatabaseName(t)
	cfg.Storage.Username = user
	cfg.Storage.Password = pass

	m, err := NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, isNotFoundError(nil))
	assert.False(t, isNotFoundError(assert.AnError))
	assert.True(t, isAlreadyExistsError(errString("Database record `snapshot:x` already exists")))
	assert.True(t, isNotFoundError(errString("The table 'holding' does not exist")))
}

type errString string

func (e errString) Error() string { return string(e) }

func TestIDs(t *testing.T) {
	assert.Equal(t, "p1_MSFT", holdingID("p1", "msft"))
	assert.Equal(t, "p1_20250611", snapshotID("p1", time.Date(2025, 6, 11, 23, 0, 0, 0, time.UTC)))
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("cash", "1234.56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.StringFixed(2))

	_, err = parseDecimal("cash", "12,34")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt cash")

	_, err = parseDecimal("quantity", "")
	assert.Error(t, err)
}

func TestHoldingStore_CorruptAmountFailsLoad(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	rec := holdingRecord{PortfolioID: "p1", Symbol: "AAPL", Quantity: "lots", AvgCost: "180", UpdatedAt: time.Now().UTC()}
	vars := map[string]any{"tb": tableHolding, "id": holdingID("p1", "AAPL"), "rec": rec}
	_, err := surrealdb.Query[[]holdingRecord](ctx, m.db, "UPSERT type::record($tb, $id) CONTENT $rec", vars)
	require.NoError(t, err)

	_, err = m.HoldingStore().GetHoldings(ctx, "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt quantity")
}

func TestPortfolioStore(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	_, err := m.PortfolioStore().GetPortfolio(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrPortfolioNotFound)

	p := &models.Portfolio{
		ID:              "p1",
		Name:            "Crypto",
		AssetClass:      models.AssetClassCrypto,
		Symbols:         []string{"BTC", "ETH"},
		StartingCapital: decimal.RequireFromString("100000"),
		Cash:            decimal.RequireFromString("2500.75"),
		CreatedAt:       created,
	}
	require.NoError(t, m.PortfolioStore().SavePortfolio(ctx, p))

	got, err := m.PortfolioStore().GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.Cash.Equal(decimal.RequireFromString("2500.75")))
	assert.True(t, got.IsCrypto())
	assert.Equal(t, []string{"BTC", "ETH"}, got.Symbols)

	require.NoError(t, m.PortfolioStore().SavePortfolio(ctx, &models.Portfolio{ID: "a0"}))
	ids, err := m.PortfolioStore().ListPortfolios(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a0", "p1"}, ids)
}

func TestHoldingStore(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	hs := m.HoldingStore()

	require.NoError(t, hs.SaveHolding(ctx, &models.Holding{PortfolioID: "p1", Symbol: "msft", Quantity: decimal.NewFromInt(2), AvgCost: decimal.NewFromInt(400)}))
	require.NoError(t, hs.SaveHolding(ctx, &models.Holding{PortfolioID: "p1", Symbol: "AAPL", Quantity: decimal.NewFromInt(5), AvgCost: decimal.NewFromInt(180)}))
	require.NoError(t, hs.SaveHolding(ctx, &models.Holding{PortfolioID: "p2", Symbol: "AAPL", Quantity: decimal.NewFromInt(1), AvgCost: decimal.NewFromInt(1)}))
	require.NoError(t, hs.SaveHolding(ctx, &models.Holding{PortfolioID: "p1", Symbol: "AAPL", Quantity: decimal.NewFromInt(7), AvgCost: decimal.NewFromInt(181)}))

	holdings, err := hs.GetHoldings(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "MSFT", holdings[1].Symbol)

	require.NoError(t, hs.DeleteHolding(ctx, "p1", "aapl"))
	holdings, err = hs.GetHoldings(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "MSFT", holdings[0].Symbol)
}

func TestSnapshotStore(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	ss := m.SnapshotStore()

	d2 := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
	d1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ss.AppendSnapshot(ctx, &models.Snapshot{PortfolioID: "p1", Date: d2, TotalValue: decimal.RequireFromString("101.5")}))
	require.NoError(t, ss.AppendSnapshot(ctx, &models.Snapshot{PortfolioID: "p1", Date: d1, TotalValue: decimal.RequireFromString("100")}))

	err := ss.AppendSnapshot(ctx, &models.Snapshot{PortfolioID: "p1", Date: d2.Add(2 * time.Hour), TotalValue: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, models.ErrSnapshotExists)

	snaps, err := ss.GetSnapshots(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].Date.Equal(d1))
	assert.True(t, snaps[1].Date.Equal(common.StartOfDay(d2)))
	assert.True(t, snaps[1].TotalValue.Equal(decimal.RequireFromString("101.5")))

	has, err := ss.HasSnapshot(ctx, "p1", d1.Add(5*time.Hour))
	require.NoError(t, err)
	assert.True(t, has)
	has, err = ss.HasSnapshot(ctx, "p1", d1.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.False(t, has)
}
