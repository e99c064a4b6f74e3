package badger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
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

	// re-saving keeps the original creation instant
	p2 := *p
	p2.CreatedAt = time.Time{}
	p2.Cash = decimal.RequireFromString("10")
	require.NoError(t, m.PortfolioStore().SavePortfolio(ctx, &p2))

	got, err := m.PortfolioStore().GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.Cash.Equal(decimal.RequireFromString("10")))
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
	// upsert replaces the position
	require.NoError(t, hs.SaveHolding(ctx, &models.Holding{PortfolioID: "p1", Symbol: "AAPL", Quantity: decimal.NewFromInt(7), AvgCost: decimal.NewFromInt(181)}))

	holdings, err := hs.GetHoldings(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "MSFT", holdings[1].Symbol)

	require.NoError(t, hs.DeleteHolding(ctx, "p1", "aapl"))
	require.NoError(t, hs.DeleteHolding(ctx, "p1", "NOPE"))
	holdings, err = hs.GetHoldings(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, holdings, 1)
}

func TestSnapshotStore_AppendOnly(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	ss := m.SnapshotStore()

	d2 := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	d1 := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	require.NoError(t, ss.AppendSnapshot(ctx, &models.Snapshot{PortfolioID: "p1", Date: d2, TotalValue: decimal.RequireFromString("1010.5")}))
	require.NoError(t, ss.AppendSnapshot(ctx, &models.Snapshot{PortfolioID: "p1", Date: d1, TotalValue: decimal.RequireFromString("1000")}))

	err := ss.AppendSnapshot(ctx, &models.Snapshot{PortfolioID: "p1", Date: d2.Add(-time.Hour), TotalValue: decimal.RequireFromString("1")})
	assert.ErrorIs(t, err, models.ErrSnapshotExists)

	snaps, err := ss.GetSnapshots(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), snaps[0].Date.UTC())
	assert.True(t, snaps[1].TotalValue.Equal(decimal.RequireFromString("1010.5")), "original value kept")

	has, err := ss.HasSnapshot(ctx, "p1", d1)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = ss.HasSnapshot(ctx, "p1", d1.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.False(t, has)
}
