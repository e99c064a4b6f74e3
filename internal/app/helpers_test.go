package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/storage"
)

func testStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	sm, err := storage.NewStorageManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { sm.Close() })
	return sm
}

func savePortfolios(t *testing.T, sm interfaces.StorageManager, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, sm.PortfolioStore().SavePortfolio(context.Background(), &models.Portfolio{
			ID:              id,
			StartingCapital: decimal.NewFromInt(1000),
			Cash:            decimal.NewFromInt(1000),
		}))
	}
}

// mockValuation records RecordSnapshot calls; results are keyed by portfolio id.
type mockValuation struct {
	mu     sync.Mutex
	calls  []string
	errors map[string]error
}

func (m *mockValuation) GetChart(context.Context, string, models.TimeRange, interfaces.ChartOptions) (*models.ChartSeries, error) {
	return nil, errors.New("not implemented")
}

func (m *mockValuation) GetCurrentValue(context.Context, string) (*models.Valuation, error) {
	return nil, errors.New("not implemented")
}

func (m *mockValuation) RecordSnapshot(_ context.Context, portfolioID string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, portfolioID)
	if err := m.errors[portfolioID]; err != nil {
		return nil, err
	}
	return &models.Snapshot{
		PortfolioID: portfolioID,
		Date:        common.StartOfDay(time.Now()),
		TotalValue:  decimal.NewFromInt(1000),
	}, nil
}

func (m *mockValuation) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
