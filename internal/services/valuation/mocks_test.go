package valuation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// --- storage ---

type mockStorage struct {
	mu         sync.Mutex
	portfolios map[string]*models.Portfolio
	holdings   map[string][]models.Holding
	snapshots  map[string][]models.Snapshot

	holdingsErr  error
	snapshotsErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		portfolios: make(map[string]*models.Portfolio),
		holdings:   make(map[string][]models.Holding),
		snapshots:  make(map[string][]models.Snapshot),
	}
}

func (m *mockStorage) put(state *models.PortfolioState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolios[state.Portfolio.ID] = state.Portfolio
	m.holdings[state.Portfolio.ID] = state.Holdings
	m.snapshots[state.Portfolio.ID] = state.Snapshots
}

func (m *mockStorage) PortfolioStore() interfaces.PortfolioStore { return (*mockPortfolioStore)(m) }
func (m *mockStorage) HoldingStore() interfaces.HoldingStore { return (*mockHoldingStore)(m) }
func (m *mockStorage) SnapshotStore() interfaces.SnapshotStore { return (*mockSnapshotStore)(m) }
func (m *mockStorage) Backend() string { return "mock" }
func (m *mockStorage) Close() error { return nil }

type mockPortfolioStore mockStorage

func (m *mockPortfolioStore) GetPortfolio(_ context.Context, id string) (*models.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", id, models.ErrPortfolioNotFound)
	}
	return p, nil
}

func (m *mockPortfolioStore) SavePortfolio(_ context.Context, p *models.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolios[p.ID] = p
	return nil
}

func (m *mockPortfolioStore) ListPortfolios(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.portfolios))
	for id := range m.portfolios {
		ids = append(ids, id)
	}
	return ids, nil
}

type mockHoldingStore mockStorage

func (m *mockHoldingStore) GetHoldings(_ context.Context, portfolioID string) ([]models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holdingsErr != nil {
		return nil, m.holdingsErr
	}
	return m.holdings[portfolioID], nil
}

func (m *mockHoldingStore) SaveHolding(_ context.Context, h *models.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings[h.PortfolioID] = append(m.holdings[h.PortfolioID], *h)
	return nil
}

func (m *mockHoldingStore) DeleteHolding(_ context.Context, _, _ string) error { return nil }

type mockSnapshotStore mockStorage

func (m *mockSnapshotStore) GetSnapshots(_ context.Context, portfolioID string) ([]models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshotsErr != nil {
		return nil, m.snapshotsErr
	}
	return m.snapshots[portfolioID], nil
}

func (m *mockSnapshotStore) AppendSnapshot(_ context.Context, s *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.snapshots[s.PortfolioID] {
		if existing.Date.Equal(s.Date) {
			return models.ErrSnapshotExists
		}
	}
	m.snapshots[s.PortfolioID] = append(m.snapshots[s.PortfolioID], *s)
	return nil
}

func (m *mockSnapshotStore) HasSnapshot(_ context.Context, portfolioID string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.snapshots[portfolioID] {
		if common.DateKey(existing.Date) == common.DateKey(date) {
			return true, nil
		}
	}
	return false, nil
}

// --- prices ---

type mockHistory struct {
	series map[string]models.PriceSeries
	err    error
	calls  atomic.Int32

	// block makes every call wait until the context is done
	block bool
}

func (m *mockHistory) GetHistoricalPrices(ctx context.Context, instrument string, _, _ time.Time, _ models.Granularity) (models.PriceSeries, error) {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.series[instrument], nil
}

type mockQuotes struct {
	prices map[string]float64

	// block makes the first GetQuotes call wait for cancellation
	block   bool
	started chan struct{}
	calls   atomic.Int32
}

func (m *mockQuotes) GetQuotes(ctx context.Context, _ string, symbols []string) (map[string]float64, error) {
	if m.calls.Add(1) == 1 && m.block {
		close(m.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	out := make(map[string]float64)
	for _, s := range symbols {
		if p, ok := m.prices[s]; ok {
			out[s] = p
		}
	}
	return out, nil
}

func (m *mockQuotes) GetCurrentQuote(_ context.Context, instrument string) (float64, bool) {
	p, ok := m.prices[instrument]
	return p, ok
}

type mockCandles struct {
	candles map[string][]models.Candle
}

func (m *mockCandles) GetCryptoCandles(_ context.Context, instruments []string, start, end time.Time, _ models.Granularity) (map[string][]models.Candle, error) {
	out := make(map[string][]models.Candle)
	for _, inst := range instruments {
		for _, c := range m.candles[inst] {
			if !c.Time.Before(start) && !c.Time.After(end) {
				out[inst] = append(out[inst], c)
			}
		}
	}
	return out, nil
}

type mockBenchmark struct {
	closes map[string]float64
	err    error
	dates  []time.Time
}

func (m *mockBenchmark) GetBenchmarkPrices(_ context.Context, _ string, dates []time.Time) (map[string]float64, error) {
	m.dates = dates
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]float64)
	for _, d := range dates {
		if p, ok := m.closes[common.DateKey(d)]; ok {
			out[common.DateKey(d)] = p
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")
