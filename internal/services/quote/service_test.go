package quote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// --- Mocks ---

type mockEODHDClient struct {
	mu     sync.Mutex
	prices map[string]float64 // keyed by EODHD ticker
	calls  map[string]int
}

func newMockEODHD(prices map[string]float64) *mockEODHDClient {
	return &mockEODHDClient{prices: prices, calls: make(map[string]int)}
}

func (m *mockEODHDClient) GetRealTimeQuote(_ context.Context, ticker string) (*models.RealTimeQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[ticker]++
	p, ok := m.prices[ticker]
	if !ok {
		return nil, errors.New("ticker not found")
	}
	return &models.RealTimeQuote{Code: ticker, Close: p}, nil
}

func (m *mockEODHDClient) GetEOD(_ context.Context, _ string, _ ...interfaces.EODOption) (*models.EODResponse, error) {
	return nil, nil
}

func (m *mockEODHDClient) GetIntraday(_ context.Context, _, _ string, _, _ time.Time) ([]models.PricePoint, error) {
	return nil, nil
}

func (m *mockEODHDClient) callCount(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ticker]
}

// --- Tests ---

func TestGetCurrentQuote(t *testing.T) {
	eod := newMockEODHD(map[string]float64{"AAPL.US": 190.5, "ZERO.US": 0})
	svc := NewService(eod, common.NewSilentLogger())

	price, ok := svc.GetCurrentQuote(context.Background(), "aapl")
	assert.True(t, ok)
	assert.Equal(t, 190.5, price)

	_, ok = svc.GetCurrentQuote(context.Background(), "ZERO")
	assert.False(t, ok, "non-positive quote is unusable")

	_, ok = svc.GetCurrentQuote(context.Background(), "MISSING")
	assert.False(t, ok)
}

func TestGetQuotes_CachesPerPortfolio(t *testing.T) {
	eod := newMockEODHD(map[string]float64{"AAPL.US": 190, "MSFT.US": 410})
	svc := NewService(eod, common.NewSilentLogger())
	ctx := context.Background()

	q1, err := svc.GetQuotes(ctx, "p1", []string{"AAPL", "msft", "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 190, "MSFT": 410}, q1)

	eod.prices["AAPL.US"] = 999
	q2, err := svc.GetQuotes(ctx, "p1", []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 190.0, q2["AAPL"], "served from cache")
	assert.Equal(t, 1, eod.callCount("AAPL.US"))

	// a different portfolio has its own entry
	q3, err := svc.GetQuotes(ctx, "p2", []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 999.0, q3["AAPL"])
	assert.Equal(t, 2, eod.callCount("AAPL.US"))
}

func TestGetQuotes_NewSymbolRefetchesAll(t *testing.T) {
	eod := newMockEODHD(map[string]float64{"AAPL.US": 190, "NVDA.US": 880})
	svc := NewService(eod, common.NewSilentLogger())
	ctx := context.Background()

	_, err := svc.GetQuotes(ctx, "p1", []string{"AAPL"})
	require.NoError(t, err)

	q, err := svc.GetQuotes(ctx, "p1", []string{"AAPL", "NVDA"})
	require.NoError(t, err)
	assert.Len(t, q, 2)
	assert.Equal(t, 2, eod.callCount("AAPL.US"))
	assert.Equal(t, 1, eod.callCount("NVDA.US"))
}

func TestGetQuotes_UnquotedSymbolsAbsent(t *testing.T) {
	eod := newMockEODHD(map[string]float64{"AAPL.US": 190})
	svc := NewService(eod, common.NewSilentLogger())

	q, err := svc.GetQuotes(context.Background(), "p1", []string{"AAPL", "DELISTED"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 190}, q)
}

func TestGetQuotes_MissesAreCached(t *testing.T) {
	eod := newMockEODHD(map[string]float64{"AAPL.US": 190})
	svc := NewService(eod, common.NewSilentLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		q, err := svc.GetQuotes(ctx, "p1", []string{"AAPL", "DELISTED"})
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"AAPL": 190}, q)
	}
	assert.Equal(t, 1, eod.callCount("AAPL.US"))
	assert.Equal(t, 1, eod.callCount("DELISTED.US"))
}

func TestGetQuotes_ExpiresByTTL(t *testing.T) {
	eod := newMockEODHD(map[string]float64{"AAPL.US": 190})
	svc := NewService(eod, common.NewSilentLogger(), WithTTL(50*time.Millisecond))
	ctx := context.Background()

	_, err := svc.GetQuotes(ctx, "p1", []string{"AAPL"})
	require.NoError(t, err)

	eod.mu.Lock()
	eod.prices["AAPL.US"] = 200
	eod.mu.Unlock()

	time.Sleep(150 * time.Millisecond)

	q, err := svc.GetQuotes(ctx, "p1", []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 200.0, q["AAPL"])
	assert.Equal(t, 2, eod.callCount("AAPL.US"))
}

func TestGetQuotes_Empty(t *testing.T) {
	eod := newMockEODHD(nil)
	svc := NewService(eod, common.NewSilentLogger())

	q, err := svc.GetQuotes(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Empty(t, q)
}

func TestGetQuotes_CancelledContext(t *testing.T) {
	eod := newMockEODHD(map[string]float64{"AAPL.US": 190})
	svc := NewService(eod, common.NewSilentLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GetQuotes(ctx, "p1", []string{"AAPL"})
	assert.ErrorIs(t, err, context.Canceled)
}
