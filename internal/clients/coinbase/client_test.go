package coinbase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductID(t *testing.T) {
	c := NewClient()
	assert.Equal(t, "BTC-USD", c.ProductID("btc"))
	assert.Equal(t, "ETH-EUR", c.ProductID("ETH-EUR"))

	eur := NewClient(WithQuoteCurrency("eur"))
	assert.Equal(t, "SOL-EUR", eur.ProductID("SOL"))
}

func TestSupportedGranularity(t *testing.T) {
	assert.Equal(t, time.Minute, SupportedGranularity(0))
	assert.Equal(t, 5*time.Minute, SupportedGranularity(5*time.Minute))
	assert.Equal(t, time.Hour, SupportedGranularity(30*time.Minute))
	assert.Equal(t, 24*time.Hour, SupportedGranularity(7*24*time.Hour))
}

func TestGetCandles_ParsesRowsAscending(t *testing.T) {
	var path, granularity string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		granularity = r.URL.Query().Get("granularity")
		// newest first, as the exchange returns them
		fmt.Fprint(w, `[[1704070800, 41000, 42500, 41500, 42000, 12.5],[1704067200, 40000, 41800, 40500, 41500, 10.0],[1]]`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	start := time.Unix(1704067200, 0)
	candles, err := c.GetCandles(context.Background(), "BTC-USD", start, start.Add(2*time.Hour), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "/products/BTC-USD/candles", path)
	assert.Equal(t, "3600", granularity)
	require.Len(t, candles, 2)
	assert.True(t, candles[0].Time.Before(candles[1].Time))
	assert.Equal(t, 41500.0, candles[0].Close)
	assert.Equal(t, 40500.0, candles[0].Open)
	assert.Equal(t, 42000.0, candles[1].Close)
}

func TestGetCandles_PagesLongWindows(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		start, _ := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		fmt.Fprintf(w, `[[%d, 1, 2, 1, %d, 1]]`, start.Unix(), n)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 400) // 400 daily buckets -> 2 pages

	candles, err := c.GetCandles(context.Background(), "BTC-USD", start, end, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Len(t, candles, 2)
}

func TestGetCandles_EmptyWindow(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:0"))
	now := time.Now()
	candles, err := c.GetCandles(context.Background(), "BTC-USD", now, now, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, candles)
}

func TestGetCandles_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"NotFound"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	now := time.Now()
	_, err := c.GetCandles(context.Background(), "NOPE-USD", now.Add(-time.Hour), now, time.Minute)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
