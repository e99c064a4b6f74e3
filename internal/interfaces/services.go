package interfaces

import (
	"context"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// HistoricalPriceProvider returns best-effort price history for a stock instrument.
type HistoricalPriceProvider interface {
	GetHistoricalPrices(ctx context.Context, instrument string, start, end time.Time, granularity models.Granularity) (models.PriceSeries, error)
}

// CryptoCandleProvider returns candles per instrument. Instruments that fail are
// omitted from the result rather than failing the call.
type CryptoCandleProvider interface {
	GetCryptoCandles(ctx context.Context, instruments []string, start, end time.Time, granularity models.Granularity) (map[string][]models.Candle, error)
}

// BenchmarkProvider returns reference index closes keyed by UTC date (YYYY-MM-DD).
// Dates with no known close are absent from the map.
type BenchmarkProvider interface {
	GetBenchmarkPrices(ctx context.Context, ticker string, dates []time.Time) (map[string]float64, error)
}

// QuoteService returns live quotes for a portfolio's instruments. Symbols without a
// usable quote are absent from the result.
type QuoteService interface {
	GetQuotes(ctx context.Context, portfolioID string, symbols []string) (map[string]float64, error)
	GetCurrentQuote(ctx context.Context, instrument string) (float64, bool)
}

// ChartOptions carries the explicit query parameters of a chart request.
type ChartOptions struct {
	HoverIndex *int // point under the cursor, if any
	Benchmark  bool // include the normalized benchmark line
}

// ValuationService builds value-over-time series for portfolios
type ValuationService interface {
	// GetChart reconstructs the chart for a range
	GetChart(ctx context.Context, portfolioID string, rng models.TimeRange, opts ChartOptions) (*models.ChartSeries, error)

	// GetCurrentValue prices the portfolio from live data now
	GetCurrentValue(ctx context.Context, portfolioID string) (*models.Valuation, error)

	// RecordSnapshot appends today's snapshot at the live value
	RecordSnapshot(ctx context.Context, portfolioID string) (*models.Snapshot, error)
}
