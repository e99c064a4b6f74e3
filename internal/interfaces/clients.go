// Package interfaces defines service contracts for the finance services
package interfaces

import (
	"context"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// EODHDClient provides access to the EODHD API
type EODHDClient interface {
	// GetEOD retrieves end-of-day price data
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)

	// GetIntraday retrieves intraday bars at the given interval ("5m" or "1h")
	GetIntraday(ctx context.Context, ticker, interval string, from, to time.Time) ([]models.PricePoint, error)

	// GetRealTimeQuote retrieves the latest (delayed) quote
	GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithOrder sets the sort order for EOD query
func WithOrder(order string) EODOption {
	return func(p *EODParams) {
		p.Order = order
	}
}

// CandleClient provides OHLC candles for crypto products
type CandleClient interface {
	// GetCandles retrieves candles for a product (e.g. "BTC-USD") between start and end
	GetCandles(ctx context.Context, product string, start, end time.Time, granularity time.Duration) ([]models.Candle, error)

	// ProductID maps an instrument symbol to a product id
	ProductID(symbol string) string
}
