package models

import (
	"sort"
	"strings"
	"time"
)

// PricePoint is one observed price of an instrument.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries is ascending by Time with no duplicate instants.
type PriceSeries []PricePoint

// NewPriceSeries sorts points ascending, keeps the last price seen for a repeated
// instant and drops non-positive prices.
func NewPriceSeries(points []PricePoint) PriceSeries {
	filtered := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if p.Price > 0 && !p.Time.IsZero() {
			filtered = append(filtered, p)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Time.Before(filtered[j].Time) })

	out := make(PriceSeries, 0, len(filtered))
	for _, p := range filtered {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// Candle is an OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// CandlesToSeries converts candles to a close-price series.
func CandlesToSeries(candles []Candle) PriceSeries {
	points := make([]PricePoint, len(candles))
	for i, c := range candles {
		points[i] = PricePoint{Time: c.Time, Price: c.Close}
	}
	return NewPriceSeries(points)
}

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// EODResponse wraps EOD bars returned by a provider
type EODResponse struct {
	Data []EODBar `json:"data"`
}

// RealTimeQuote holds a live snapshot from a real-time price source
type RealTimeQuote struct {
	Code          string    `json:"code"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"` // current/last price
	PreviousClose float64   `json:"previous_close"`
	Change        float64   `json:"change"`
	ChangePct     float64   `json:"change_p"`
	Volume        int64     `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
}

// Granularity is the spacing of historical price observations requested from a provider.
type Granularity time.Duration

const (
	GranularityFiveMinutes = Granularity(5 * time.Minute)
	GranularityHourly      = Granularity(time.Hour)
	GranularityDaily       = Granularity(24 * time.Hour)
)

// Duration returns the granularity as a time.Duration.
func (g Granularity) Duration() time.Duration { return time.Duration(g) }

// IsIntraday reports whether bars are finer than a day.
func (g Granularity) IsIntraday() bool { return time.Duration(g) < 24*time.Hour }

// EODHDTicker returns the EODHD-format ticker ("AAPL" -> "AAPL.US"); tickers with an
// exchange suffix pass through.
func EODHDTicker(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".US"
}
