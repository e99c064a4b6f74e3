package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange is a symbolic chart window.
type TimeRange string

const (
	Range1D  TimeRange = "1D"
	Range1W  TimeRange = "1W"
	Range1M  TimeRange = "1M"
	Range3M  TimeRange = "3M"
	RangeYTD TimeRange = "YTD"
	Range1Y  TimeRange = "1Y"
	RangeAll TimeRange = "ALL"
)

// TimeRanges lists every supported range in display order.
var TimeRanges = []TimeRange{Range1D, Range1W, Range1M, Range3M, RangeYTD, Range1Y, RangeAll}

// ParseTimeRange validates a range token, case-insensitively.
func ParseTimeRange(s string) (TimeRange, error) {
	token := TimeRange(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range TimeRanges {
		if r == token {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRange, s)
}

// Provenance records where a chart point's value came from.
type Provenance string

const (
	ProvenanceMarket       Provenance = "market"       // every holding priced from historical series or live quotes
	ProvenanceCostBasis    Provenance = "cost_basis"   // at least one holding priced at its average cost
	ProvenanceSnapshot     Provenance = "snapshot"     // recorded daily snapshot
	ProvenanceInterpolated Provenance = "interpolated" // linear blend between baseline and live value
	ProvenanceSynthetic    Provenance = "synthetic"    // retrospective padding for a single-point series
)

// IsMarketData reports whether the value is backed by real prices or records.
func (p Provenance) IsMarketData() bool {
	return p == ProvenanceMarket || p == ProvenanceSnapshot
}

// ChartPoint is one derived point of a value-over-time series. Never persisted.
type ChartPoint struct {
	Time            time.Time  `json:"time"`
	Label           string     `json:"label"`
	Value           float64    `json:"value"`
	Benchmark       *float64   `json:"benchmark"` // nil renders as a gap
	Provenance      Provenance `json:"provenance"`
	FallbackSymbols []string   `json:"fallback_symbols,omitempty"`
}

// Trend is the colour class of a series.
type Trend string

const (
	TrendPositive Trend = "positive"
	TrendNegative Trend = "negative"
)

// AxisDomain is the y-axis extent. Auto is set when there is nothing to bound.
type AxisDomain struct {
	Auto bool    `json:"auto"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// ChartSummary holds analytics derived from a finished series.
type ChartSummary struct {
	CurrentValue     float64    `json:"current_value"`
	BaselineValue    float64    `json:"baseline_value"`
	AbsoluteChange   float64    `json:"absolute_change"`
	PercentChange    float64    `json:"percent_change"`
	TotalReturnPct   float64    `json:"total_return_pct"` // against starting capital
	Trend            Trend      `json:"trend"`
	Axis             AxisDomain `json:"axis"`
	FallbackPoints   int        `json:"fallback_points"`
	CurrentDisplay   string     `json:"current_display"`
	ChangeDisplay    string     `json:"change_display"`
	BenchmarkTicker  string     `json:"benchmark_ticker,omitempty"`
	BenchmarkPercent *float64   `json:"benchmark_percent,omitempty"`
}

// HoverInfo describes the point under the cursor relative to the series start.
type HoverInfo struct {
	Index          int        `json:"index"`
	Point          ChartPoint `json:"point"`
	AbsoluteChange float64    `json:"absolute_change"`
	PercentChange  float64    `json:"percent_change"`
}

// ChartSeries is the produced interface to rendering.
type ChartSeries struct {
	PortfolioID string       `json:"portfolio_id"`
	Range       TimeRange    `json:"range"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	Points      []ChartPoint `json:"points"`
	Summary     ChartSummary `json:"summary"`
	Hover       *HoverInfo   `json:"hover,omitempty"`
}

// Valuation is a single priced total.
type Valuation struct {
	PortfolioID     string     `json:"portfolio_id"`
	Time            time.Time  `json:"time"`
	Value           float64    `json:"value"`
	Cash            float64    `json:"cash"`
	HoldingsValue   float64    `json:"holdings_value"`
	Provenance      Provenance `json:"provenance"`
	FallbackSymbols []string   `json:"fallback_symbols,omitempty"`
}
