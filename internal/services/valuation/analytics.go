package valuation

import (
	"math"

	"github.com/Rhymond/go-money"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// axisPadding is the fraction of the data range added above and below.
const axisPadding = 0.1

// PercentChange returns (last - baseline) / |baseline| × 100, or 0 when the
// baseline is zero or the series is empty.
func PercentChange(points []models.ChartPoint, baseline float64) float64 {
	if len(points) == 0 || baseline == 0 {
		return 0
	}
	last := points[len(points)-1].Value
	return (last - baseline) / math.Abs(baseline) * 100
}

// TrendColor is positive unless the series ends below where it started.
func TrendColor(points []models.ChartPoint) models.Trend {
	if len(points) < 2 {
		return models.TrendPositive
	}
	if points[len(points)-1].Value >= points[0].Value {
		return models.TrendPositive
	}
	return models.TrendNegative
}

// Domain spans every value and non-nil benchmark with 10% of the range as
// padding on each side. An empty series is Auto.
func Domain(points []models.ChartPoint) models.AxisDomain {
	if len(points) == 0 {
		return models.AxisDomain{Auto: true}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
		if p.Benchmark != nil {
			lo = math.Min(lo, *p.Benchmark)
			hi = math.Max(hi, *p.Benchmark)
		}
	}
	pad := (hi - lo) * axisPadding
	return models.AxisDomain{Min: lo - pad, Max: hi + pad}
}

// Summarize derives the headline figures for a finished series.
func Summarize(points []models.ChartPoint, portfolio *models.Portfolio, currency, benchmarkTicker string) models.ChartSummary {
	s := models.ChartSummary{
		Trend: TrendColor(points),
		Axis:  Domain(points),
	}
	if currency == "" {
		currency = money.USD
	}
	if len(points) == 0 {
		return s
	}

	first, last := points[0], points[len(points)-1]
	s.CurrentValue = last.Value
	s.BaselineValue = first.Value
	s.AbsoluteChange = last.Value - first.Value
	s.PercentChange = PercentChange(points, first.Value)
	s.TotalReturnPct = PercentChange(points, portfolio.StartingCapital.InexactFloat64())
	for _, p := range points {
		if p.Provenance == models.ProvenanceCostBasis {
			s.FallbackPoints++
		}
	}

	s.CurrentDisplay = money.NewFromFloat(last.Value, currency).Display()
	s.ChangeDisplay = money.NewFromFloat(s.AbsoluteChange, currency).Display()

	if first.Benchmark != nil && last.Benchmark != nil && *first.Benchmark != 0 {
		s.BenchmarkTicker = benchmarkTicker
		pct := (*last.Benchmark - *first.Benchmark) / math.Abs(*first.Benchmark) * 100
		s.BenchmarkPercent = &pct
	}
	return s
}

// Inspect describes the point at index relative to the first point. Indices
// outside the series select the last point. Nil for an empty series.
func Inspect(points []models.ChartPoint, index int) *models.HoverInfo {
	if len(points) == 0 {
		return nil
	}
	if index < 0 || index >= len(points) {
		index = len(points) - 1
	}
	p := points[index]
	return &models.HoverInfo{
		Index:          index,
		Point:          p,
		AbsoluteChange: p.Value - points[0].Value,
		PercentChange:  PercentChange(points[:index+1], points[0].Value),
	}
}
