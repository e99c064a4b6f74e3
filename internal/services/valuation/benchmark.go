package valuation

import (
	"sort"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// BenchmarkBase picks the price the benchmark is normalized against: its close
// on anchor's date, or the earliest close available when that date is missing.
func BenchmarkBase(raw map[string]float64, anchor time.Time) (float64, bool) {
	if !anchor.IsZero() {
		if p, ok := raw[common.DateKey(anchor)]; ok && p > 0 {
			return p, true
		}
	}
	keys := make([]string, 0, len(raw))
	for k, p := range raw {
		if p > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0, false
	}
	sort.Strings(keys)
	return raw[keys[0]], true
}

// NormalizeBenchmark rescales closes to price / base × startingCapital so the
// benchmark reads in the portfolio's dollars.
func NormalizeBenchmark(raw map[string]float64, anchor time.Time, startingCapital float64) map[string]float64 {
	base, ok := BenchmarkBase(raw, anchor)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, p := range raw {
		if p > 0 {
			out[k] = p / base * startingCapital
		}
	}
	return out
}

// attachBenchmark sets each point's benchmark from its UTC date. Dates with no
// normalized close stay nil.
func attachBenchmark(points []models.ChartPoint, normalized map[string]float64) {
	for i := range points {
		points[i].Benchmark = nil
		if v, ok := normalized[common.DateKey(points[i].Time)]; ok {
			points[i].Benchmark = &v
		}
	}
}

// benchmarkDates lists the distinct UTC days a chart will need, plus the anchor.
func benchmarkDates(instants []time.Time, anchor time.Time, lookback time.Duration) []time.Time {
	seen := make(map[string]bool, len(instants)+2)
	var dates []time.Time
	add := func(t time.Time) {
		if t.IsZero() {
			return
		}
		d := common.StartOfDay(t)
		if k := common.DateKey(d); !seen[k] {
			seen[k] = true
			dates = append(dates, d)
		}
	}
	add(anchor)
	for _, t := range instants {
		add(t)
	}
	// a lone sample gets a synthetic partner lookback earlier
	if len(instants) == 1 {
		add(instants[0].Add(-lookback))
	}
	return dates
}
