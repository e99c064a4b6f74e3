package valuation

import (
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// minSampleWidth is the narrowest window worth spreading samples across.
const minSampleWidth = time.Minute

// SampleInstants spreads up to maxPoints instants evenly by wall-clock duration
// across [start, end]. The last instant is always end exactly. A window narrower
// than a minute yields end alone.
func SampleInstants(start, end time.Time, maxPoints int) []time.Time {
	if maxPoints < 2 {
		maxPoints = 2
	}
	width := end.Sub(start)
	if width < minSampleWidth {
		return []time.Time{end}
	}

	step := width / time.Duration(maxPoints-1)
	instants := make([]time.Time, 0, maxPoints)
	for i := 0; i < maxPoints-1; i++ {
		instants = append(instants, start.Add(time.Duration(i)*step))
	}
	return append(instants, end)
}

// padSingle pairs a lone point with a synthetic copy placed lookback earlier so
// the series always renders as a line.
func padSingle(points []models.ChartPoint, rng models.TimeRange, lookback time.Duration) []models.ChartPoint {
	if len(points) != 1 {
		return points
	}
	only := points[0]
	t := only.Time.Add(-lookback)
	synthetic := models.ChartPoint{
		Time:       t,
		Label:      formatLabel(t, rng),
		Value:      only.Value,
		Provenance: models.ProvenanceSynthetic,
	}
	return []models.ChartPoint{synthetic, only}
}

// interpolate draws a straight line from baseline at instants[0] to live at the
// final instant. Only the final point carries the live provenance.
func interpolate(instants []time.Time, rng models.TimeRange, baseline float64, live valuation) []models.ChartPoint {
	points := make([]models.ChartPoint, len(instants))
	if len(instants) == 0 {
		return points
	}
	first, last := instants[0], instants[len(instants)-1]
	span := last.Sub(first).Seconds()

	for i, t := range instants {
		p := models.ChartPoint{Time: t, Label: formatLabel(t, rng)}
		if i == len(instants)-1 {
			p.Value = live.valueFloat()
			p.Provenance = live.provenance
			p.FallbackSymbols = live.fallbackSymbols
		} else {
			frac := 0.0
			if span > 0 {
				frac = t.Sub(first).Seconds() / span
			}
			p.Value = baseline + (live.valueFloat()-baseline)*frac
			p.Provenance = models.ProvenanceInterpolated
		}
		points[i] = p
	}
	return points
}

// compact drops interior points whose value and benchmark both match the
// previous kept point and the next point. First and last always survive.
func compact(points []models.ChartPoint) []models.ChartPoint {
	if len(points) < 3 {
		return points
	}
	out := make([]models.ChartPoint, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points)-1; i++ {
		prev, next := out[len(out)-1], points[i+1]
		if samePoint(prev, points[i]) && samePoint(points[i], next) {
			continue
		}
		out = append(out, points[i])
	}
	return append(out, points[len(points)-1])
}

func samePoint(a, b models.ChartPoint) bool {
	if a.Value != b.Value {
		return false
	}
	if (a.Benchmark == nil) != (b.Benchmark == nil) {
		return false
	}
	return a.Benchmark == nil || *a.Benchmark == *b.Benchmark
}

func formatLabel(t time.Time, rng models.TimeRange) string {
	switch rng {
	case models.Range1D:
		return t.Format("15:04")
	case models.Range1W:
		return t.Format("Mon 15:04")
	case models.Range1Y, models.RangeAll:
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("Jan 2")
	}
}
