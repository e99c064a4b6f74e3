package valuation

import (
	"fmt"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// ResolvedRange is a concrete chart window. End is always the query's now.
type ResolvedRange struct {
	Range       models.TimeRange
	Start       time.Time
	End         time.Time
	Granularity models.Granularity
	MaxPoints   int
	Lookback    time.Duration // offset of the synthetic point for single-point series
}

// Width returns End - Start.
func (r ResolvedRange) Width() time.Duration {
	return r.End.Sub(r.Start)
}

// ResolveRange turns a range token into [start, now]. The start never precedes
// earliest, the oldest snapshot or the portfolio's creation instant.
func ResolveRange(rng models.TimeRange, earliest, now time.Time, opts Options) (ResolvedRange, error) {
	naive, err := naiveStart(rng, earliest, now)
	if err != nil {
		return ResolvedRange{}, err
	}

	start := naive
	if !earliest.IsZero() && earliest.After(start) {
		start = earliest
	}
	if start.After(now) {
		start = now
	}

	rr := ResolvedRange{
		Range:       rng,
		Start:       start,
		End:         now,
		Granularity: granularityFor(rng),
		MaxPoints:   opts.MaxPoints,
		Lookback:    opts.Lookback,
	}
	switch rng {
	case models.Range1D:
		rr.MaxPoints = opts.MaxPointsIntraday
	case models.Range1W:
		rr.Lookback = opts.LookbackWeek
	}
	return rr, nil
}

func naiveStart(rng models.TimeRange, earliest, now time.Time) (time.Time, error) {
	switch rng {
	case models.Range1D:
		return now.Add(-24 * time.Hour), nil
	case models.Range1W:
		return now.Add(-7 * 24 * time.Hour), nil
	case models.Range1M:
		return now.AddDate(0, -1, 0), nil
	case models.Range3M:
		return now.AddDate(0, -3, 0), nil
	case models.RangeYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	case models.Range1Y:
		return now.AddDate(-1, 0, 0), nil
	case models.RangeAll:
		if earliest.IsZero() {
			return now, nil
		}
		return earliest, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", models.ErrUnknownRange, string(rng))
}

func granularityFor(rng models.TimeRange) models.Granularity {
	switch rng {
	case models.Range1D:
		return models.GranularityFiveMinutes
	case models.Range1W:
		return models.GranularityHourly
	default:
		return models.GranularityDaily
	}
}
