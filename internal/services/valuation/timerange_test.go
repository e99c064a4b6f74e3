package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

func TestResolveRange_NaiveStarts(t *testing.T) {
	now := time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)
	earliest := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	opts := DefaultOptions()

	tests := []struct {
		rng   models.TimeRange
		start time.Time
		gran  models.Granularity
	}{
		{models.Range1D, now.Add(-24 * time.Hour), models.GranularityFiveMinutes},
		{models.Range1W, now.Add(-7 * 24 * time.Hour), models.GranularityHourly},
		{models.Range1M, time.Date(2025, 5, 11, 15, 0, 0, 0, time.UTC), models.GranularityDaily},
		{models.Range3M, time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC), models.GranularityDaily},
		{models.RangeYTD, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), models.GranularityDaily},
		{models.Range1Y, time.Date(2024, 6, 11, 15, 0, 0, 0, time.UTC), models.GranularityDaily},
		{models.RangeAll, earliest, models.GranularityDaily},
	}
	for _, tt := range tests {
		t.Run(string(tt.rng), func(t *testing.T) {
			rr, err := ResolveRange(tt.rng, earliest, now, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.start, rr.Start)
			assert.Equal(t, now, rr.End)
			assert.Equal(t, tt.gran, rr.Granularity)
		})
	}
}

func TestResolveRange_ClampsToEarliest(t *testing.T) {
	now := time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)
	firstSnapshot := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rr, err := ResolveRange(models.RangeAll, firstSnapshot, now, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, firstSnapshot, rr.Start)

	// a calendar year back would precede the first snapshot
	rr, err = ResolveRange(models.Range1Y, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), now, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), rr.Start)
}

func TestResolveRange_NewPortfolio(t *testing.T) {
	now := time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)
	created := now.Add(-2 * time.Hour)

	rr, err := ResolveRange(models.Range1D, created, now, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, created, rr.Start)
	assert.Equal(t, 40, rr.MaxPoints)

	// creation stamped slightly in the future collapses to now
	rr, err = ResolveRange(models.Range1M, now.Add(time.Second), now, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, now, rr.Start)
	assert.Zero(t, rr.Width())
}

func TestResolveRange_PointsAndLookback(t *testing.T) {
	now := time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)
	opts := DefaultOptions()

	week, err := ResolveRange(models.Range1W, time.Time{}, now, opts)
	require.NoError(t, err)
	assert.Equal(t, 60, week.MaxPoints)
	assert.Equal(t, 7*24*time.Hour, week.Lookback)

	month, err := ResolveRange(models.Range1M, time.Time{}, now, opts)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, month.Lookback)
}

func TestResolveRange_UnknownRange(t *testing.T) {
	_, err := ResolveRange(models.TimeRange("5Y"), time.Time{}, time.Now(), DefaultOptions())
	assert.ErrorIs(t, err, models.ErrUnknownRange)
}
