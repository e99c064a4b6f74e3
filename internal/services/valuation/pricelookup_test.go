package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

func TestPriceAt_StepFunction(t *testing.T) {
	t1 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	series := models.PriceSeries{{Time: t1, Price: 10}, {Time: t2, Price: 12}}

	tests := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"before first clamps to earliest", t1.Add(-time.Hour), 10},
		{"at first", t1, 10},
		{"between", t1.Add(12 * time.Hour), 10},
		{"just before second", t2.Add(-time.Nanosecond), 10},
		{"at second", t2, 12},
		{"after last", t2.AddDate(1, 0, 0), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PriceAt(series, tt.at)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceAt_Empty(t *testing.T) {
	_, ok := PriceAt(nil, time.Now())
	assert.False(t, ok)
	_, ok = PriceAt(models.PriceSeries{}, time.Now())
	assert.False(t, ok)
}

func TestPriceAt_CandleCloses(t *testing.T) {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	series := models.CandlesToSeries([]models.Candle{
		{Time: base.Add(time.Hour), Open: 1, Close: 101},
		{Time: base, Open: 1, Close: 100},
	})

	// sample instants rarely land on candle boundaries
	got, ok := PriceAt(series, base.Add(37*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 100.0, got)

	got, _ = PriceAt(series, base.Add(61*time.Minute))
	assert.Equal(t, 101.0, got)
}
