package valuation

import (
	"sort"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// PriceAt returns the price of the latest point at or before t. When t precedes
// the whole series the earliest price is used. An empty series reports false.
func PriceAt(series models.PriceSeries, t time.Time) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	idx := sort.Search(len(series), func(i int) bool { return series[i].Time.After(t) })
	if idx == 0 {
		return series[0].Price, true
	}
	return series[idx-1].Price, true
}
