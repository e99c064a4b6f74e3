package valuation

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// valuation is the priced total of a portfolio at one instant.
type valuation struct {
	at              time.Time
	cash            decimal.Decimal
	holdings        decimal.Decimal
	provenance      models.Provenance
	fallbackSymbols []string
}

func (v valuation) value() decimal.Decimal {
	return v.cash.Add(v.holdings)
}

func (v valuation) valueFloat() float64 {
	return v.value().InexactFloat64()
}

// valueAt computes cash + Σ quantity × price at t. Each holding is priced from
// the first available of: the live price when t is now; the step lookup into
// its history; the live price when no history exists; its average cost.
// Holdings priced at cost are listed in fallbackSymbols.
func valueAt(state *models.PortfolioState, book *PriceBook, t time.Time, isNow bool) valuation {
	v := valuation{
		at:         t,
		cash:       state.Portfolio.Cash,
		provenance: models.ProvenanceMarket,
	}

	for _, h := range state.Holdings {
		if h.Quantity.IsZero() {
			continue
		}
		sym := strings.ToUpper(h.Symbol)
		price, ok := marketPrice(book, sym, t, isNow)
		if !ok {
			v.holdings = v.holdings.Add(h.CostValue())
			v.fallbackSymbols = append(v.fallbackSymbols, sym)
			continue
		}
		v.holdings = v.holdings.Add(h.Quantity.Mul(decimal.NewFromFloat(price)))
	}

	if len(v.fallbackSymbols) > 0 {
		v.provenance = models.ProvenanceCostBasis
		sort.Strings(v.fallbackSymbols)
	}
	return v
}

func marketPrice(book *PriceBook, sym string, t time.Time, isNow bool) (float64, bool) {
	if book == nil {
		return 0, false
	}
	live, hasLive := book.Live[sym]
	hasLive = hasLive && live > 0
	if isNow && hasLive {
		return live, true
	}
	if price, ok := PriceAt(book.History[sym], t); ok {
		return price, true
	}
	if hasLive {
		return live, true
	}
	return 0, false
}

// reconstruct values the portfolio at every instant. The final instant is
// priced as now. A historical point that needed cost-basis pricing is replaced
// by a snapshot recorded the same UTC day, if one exists.
func reconstruct(state *models.PortfolioState, book *PriceBook, instants []time.Time, rng models.TimeRange) []models.ChartPoint {
	snapshots := make(map[string]decimal.Decimal, len(state.Snapshots))
	for _, s := range state.Snapshots {
		snapshots[common.DateKey(s.Date)] = s.TotalValue
	}

	points := make([]models.ChartPoint, 0, len(instants))
	for i, t := range instants {
		isNow := i == len(instants)-1
		v := valueAt(state, book, t, isNow)

		p := models.ChartPoint{
			Time:            t,
			Label:           formatLabel(t, rng),
			Value:           v.valueFloat(),
			Provenance:      v.provenance,
			FallbackSymbols: v.fallbackSymbols,
		}
		if !isNow && v.provenance == models.ProvenanceCostBasis {
			if recorded, ok := snapshots[common.DateKey(t)]; ok {
				p.Value = recorded.InexactFloat64()
				p.Provenance = models.ProvenanceSnapshot
				p.FallbackSymbols = nil
			}
		}
		points = append(points, p)
	}
	return points
}

// intradayBaseline is the most recent snapshot value, or starting capital when
// nothing has been recorded yet.
func intradayBaseline(state *models.PortfolioState) decimal.Decimal {
	if n := len(state.Snapshots); n > 0 {
		return state.Snapshots[n-1].TotalValue
	}
	return state.Portfolio.StartingCapital
}
