// Package models defines data structures for the finance services
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetClass selects how a portfolio's instruments are priced.
type AssetClass string

const (
	AssetClassStock  AssetClass = "stock"
	AssetClassCrypto AssetClass = "crypto"
)

// ParseAssetClass maps a free-form string onto an AssetClass, defaulting to stock.
func ParseAssetClass(s string) AssetClass {
	if strings.EqualFold(strings.TrimSpace(s), string(AssetClassCrypto)) {
		return AssetClassCrypto
	}
	return AssetClassStock
}

// Portfolio is a paper-trading portfolio owned by one user.
// Everything except Cash is fixed at creation; trade execution mutates Cash and holdings.
type Portfolio struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	AssetClass      AssetClass      `json:"asset_class"`
	Symbols         []string        `json:"symbols,omitempty"` // crypto universe
	Currency        string          `json:"currency"`
	StartingCapital decimal.Decimal `json:"starting_capital"`
	Cash            decimal.Decimal `json:"cash"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsCrypto reports whether the portfolio is priced from crypto candles.
func (p *Portfolio) IsCrypto() bool {
	return p.AssetClass == AssetClassCrypto
}

// Holding is a position in one instrument. Read-only to valuation.
type Holding struct {
	PortfolioID string          `json:"portfolio_id"`
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgCost     decimal.Decimal `json:"avg_cost"` // average cost basis per unit
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CostValue returns quantity × average cost.
func (h Holding) CostValue() decimal.Decimal {
	return h.Quantity.Mul(h.AvgCost)
}

// HoldingKey is the storage key of a holding.
func HoldingKey(portfolioID, symbol string) string {
	return portfolioID + "|" + strings.ToUpper(symbol)
}

// Snapshot is a recorded total value for one portfolio on one UTC calendar day.
// Append-only: at most one per portfolio per day, never mutated.
type Snapshot struct {
	PortfolioID string          `json:"portfolio_id"`
	Date        time.Time       `json:"date"` // midnight UTC
	TotalValue  decimal.Decimal `json:"total_value"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SnapshotKey is the storage key of a snapshot.
func SnapshotKey(portfolioID string, date time.Time) string {
	return portfolioID + "|" + date.UTC().Format("2006-01-02")
}

// PortfolioState is everything valuation needs about a portfolio at query time.
type PortfolioState struct {
	Portfolio *Portfolio
	Holdings  []Holding
	Snapshots []Snapshot // ascending by date
}

// HeldSymbols returns the distinct instrument symbols held.
func (s *PortfolioState) HeldSymbols() []string {
	seen := make(map[string]bool, len(s.Holdings))
	out := make([]string, 0, len(s.Holdings))
	for _, h := range s.Holdings {
		sym := strings.ToUpper(h.Symbol)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// EarliestKnown returns the oldest snapshot date, or the creation instant if none exist.
func (s *PortfolioState) EarliestKnown() time.Time {
	if len(s.Snapshots) > 0 {
		return s.Snapshots[0].Date
	}
	return s.Portfolio.CreatedAt
}
