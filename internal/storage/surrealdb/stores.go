package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// Decimals are stored as strings so no precision is lost in transit.

type portfolioRecord struct {
	PortfolioID     string    `json:"portfolio_id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	AssetClass      string    `json:"asset_class"`
	Symbols         []string  `json:"symbols"`
	Currency        string    `json:"currency"`
	StartingCapital string    `json:"starting_capital"`
	Cash            string    `json:"cash"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type holdingRecord struct {
	PortfolioID string    `json:"portfolio_id"`
	Symbol      string    `json:"symbol"`
	Quantity    string    `json:"quantity"`
	AvgCost     string    `json:"avg_cost"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type snapshotRecord struct {
	PortfolioID string    `json:"portfolio_id"`
	Date        string    `json:"date"` // YYYY-MM-DD, UTC
	TotalValue  string    `json:"total_value"`
	CreatedAt   time.Time `json:"created_at"`
}

// parseDecimal reads a stored amount. A record that does not parse is
// corrupt and fails the load.
func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt %s %q: %w", field, s, err)
	}
	return d, nil
}

// --- Portfolios ---

type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{db: db, logger: logger}
}

func (s *PortfolioStore) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	rec, err := surrealdb.Select[portfolioRecord](ctx, s.db, surrealmodels.NewRecordID(tablePortfolio, id))
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to select portfolio: %w", err)
	}
	if rec == nil || rec.PortfolioID == "" {
		return nil, fmt.Errorf("portfolio '%s': %w", id, models.ErrPortfolioNotFound)
	}
	capital, err := parseDecimal("starting_capital", rec.StartingCapital)
	if err != nil {
		return nil, fmt.Errorf("portfolio '%s': %w", id, err)
	}
	cash, err := parseDecimal("cash", rec.Cash)
	if err != nil {
		return nil, fmt.Errorf("portfolio '%s': %w", id, err)
	}
	return &models.Portfolio{
		ID:              rec.PortfolioID,
		UserID:          rec.UserID,
		Name:            rec.Name,
		AssetClass:      models.ParseAssetClass(rec.AssetClass),
		Symbols:         rec.Symbols,
		Currency:        rec.Currency,
		StartingCapital: capital,
		Cash:            cash,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}, nil
}

func (s *PortfolioStore) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	now := time.Now().UTC()
	existing, err := s.GetPortfolio(ctx, p.ID)
	switch {
	case err == nil:
		p.CreatedAt = existing.CreatedAt
	case errors.Is(err, models.ErrPortfolioNotFound):
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	default:
		return err
	}
	p.UpdatedAt = now

	rec := portfolioRecord{
		PortfolioID:     p.ID,
		UserID:          p.UserID,
		Name:            p.Name,
		AssetClass:      string(p.AssetClass),
		Symbols:         p.Symbols,
		Currency:        p.Currency,
		StartingCapital: p.StartingCapital.String(),
		Cash:            p.Cash.String(),
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt,
	}
	sql := "UPSERT type::record($tb, $id) CONTENT $rec"
	vars := map[string]any{"tb": tablePortfolio, "id": p.ID, "rec": rec}
	if _, err := surrealdb.Query[[]portfolioRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save portfolio '%s': %w", p.ID, err)
	}
	return nil
}

func (s *PortfolioStore) ListPortfolios(ctx context.Context) ([]string, error) {
	sql := "SELECT portfolio_id FROM portfolio ORDER BY portfolio_id"
	results, err := surrealdb.Query[[]portfolioRecord](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	var ids []string
	for _, r := range firstResult(results) {
		ids = append(ids, r.PortfolioID)
	}
	return ids, nil
}

// --- Holdings ---

type HoldingStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewHoldingStore(db *surrealdb.DB, logger *common.Logger) *HoldingStore {
	return &HoldingStore{db: db, logger: logger}
}

// holdingID format: holding:<portfolioID>_<SYMBOL>
func holdingID(portfolioID, symbol string) string {
	return portfolioID + "_" + strings.ToUpper(symbol)
}

func (s *HoldingStore) GetHoldings(ctx context.Context, portfolioID string) ([]models.Holding, error) {
	sql := "SELECT * FROM holding WHERE portfolio_id = $pid ORDER BY symbol"
	results, err := surrealdb.Query[[]holdingRecord](ctx, s.db, sql, map[string]any{"pid": portfolioID})
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings for '%s': %w", portfolioID, err)
	}
	rows := firstResult(results)
	holdings := make([]models.Holding, len(rows))
	for i, r := range rows {
		qty, err := parseDecimal("quantity", r.Quantity)
		if err != nil {
			return nil, fmt.Errorf("holding %s/%s: %w", portfolioID, r.Symbol, err)
		}
		cost, err := parseDecimal("avg_cost", r.AvgCost)
		if err != nil {
			return nil, fmt.Errorf("holding %s/%s: %w", portfolioID, r.Symbol, err)
		}
		holdings[i] = models.Holding{
			PortfolioID: r.PortfolioID,
			Symbol:      r.Symbol,
			Quantity:    qty,
			AvgCost:     cost,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return holdings, nil
}

func (s *HoldingStore) SaveHolding(ctx context.Context, h *models.Holding) error {
	h.Symbol = strings.ToUpper(h.Symbol)
	h.UpdatedAt = time.Now().UTC()
	rec := holdingRecord{
		PortfolioID: h.PortfolioID,
		Symbol:      h.Symbol,
		Quantity:    h.Quantity.String(),
		AvgCost:     h.AvgCost.String(),
		UpdatedAt:   h.UpdatedAt,
	}
	sql := "UPSERT type::record($tb, $id) CONTENT $rec"
	vars := map[string]any{"tb": tableHolding, "id": holdingID(h.PortfolioID, h.Symbol), "rec": rec}
	if _, err := surrealdb.Query[[]holdingRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save holding %s/%s: %w", h.PortfolioID, h.Symbol, err)
	}
	return nil
}

func (s *HoldingStore) DeleteHolding(ctx context.Context, portfolioID, symbol string) error {
	_, err := surrealdb.Delete[holdingRecord](ctx, s.db, surrealmodels.NewRecordID(tableHolding, holdingID(portfolioID, symbol)))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete holding %s/%s: %w", portfolioID, symbol, err)
	}
	return nil
}

// --- Snapshots ---

type SnapshotStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewSnapshotStore(db *surrealdb.DB, logger *common.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

// snapshotID format: snapshot:<portfolioID>_<YYYYMMDD>
func snapshotID(portfolioID string, date time.Time) string {
	return portfolioID + "_" + date.UTC().Format("20060102")
}

func (s *SnapshotStore) GetSnapshots(ctx context.Context, portfolioID string) ([]models.Snapshot, error) {
	sql := "SELECT * FROM snapshot WHERE portfolio_id = $pid ORDER BY date ASC"
	results, err := surrealdb.Query[[]snapshotRecord](ctx, s.db, sql, map[string]any{"pid": portfolioID})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots for '%s': %w", portfolioID, err)
	}
	rows := firstResult(results)
	snaps := make([]models.Snapshot, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, fmt.Errorf("snapshot for '%s': corrupt date %q: %w", portfolioID, r.Date, err)
		}
		total, err := parseDecimal("total_value", r.TotalValue)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s/%s: %w", portfolioID, r.Date, err)
		}
		snaps = append(snaps, models.Snapshot{
			PortfolioID: r.PortfolioID,
			Date:        date,
			TotalValue:  total,
			CreatedAt:   r.CreatedAt,
		})
	}
	return snaps, nil
}

// AppendSnapshot creates the day's record; CREATE fails on an existing id, so
// a recorded day is never overwritten.
func (s *SnapshotStore) AppendSnapshot(ctx context.Context, snap *models.Snapshot) error {
	snap.Date = common.StartOfDay(snap.Date)
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	rec := snapshotRecord{
		PortfolioID: snap.PortfolioID,
		Date:        common.DateKey(snap.Date),
		TotalValue:  snap.TotalValue.String(),
		CreatedAt:   snap.CreatedAt.UTC(),
	}
	id := snapshotID(snap.PortfolioID, snap.Date)
	sql := "CREATE type::record($tb, $id) CONTENT $rec"
	vars := map[string]any{"tb": tableSnapshot, "id": id, "rec": rec}
	if _, err := surrealdb.Query[[]snapshotRecord](ctx, s.db, sql, vars); err != nil {
		if isAlreadyExistsError(err) {
			return fmt.Errorf("snapshot '%s': %w", id, models.ErrSnapshotExists)
		}
		return fmt.Errorf("failed to append snapshot '%s': %w", id, err)
	}
	return nil
}

func (s *SnapshotStore) HasSnapshot(ctx context.Context, portfolioID string, date time.Time) (bool, error) {
	rec, err := surrealdb.Select[snapshotRecord](ctx, s.db, surrealmodels.NewRecordID(tableSnapshot, snapshotID(portfolioID, date)))
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	return rec != nil && rec.PortfolioID != "", nil
}
