// Package sqlite provides a GORM/SQLite storage backend for portfolios, holdings and snapshots.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// portfolioRow is the portfolios table.
type portfolioRow struct {
	ID              string          `gorm:"primaryKey"`
	UserID          string          `gorm:"index"`
	Name            string          `gorm:"not null"`
	AssetClass      string          `gorm:"not null;default:'stock'"`
	Symbols         string          // comma-separated crypto universe
	Currency        string          `gorm:"default:'USD'"`
	StartingCapital decimal.Decimal `gorm:"type:text;not null"`
	Cash            decimal.Decimal `gorm:"type:text;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (portfolioRow) TableName() string { return "portfolios" }

// holdingRow is the holdings table, one row per (portfolio, symbol).
type holdingRow struct {
	PortfolioID string          `gorm:"primaryKey"`
	Symbol      string          `gorm:"primaryKey"`
	Quantity    decimal.Decimal `gorm:"type:text;not null"`
	AvgCost     decimal.Decimal `gorm:"type:text;not null"`
	UpdatedAt   time.Time
}

func (holdingRow) TableName() string { return "holdings" }

// snapshotRow is the snapshots table, one row per (portfolio, UTC day).
type snapshotRow struct {
	PortfolioID string          `gorm:"primaryKey"`
	Date        string          `gorm:"primaryKey"` // YYYY-MM-DD
	TotalValue  decimal.Decimal `gorm:"type:text;not null"`
	CreatedAt   time.Time
}

func (snapshotRow) TableName() string { return "snapshots" }

// Manager implements interfaces.StorageManager on SQLite via GORM.
type Manager struct {
	db     *gorm.DB
	logger *common.Logger
}

// NewManager opens the database at path (":memory:" for an in-process database)
// and migrates the schema.
func NewManager(log *common.Logger, path string) (*Manager, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&portfolioRow{}, &holdingRow{}, &snapshotRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	log.Info().Str("path", path).Msg("SQLite storage opened")
	return &Manager{db: db, logger: log}, nil
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore { return (*portfolioStore)(m) }

func (m *Manager) HoldingStore() interfaces.HoldingStore { return (*holdingStore)(m) }

func (m *Manager) SnapshotStore() interfaces.SnapshotStore { return (*snapshotStore)(m) }

func (m *Manager) Backend() string { return "sqlite" }

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- Portfolios ---

type portfolioStore Manager

func (s *portfolioStore) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	var row portfolioRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("portfolio '%s': %w", id, models.ErrPortfolioNotFound)
		}
		return nil, fmt.Errorf("failed to get portfolio '%s': %w", id, err)
	}

	p := &models.Portfolio{
		ID:              row.ID,
		UserID:          row.UserID,
		Name:            row.Name,
		AssetClass:      models.ParseAssetClass(row.AssetClass),
		Currency:        row.Currency,
		StartingCapital: row.StartingCapital,
		Cash:            row.Cash,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.Symbols != "" {
		p.Symbols = strings.Split(row.Symbols, ",")
	}
	return p, nil
}

func (s *portfolioStore) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	db := s.db.WithContext(ctx)

	var existing portfolioRow
	if err := db.First(&existing, "id = ?", p.ID).Error; err == nil {
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()

	row := portfolioRow{
		ID:              p.ID,
		UserID:          p.UserID,
		Name:            p.Name,
		AssetClass:      string(p.AssetClass),
		Symbols:         strings.Join(p.Symbols, ","),
		Currency:        p.Currency,
		StartingCapital: p.StartingCapital,
		Cash:            p.Cash,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if row.AssetClass == "" {
		row.AssetClass = string(models.AssetClassStock)
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save portfolio '%s': %w", p.ID, err)
	}
	return nil
}

func (s *portfolioStore) ListPortfolios(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&portfolioRow{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return ids, nil
}

// --- Holdings ---

type holdingStore Manager

func (s *holdingStore) GetHoldings(ctx context.Context, portfolioID string) ([]models.Holding, error) {
	var rows []holdingRow
	if err := s.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Order("symbol").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get holdings for '%s': %w", portfolioID, err)
	}
	holdings := make([]models.Holding, len(rows))
	for i, r := range rows {
		holdings[i] = models.Holding{
			PortfolioID: r.PortfolioID,
			Symbol:      r.Symbol,
			Quantity:    r.Quantity,
			AvgCost:     r.AvgCost,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return holdings, nil
}

func (s *holdingStore) SaveHolding(ctx context.Context, h *models.Holding) error {
	h.Symbol = strings.ToUpper(h.Symbol)
	h.UpdatedAt = time.Now()
	row := holdingRow{
		PortfolioID: h.PortfolioID,
		Symbol:      h.Symbol,
		Quantity:    h.Quantity,
		AvgCost:     h.AvgCost,
		UpdatedAt:   h.UpdatedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "avg_cost", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save holding %s/%s: %w", h.PortfolioID, h.Symbol, err)
	}
	return nil
}

func (s *holdingStore) DeleteHolding(ctx context.Context, portfolioID, symbol string) error {
	err := s.db.WithContext(ctx).
		Where("portfolio_id = ? AND symbol = ?", portfolioID, strings.ToUpper(symbol)).
		Delete(&holdingRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete holding %s/%s: %w", portfolioID, symbol, err)
	}
	return nil
}

// --- Snapshots ---

type snapshotStore Manager

func (s *snapshotStore) GetSnapshots(ctx context.Context, portfolioID string) ([]models.Snapshot, error) {
	var rows []snapshotRow
	// ISO dates sort chronologically as text
	if err := s.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Order("date").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get snapshots for '%s': %w", portfolioID, err)
	}
	snaps := make([]models.Snapshot, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			s.logger.Warn().Str("portfolio", portfolioID).Str("date", r.Date).Msg("Skipping snapshot with unparsable date")
			continue
		}
		snaps = append(snaps, models.Snapshot{
			PortfolioID: r.PortfolioID,
			Date:        date,
			TotalValue:  r.TotalValue,
			CreatedAt:   r.CreatedAt,
		})
	}
	return snaps, nil
}

// AppendSnapshot inserts a snapshot; it never overwrites an existing day.
func (s *snapshotStore) AppendSnapshot(ctx context.Context, snap *models.Snapshot) error {
	snap.Date = common.StartOfDay(snap.Date)
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	row := snapshotRow{
		PortfolioID: snap.PortfolioID,
		Date:        common.DateKey(snap.Date),
		TotalValue:  snap.TotalValue,
		CreatedAt:   snap.CreatedAt,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to append snapshot %s/%s: %w", row.PortfolioID, row.Date, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("snapshot %s/%s: %w", row.PortfolioID, row.Date, models.ErrSnapshotExists)
	}
	return nil
}

func (s *snapshotStore) HasSnapshot(ctx context.Context, portfolioID string, date time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&snapshotRow{}).
		Where("portfolio_id = ? AND date = ?", portfolioID, common.DateKey(date)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	return count > 0, nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
