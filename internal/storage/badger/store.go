// Package badger provides BadgerHold-based storage for portfolios, holdings and snapshots.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// Manager implements interfaces.StorageManager on a single embedded BadgerHold database.
type Manager struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewManager opens (or creates) the BadgerHold database at path.
func NewManager(logger *common.Logger, path string) (*Manager, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Info().Str("path", path).Msg("BadgerHold storage opened")
	return &Manager{db: db, logger: logger}, nil
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore { return (*portfolioStore)(m) }

func (m *Manager) HoldingStore() interfaces.HoldingStore { return (*holdingStore)(m) }

func (m *Manager) SnapshotStore() interfaces.SnapshotStore { return (*snapshotStore)(m) }

func (m *Manager) Backend() string { return "badger" }

// Close closes the BadgerHold database.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// --- Portfolios ---

type portfolioStore Manager

func (s *portfolioStore) GetPortfolio(_ context.Context, id string) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := s.db.Get(id, &p); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("portfolio '%s': %w", id, models.ErrPortfolioNotFound)
		}
		return nil, fmt.Errorf("failed to get portfolio '%s': %w", id, err)
	}
	return &p, nil
}

func (s *portfolioStore) SavePortfolio(_ context.Context, p *models.Portfolio) error {
	now := time.Now()
	var existing models.Portfolio
	if err := s.db.Get(p.ID, &existing); err == nil {
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := s.db.Upsert(p.ID, p); err != nil {
		return fmt.Errorf("failed to save portfolio '%s': %w", p.ID, err)
	}
	s.logger.Debug().Str("portfolio", p.ID).Msg("Portfolio saved")
	return nil
}

func (s *portfolioStore) ListPortfolios(_ context.Context) ([]string, error) {
	var portfolios []models.Portfolio
	if err := s.db.Find(&portfolios, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	ids := make([]string, len(portfolios))
	for i, p := range portfolios {
		ids[i] = p.ID
	}
	sort.Strings(ids)
	return ids, nil
}

// --- Holdings ---

type holdingStore Manager

func (s *holdingStore) GetHoldings(_ context.Context, portfolioID string) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Find(&holdings, badgerhold.Where("PortfolioID").Eq(portfolioID)); err != nil {
		return nil, fmt.Errorf("failed to get holdings for '%s': %w", portfolioID, err)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

func (s *holdingStore) SaveHolding(_ context.Context, h *models.Holding) error {
	h.Symbol = strings.ToUpper(h.Symbol)
	h.UpdatedAt = time.Now()
	key := models.HoldingKey(h.PortfolioID, h.Symbol)
	if err := s.db.Upsert(key, h); err != nil {
		return fmt.Errorf("failed to save holding '%s': %w", key, err)
	}
	return nil
}

func (s *holdingStore) DeleteHolding(_ context.Context, portfolioID, symbol string) error {
	key := models.HoldingKey(portfolioID, symbol)
	if err := s.db.Delete(key, models.Holding{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete holding '%s': %w", key, err)
	}
	return nil
}

// --- Snapshots ---

type snapshotStore Manager

func (s *snapshotStore) GetSnapshots(_ context.Context, portfolioID string) ([]models.Snapshot, error) {
	var snaps []models.Snapshot
	if err := s.db.Find(&snaps, badgerhold.Where("PortfolioID").Eq(portfolioID)); err != nil {
		return nil, fmt.Errorf("failed to get snapshots for '%s': %w", portfolioID, err)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Date.Before(snaps[j].Date) })
	return snaps, nil
}

// AppendSnapshot inserts a snapshot; it never overwrites an existing day.
func (s *snapshotStore) AppendSnapshot(_ context.Context, snap *models.Snapshot) error {
	snap.Date = common.StartOfDay(snap.Date)
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	key := models.SnapshotKey(snap.PortfolioID, snap.Date)
	if err := s.db.Insert(key, snap); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("snapshot '%s': %w", key, models.ErrSnapshotExists)
		}
		return fmt.Errorf("failed to append snapshot '%s': %w", key, err)
	}
	s.logger.Debug().Str("key", key).Msg("Snapshot appended")
	return nil
}

func (s *snapshotStore) HasSnapshot(_ context.Context, portfolioID string, date time.Time) (bool, error) {
	var snap models.Snapshot
	err := s.db.Get(models.SnapshotKey(portfolioID, date), &snap)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check snapshot: %w", err)
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
