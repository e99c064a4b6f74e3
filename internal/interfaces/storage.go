package interfaces

import (
	"context"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// StorageManager coordinates the persistence backend
type StorageManager interface {
	PortfolioStore() PortfolioStore
	HoldingStore() HoldingStore
	SnapshotStore() SnapshotStore

	// Backend names the active backend ("badger", "surrealdb", "sqlite")
	Backend() string

	Close() error
}

// PortfolioStore persists portfolio records
type PortfolioStore interface {
	// GetPortfolio returns models.ErrPortfolioNotFound (wrapped) when absent
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	SavePortfolio(ctx context.Context, p *models.Portfolio) error
	ListPortfolios(ctx context.Context) ([]string, error)
}

// HoldingStore persists positions
type HoldingStore interface {
	GetHoldings(ctx context.Context, portfolioID string) ([]models.Holding, error)
	SaveHolding(ctx context.Context, h *models.Holding) error
	DeleteHolding(ctx context.Context, portfolioID, symbol string) error
}

// SnapshotStore persists the append-only daily value record
type SnapshotStore interface {
	// GetSnapshots returns snapshots ascending by date
	GetSnapshots(ctx context.Context, portfolioID string) ([]models.Snapshot, error)

	// AppendSnapshot returns models.ErrSnapshotExists (wrapped) if the day is already recorded
	AppendSnapshot(ctx context.Context, s *models.Snapshot) error

	HasSnapshot(ctx context.Context, portfolioID string, date time.Time) (bool, error)
}
