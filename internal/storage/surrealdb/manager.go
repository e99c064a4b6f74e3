// Package surrealdb provides a SurrealDB storage backend for portfolios, holdings and snapshots.
package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
)

const (
	tablePortfolio = "portfolio"
	tableHolding   = "holding"
	tableSnapshot  = "snapshot"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	portfolios *PortfolioStore
	holdings   *HoldingStore
	snapshots  *SnapshotStore
}

// NewManager connects, signs in and selects the configured namespace/database.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	m, err := newManager(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")
	return m, nil
}

// newManager defines tables on an already-selected database.
func newManager(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Manager, error) {
	// SurrealDB v3 errors on querying non-existent tables
	for _, table := range []string{tablePortfolio, tableHolding, tableSnapshot} {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	return &Manager{
		db:         db,
		logger:     logger,
		portfolios: NewPortfolioStore(db, logger),
		holdings:   NewHoldingStore(db, logger),
		snapshots:  NewSnapshotStore(db, logger),
	}, nil
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore {
	return m.portfolios
}

func (m *Manager) HoldingStore() interfaces.HoldingStore {
	return m.holdings
}

func (m *Manager) SnapshotStore() interfaces.SnapshotStore {
	return m.snapshots
}

func (m *Manager) Backend() string {
	return "surrealdb"
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// isNotFoundError matches the errors SurrealDB returns for absent records.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

// isAlreadyExistsError matches a CREATE against an existing record id.
func isAlreadyExistsError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// firstResult unwraps the first statement's rows from a query response.
func firstResult[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 {
		return nil
	}
	return (*results)[0].Result
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
