// Package storage selects and opens the configured persistence backend.
package storage

import (
	"fmt"
	"strings"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/storage/badger"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/storage/sqlite"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendBadger    = "badger"
	BackendSurrealDB = "surrealdb"
	BackendSQLite    = "sqlite"
)

// NewStorageManager opens the backend named by config.Storage.Backend.
// Supported backends: "badger" (default), "surrealdb", "sqlite".
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	if backend == "" {
		backend = BackendBadger
	}

	var (
		m   interfaces.StorageManager
		err error
	)
	switch backend {
	case BackendBadger:
		m, err = badger.NewManager(logger, config.Storage.Path)

	case BackendSurrealDB:
		m, err = surrealdb.NewManager(logger, config)

	case BackendSQLite:
		m, err = sqlite.NewManager(logger, config.Storage.SQLitePath)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: badger, surrealdb, sqlite)", backend)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
