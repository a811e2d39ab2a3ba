package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/terraincognita07/waterline/internal/config"
	"github.com/terraincognita07/waterline/internal/db"
	"github.com/terraincognita07/waterline/internal/store"
	"go.uber.org/zap"
)

// Backend is a store backend that can enumerate its installations.
type Backend interface {
	store.Backend
	ListScopes(ctx context.Context) ([]string, error)
}

// openBackend opens the backend selected by cfg. The returned close function
// is never nil.
func openBackend(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Backend, func(), error) {
	noop := func() {}
	switch cfg.Driver {
	case config.DriverSQLite:
		database, err := db.OpenSQLite(cfg.DBPath, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("database init failed: %w", err)
		}
		closeDatabase := func() {
			if sqlDB, err := database.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return db.NewRecordRepository(database), closeDatabase, nil
	case config.DriverPostgres:
		pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres init failed: %w", err)
		}
		return db.NewPostgresRecordStore(pool), pool.Close, nil
	case config.DriverFile:
		backend, err := store.NewFileBackend(afero.NewOsFs(), filepath.Clean(cfg.DataDir))
		if err != nil {
			return nil, noop, fmt.Errorf("file store init failed: %w", err)
		}
		return backend, noop, nil
	case config.DriverMemory:
		return store.NewMemoryBackend(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
