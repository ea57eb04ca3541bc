package progress

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AtRiskMedia/edify/internal/domain/repositories"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/edify/pkg/config"
)

// Open builds the storage backend selected by cfg.Driver. The returned close
// function releases any database connection and is never nil.
func Open(cfg config.StorageConfig, logger *logging.ChanneledLogger) (repositories.ProgressStorage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.StorageDriverFile:
		return NewFileStorage(cfg.Path, cfg.Key, logger), noop, nil

	case config.StorageDriverMemory:
		return NewMemoryStorage(cfg.Key), noop, nil

	case config.StorageDriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, noop, fmt.Errorf("failed to create storage directory: %w", err)
		}
		return openSQL(database.DriverSQLite, database.SQLiteDSN(cfg.Path), cfg.Key, logger)

	case config.StorageDriverLibSQL:
		return openSQL(database.DriverLibSQL, database.LibSQLDSN(cfg.LibSQLURL, cfg.LibSQLToken), cfg.Key, logger)

	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openSQL(driver, dsn, key string, logger *logging.ChanneledLogger) (repositories.ProgressStorage, func() error, error) {
	noop := func() error { return nil }

	db, err := database.NewConnectionWithLogger(driver, dsn, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	storage, err := NewSQLStorage(db, key, logger)
	if err != nil {
		db.Close()
		return nil, noop, err
	}
	return storage, db.Close, nil
}
