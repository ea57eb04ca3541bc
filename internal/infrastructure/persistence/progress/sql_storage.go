package progress

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/edify/internal/domain/entities/progress"
	"github.com/AtRiskMedia/edify/internal/domain/repositories"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/persistence/database"
)

// SQLStorage keeps the document in the kv_store table. It works against
// both a local SQLite file and a remote libSQL database.
type SQLStorage struct {
	db     *database.DB
	key    string
	logger *logging.ChanneledLogger
}

// NewSQLStorage ensures the schema exists and returns the storage.
func NewSQLStorage(db *database.DB, key string, logger *logging.ChanneledLogger) (*SQLStorage, error) {
	if err := database.CreateSchema(db); err != nil {
		return nil, fmt.Errorf("failed to prepare progress schema: %w", err)
	}
	return &SQLStorage{db: db, key: key, logger: logger}, nil
}

func (s *SQLStorage) Describe() string {
	return fmt.Sprintf("%s#%s", s.db.Driver, s.key)
}

func (s *SQLStorage) Load() (progress.Collection, error) {
	start := time.Now()
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, s.key).Scan(&value)
	database.CheckAndLogSlowQuery(s.logger, "SELECT kv_store", time.Since(start))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	return Decode([]byte(value))
}

func (s *SQLStorage) Save(c progress.Collection) error {
	value, err := Encode(c)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = s.db.Exec(`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	database.CheckAndLogSlowQuery(s.logger, "UPSERT kv_store", time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}

	s.logger.Storage().Debug("Progress written", "driver", s.db.Driver, "key", s.key, "bytes", len(value))
	return nil
}
