package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/AtRiskMedia/edify/internal/domain/entities/progress"
	"github.com/AtRiskMedia/edify/internal/domain/repositories"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
)

// FileStorage keeps a JSON object of key -> document in one file, the way a
// browser keeps localStorage. Only the configured key is read or replaced;
// other keys in the file are preserved.
type FileStorage struct {
	path   string
	key    string
	logger *logging.ChanneledLogger
}

// NewFileStorage creates a file-backed storage. The file need not exist yet.
func NewFileStorage(path, key string, logger *logging.ChanneledLogger) *FileStorage {
	return &FileStorage{path: path, key: key, logger: logger}
}

func (s *FileStorage) Describe() string {
	return fmt.Sprintf("file:%s#%s", s.path, s.key)
}

func (s *FileStorage) readDocument() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStorage) Load() (progress.Collection, error) {
	doc, err := s.readDocument()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	raw, ok := doc[s.key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return Decode(raw)
}

// Save replaces the key's value and rewrites the file atomically.
func (s *FileStorage) Save(c progress.Collection) error {
	value, err := Encode(c)
	if err != nil {
		return err
	}

	doc, err := s.readDocument()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Storage().Warn("Existing progress file unreadable, replacing it", "path", s.path, "error", err.Error())
		}
		doc = make(map[string]json.RawMessage)
	}
	doc[s.key] = value

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode progress file: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}

	s.logger.Storage().Debug("Progress written", "path", s.path, "key", s.key, "bytes", len(value))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
