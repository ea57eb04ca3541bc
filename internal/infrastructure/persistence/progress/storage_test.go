package progress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/edify/internal/domain/entities/progress"
	"github.com/AtRiskMedia/edify/internal/domain/repositories"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/pkg/config"
)

func sampleCollection() progress.Collection {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return progress.Collection{{
		RoadmapID: "programming",
		CompletedSteps: []progress.StepProgress{
			{RoadmapID: "programming", PhaseIndex: 0, StepIndex: 1, CompletedAt: at},
		},
		StartedAt:      at,
		LastActivityAt: at,
	}}
}

func exerciseStorage(t *testing.T, s repositories.ProgressStorage) {
	t.Helper()

	_, err := s.Load()
	require.ErrorIs(t, err, repositories.ErrNotFound)

	want := sampleCollection()
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.Save(progress.Collection{}))
	got, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage(config.DefaultStorageKey))
}

func TestMemoryStorageCorruptValue(t *testing.T) {
	s := NewMemoryStorage(config.DefaultStorageKey)
	s.SetRaw([]byte("{oops"))
	_, err := s.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrNotFound)
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "progress.json")
	exerciseStorage(t, NewFileStorage(path, config.DefaultStorageKey, logging.NewNopLogger()))
}

func TestFileStorageKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0644))

	s := NewFileStorage(path, config.DefaultStorageKey, logging.NewNopLogger())
	_, err := s.Load()
	require.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, s.Save(sampleCollection()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"theme": "dark"`)
	assert.Contains(t, string(data), `"edify-progress"`)
}

func TestFileStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	s := NewFileStorage(path, config.DefaultStorageKey, logging.NewNopLogger())
	_, err := s.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrNotFound)

	// A save recovers the file.
	require.NoError(t, s.Save(sampleCollection()))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFileStorageCorruptValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"edify-progress":"[not an array"}`), 0644))

	s := NewFileStorage(path, config.DefaultStorageKey, logging.NewNopLogger())
	_, err := s.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrNotFound)
}

func TestSQLiteStorage(t *testing.T) {
	cfg := config.StorageConfig{
		Driver: config.StorageDriverSQLite,
		Path:   filepath.Join(t.TempDir(), "progress.db"),
		Key:    config.DefaultStorageKey,
	}
	s, closeFn, err := Open(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	exerciseStorage(t, s)
	assert.Equal(t, "sqlite3#edify-progress", s.Describe())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, closeFn, err := Open(config.StorageConfig{Driver: "floppy"}, logging.NewNopLogger())
	require.Error(t, err)
	require.NotNil(t, closeFn)
	assert.NoError(t, closeFn())
}

func TestEncodeNil(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	c, err := Decode([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, c)
}
