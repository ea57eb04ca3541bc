package container

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/edify/internal/domain/events"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/pkg/config"
)

func TestNewContainerWiresStoreToBroadcaster(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageDriverMemory

	c, err := NewContainer(cfg, logging.NewNopLogger())
	require.NoError(t, err)

	_, ch := c.ProgressSSE.AddClient("english")
	_, err = c.ProgressService.Toggle("english", 0, 0)
	require.NoError(t, err)

	message := <-ch
	assert.Contains(t, message, "event: progress")
	assert.Contains(t, message, string(events.StepCompleted))

	require.NoError(t, c.Close())
	_, open := <-ch
	assert.False(t, open, "closing the container disconnects SSE clients")
}

func TestNewContainerUsesSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageDriverSQLite
	cfg.Storage.Path = filepath.Join(t.TempDir(), "edify.db")

	c, err := NewContainer(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	_, err = c.ProgressService.Toggle("career", 1, 1)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	reopened, err := NewContainer(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.ProgressStore.IsStepComplete("career", 1, 1))
	assert.Equal(t, "sqlite", reopened.ProgressService.Status().Driver)
}

func TestNewContainerRejectsBadConfiguration(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Log.Level = "chatty"
	_, err := NewContainer(cfg, nil)
	assert.ErrorContains(t, err, "invalid log configuration")

	cfg = config.Default()
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewContainer(cfg, logging.NewNopLogger())
	assert.ErrorContains(t, err, "failed to load catalog")
}

func TestLoggerConfig(t *testing.T) {
	lc, err := LoggerConfig(config.LogConfig{Level: "warn", Channels: map[string]string{"storage": "debug"}, JSON: true, ToConsole: true})
	require.NoError(t, err)
	assert.True(t, lc.JSONFormat)
	assert.Equal(t, "WARN", lc.DefaultLevel.String())
	assert.Equal(t, "DEBUG", lc.ChannelLevels[logging.ChannelStorage].String())

	_, err = LoggerConfig(config.LogConfig{Level: "info", Channels: map[string]string{"storage": "shout"}})
	assert.ErrorContains(t, err, "log.channels.storage")
}
