package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestChannelsWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{Console: &buf, JSONFormat: true, DefaultLevel: slog.LevelInfo})
	require.NoError(t, err)
	defer logger.Close()

	logger.Progress().Info("Step toggled", "roadmapId", "programming")
	logger.Progress().Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "progress", entry["channel"])
	assert.Equal(t, "programming", entry["roadmapId"])
}

func TestSetChannelLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{Console: &buf, DefaultLevel: slog.LevelInfo})
	require.NoError(t, err)
	defer logger.Close()

	require.NoError(t, logger.SetChannelLevel(ChannelStorage, slog.LevelDebug))
	buf.Reset()
	logger.Storage().Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
	assert.Equal(t, "DEBUG", logger.GetChannelLevels()["storage"])

	assert.Error(t, logger.SetChannelLevel(Channel("nope"), slog.LevelDebug))
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{Console: &buf, JSONFormat: true})
	require.NoError(t, err)
	defer logger.Close()

	logger.LogError(ChannelContact, "send", errors.New("smtp down"), map[string]any{"id": "x"})
	assert.Contains(t, buf.String(), `"error":"smtp down"`)
	assert.Contains(t, buf.String(), `"operation":"send"`)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" warn ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestBroadcasterStreamsFilteredEntries(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger, err := NewChanneledLogger(&LoggerConfig{Console: &bytes.Buffer{}, Broadcast: true, JSONFormat: true})
	require.NoError(t, err)

	b := logger.Broadcaster()
	require.NotNil(t, b)
	client := b.NewClient(AppliedFilters{Channel: ChannelAuth, Level: slog.LevelWarn})
	b.RegisterClient(client)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	logger.Auth().Info("ignored by level")
	logger.Content().Warn("ignored by channel")
	logger.Auth().Warn("bad password")

	select {
	case msg := <-client.Channel:
		var entry LogEntry
		require.NoError(t, json.Unmarshal(msg, &entry))
		assert.Equal(t, "bad password", entry.Message)
		assert.Equal(t, "auth", entry.Channel)
		assert.Equal(t, "WARN", entry.Level)
	case <-time.After(2 * time.Second):
		t.Fatal("no log entry streamed")
	}

	require.NoError(t, logger.Close())
	_, open := <-client.Channel
	assert.False(t, open)
}
