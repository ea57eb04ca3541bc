// Package logging provides the custom io.Writer for SSE log streaming.
package logging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// SSEWriter is a custom io.Writer that intercepts JSON log lines
// and forwards them to the LogBroadcaster.
type SSEWriter struct {
	broadcaster *LogBroadcaster
}

// NewSSEWriter creates a new writer that sends log data to the broadcaster.
func NewSSEWriter(broadcaster *LogBroadcaster) *SSEWriter {
	return &SSEWriter{broadcaster: broadcaster}
}

// Write satisfies io.Writer. It never fails so logging is never blocked.
func (w *SSEWriter) Write(p []byte) (n int, err error) {
	var rawLog map[string]any
	if err := json.Unmarshal(p, &rawLog); err != nil {
		w.broadcaster.SubmitLog(LogEntry{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Level:     slog.LevelError.String(),
			Channel:   string(ChannelSystem),
			Message:   "sse_writer: failed to parse incoming log message",
		})
		return len(p), nil
	}

	w.broadcaster.SubmitLog(LogEntry{
		Timestamp: getString(rawLog, "time"),
		Level:     getString(rawLog, "level"),
		Channel:   getString(rawLog, "channel"),
		Message:   getString(rawLog, "msg"),
		Operation: getString(rawLog, "operation"),
	})
	return len(p), nil
}

func getString(data map[string]any, key string) string {
	if val, ok := data[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return ""
}

// fanoutHandler sends every record to each of its handlers.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
