// Package logging provides structured logging channels for Edify operations.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Channel represents a logical logging channel for different system components
type Channel string

const (
	// System channels
	ChannelSystem   Channel = "system"   // General system operations
	ChannelStartup  Channel = "startup"  // Application startup and initialization
	ChannelShutdown Channel = "shutdown" // Application shutdown and cleanup

	// Business logic channels
	ChannelContent  Channel = "content"  // Catalog loading and page rendering
	ChannelProgress Channel = "progress" // Progress store mutations and queries
	ChannelContact  Channel = "contact"  // Contact form submissions
	ChannelAuth     Channel = "auth"     // Sysop authentication

	// Infrastructure channels
	ChannelStorage Channel = "storage" // Progress persistence backends
	ChannelSSE     Channel = "sse"     // Server-sent events and websockets

	// Monitoring channels
	ChannelPerf  Channel = "performance" // Performance markers
	ChannelDebug Channel = "debug"       // Debug information
)

// AllChannels lists every channel in display order.
var AllChannels = []Channel{
	ChannelSystem, ChannelStartup, ChannelShutdown,
	ChannelContent, ChannelProgress, ChannelContact, ChannelAuth,
	ChannelStorage, ChannelSSE,
	ChannelPerf, ChannelDebug,
}

// ChanneledLogger provides structured logging with multiple channels
type ChanneledLogger struct {
	channels    map[Channel]*slog.Logger
	levels      map[Channel]*slog.LevelVar
	config      *LoggerConfig
	files       []*os.File
	broadcaster *LogBroadcaster
	mu          sync.RWMutex
}

// LoggerConfig contains configuration options for the channeled logger
type LoggerConfig struct {
	OutputToFile    bool   `json:"outputToFile"`    // Whether to write logs to files
	OutputToConsole bool   `json:"outputToConsole"` // Whether to write logs to console
	LogDirectory    string `json:"logDirectory"`    // Directory for log files
	Broadcast       bool   `json:"broadcast"`       // Whether to feed the sysop log stream

	JSONFormat    bool `json:"jsonFormat"`    // Use JSON format for structured logging
	IncludeSource bool `json:"includeSource"` // Include source file and line in logs

	DefaultLevel  slog.Level             `json:"defaultLevel"`
	ChannelLevels map[Channel]slog.Level `json:"channelLevels"`

	// Console overrides os.Stdout, mostly for tests.
	Console io.Writer `json:"-"`
}

// DefaultLoggerConfig returns a sensible default configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: true,
		LogDirectory:    "logs",
		Broadcast:       true,
		JSONFormat:      true,
		IncludeSource:   false,
		DefaultLevel:    slog.LevelInfo,
		ChannelLevels:   make(map[Channel]slog.Level),
	}
}

// NewChanneledLogger creates a new channeled logger with the given configuration
func NewChanneledLogger(config *LoggerConfig) (*ChanneledLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if config.ChannelLevels == nil {
		config.ChannelLevels = make(map[Channel]slog.Level)
	}

	logger := &ChanneledLogger{
		channels: make(map[Channel]*slog.Logger),
		levels:   make(map[Channel]*slog.LevelVar),
		config:   config,
	}

	if config.OutputToFile {
		if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if config.Broadcast {
		logger.broadcaster = NewLogBroadcaster()
	}

	for _, channel := range AllChannels {
		channelLogger, err := logger.createChannelLogger(channel)
		if err != nil {
			logger.Close()
			return nil, fmt.Errorf("failed to create logger for channel %s: %w", channel, err)
		}
		logger.channels[channel] = channelLogger
	}

	return logger, nil
}

// NewNopLogger returns a logger that discards everything. Tests use it.
func NewNopLogger() *ChanneledLogger {
	logger, _ := NewChanneledLogger(&LoggerConfig{
		Console:      io.Discard,
		DefaultLevel: slog.LevelError + 4,
	})
	return logger
}

// createChannelLogger creates a slog.Logger for a specific channel
func (cl *ChanneledLogger) createChannelLogger(channel Channel) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(cl.config.DefaultLevel)
	if channelLevel, exists := cl.config.ChannelLevels[channel]; exists {
		level.Set(channelLevel)
	}
	cl.levels[channel] = level

	var writers []io.Writer

	if cl.config.Console != nil {
		writers = append(writers, cl.config.Console)
	} else if cl.config.OutputToConsole {
		writers = append(writers, os.Stdout)
	}

	if cl.config.OutputToFile {
		path := filepath.Join(cl.config.LogDirectory, fmt.Sprintf("%s.log", string(channel)))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		cl.files = append(cl.files, file)
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cl.config.IncludeSource,
	}

	var handler slog.Handler
	if cl.config.JSONFormat {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	// The broadcast handler always speaks JSON so the SSE writer can parse it.
	if cl.broadcaster != nil {
		broadcastHandler := slog.NewJSONHandler(NewSSEWriter(cl.broadcaster), handlerOpts)
		handler = fanoutHandler{handler, broadcastHandler}
	}

	return slog.New(handler).With(slog.String("channel", string(channel))), nil
}

func (cl *ChanneledLogger) System() *slog.Logger   { return cl.GetChannel(ChannelSystem) }
func (cl *ChanneledLogger) Startup() *slog.Logger  { return cl.GetChannel(ChannelStartup) }
func (cl *ChanneledLogger) Shutdown() *slog.Logger { return cl.GetChannel(ChannelShutdown) }
func (cl *ChanneledLogger) Content() *slog.Logger  { return cl.GetChannel(ChannelContent) }
func (cl *ChanneledLogger) Progress() *slog.Logger { return cl.GetChannel(ChannelProgress) }
func (cl *ChanneledLogger) Contact() *slog.Logger  { return cl.GetChannel(ChannelContact) }
func (cl *ChanneledLogger) Auth() *slog.Logger     { return cl.GetChannel(ChannelAuth) }
func (cl *ChanneledLogger) Storage() *slog.Logger  { return cl.GetChannel(ChannelStorage) }
func (cl *ChanneledLogger) SSE() *slog.Logger      { return cl.GetChannel(ChannelSSE) }
func (cl *ChanneledLogger) Perf() *slog.Logger     { return cl.GetChannel(ChannelPerf) }
func (cl *ChanneledLogger) Debug() *slog.Logger    { return cl.GetChannel(ChannelDebug) }

// GetChannel returns a logger for a specific channel
func (cl *ChanneledLogger) GetChannel(channel Channel) *slog.Logger {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	if logger, exists := cl.channels[channel]; exists {
		return logger
	}
	return cl.channels[ChannelSystem]
}

// WithOperation returns a logger with operation context
func (cl *ChanneledLogger) WithOperation(channel Channel, operation string) *slog.Logger {
	return cl.GetChannel(channel).With(slog.String("operation", operation))
}

// Broadcaster returns the log stream broadcaster, or nil when broadcasting is off.
func (cl *ChanneledLogger) Broadcaster() *LogBroadcaster {
	return cl.broadcaster
}

// LogError logs an error with appropriate context and channel
func (cl *ChanneledLogger) LogError(channel Channel, operation string, err error, metadata map[string]any) {
	logger := cl.GetChannel(channel).With(
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	for key, value := range metadata {
		logger = logger.With(slog.Any(key, value))
	}
	logger.Error("Operation failed")
}

// LogStartupPhase logs application startup phases
func (cl *ChanneledLogger) LogStartupPhase(phase string, duration time.Duration, success bool) {
	logger := cl.Startup().With(
		slog.String("phase", phase),
		slog.Duration("duration", duration),
		slog.Bool("success", success),
	)
	if success {
		logger.Info("Startup phase completed")
	} else {
		logger.Error("Startup phase failed")
	}
}

// SetChannelLevel dynamically sets the log level for a specific channel
func (cl *ChanneledLogger) SetChannelLevel(channel Channel, level slog.Level) error {
	cl.mu.Lock()
	levelVar, exists := cl.levels[channel]
	if !exists {
		cl.mu.Unlock()
		return fmt.Errorf("channel %s does not exist", channel)
	}
	levelVar.Set(level)
	cl.config.ChannelLevels[channel] = level
	cl.mu.Unlock()

	cl.System().Info("Channel log level updated dynamically",
		slog.String("channel", string(channel)),
		slog.String("level", level.String()),
	)
	return nil
}

// GetChannelLevels returns the current log levels for all channels.
func (cl *ChanneledLogger) GetChannelLevels() map[string]string {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	levels := make(map[string]string, len(cl.levels))
	for channel, level := range cl.levels {
		levels[string(channel)] = level.Level().String()
	}
	return levels
}

// Close flushes file handles and stops the broadcaster.
func (cl *ChanneledLogger) Close() error {
	var firstErr error
	for _, f := range cl.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cl.files = nil
	if cl.broadcaster != nil {
		cl.broadcaster.Shutdown()
	}
	return firstErr
}

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
