// Package container provides dependency injection for all singleton services
package container

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/AtRiskMedia/edify/internal/application/services"
	domainservices "github.com/AtRiskMedia/edify/internal/domain/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/email"
	"github.com/AtRiskMedia/edify/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/edify/internal/infrastructure/persistence/content"
	progressstorage "github.com/AtRiskMedia/edify/internal/infrastructure/persistence/progress"
	"github.com/AtRiskMedia/edify/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	Config *config.Config

	// Application Services
	CatalogService  *services.CatalogService
	ProgressService *services.ProgressService
	ContactService  *services.ContactService
	SysOpService    *services.SysOpService

	// Domain
	ProgressStore *domainservices.ProgressStore

	// Infrastructure Dependencies
	CatalogRepo *content.CatalogRepository
	ProgressSSE *messaging.SSEBroadcaster
	ProgressHub *messaging.Hub
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker

	closers []func() error
}

// LoggerConfig translates the log section of the configuration.
func LoggerConfig(cfg config.LogConfig) (*logging.LoggerConfig, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	channelLevels := make(map[logging.Channel]slog.Level, len(cfg.Channels))
	for channel, value := range cfg.Channels {
		l, err := logging.ParseLevel(value)
		if err != nil {
			return nil, fmt.Errorf("log.channels.%s: %w", channel, err)
		}
		channelLevels[logging.Channel(channel)] = l
	}
	return &logging.LoggerConfig{
		OutputToFile:    cfg.ToFile,
		OutputToConsole: cfg.ToConsole,
		LogDirectory:    cfg.Directory,
		Broadcast:       true,
		JSONFormat:      cfg.JSON,
		IncludeSource:   cfg.Source,
		DefaultLevel:    level,
		ChannelLevels:   channelLevels,
	}, nil
}

// NewContainer creates and wires all singleton services. A nil logger is
// built from cfg.Log.
func NewContainer(cfg *config.Config, logger *logging.ChanneledLogger) (*Container, error) {
	c := &Container{Config: cfg}

	if logger == nil {
		loggerConfig, err := LoggerConfig(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("invalid log configuration: %w", err)
		}
		logger, err = logging.NewChanneledLogger(loggerConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		c.closers = append(c.closers, logger.Close)
	}
	c.Logger = logger
	c.PerfTracker = performance.NewTracker(nil)

	catalogRepo, err := content.NewCatalogRepository(cfg.Catalog.Path, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	c.CatalogRepo = catalogRepo

	storage, closeStorage, err := progressstorage.Open(cfg.Storage, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open progress storage: %w", err)
	}
	c.closers = append(c.closers, closeStorage)

	c.ProgressStore = domainservices.NewProgressStore(storage, domainservices.WithLogger(logger.Progress()))

	var mailer email.Service
	if cfg.ContactDeliveryEnabled() {
		mailer, err = email.NewService(cfg.Contact)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to configure contact delivery: %w", err)
		}
	}

	c.CatalogService = services.NewCatalogService(catalogRepo, logger, c.PerfTracker)
	c.ProgressService = services.NewProgressService(c.ProgressStore, catalogRepo, cfg.Storage.Driver, cfg.Storage.Key, logger, c.PerfTracker)
	c.ContactService = services.NewContactService(mailer, logger, c.PerfTracker)
	c.SysOpService = services.NewSysOpService(cfg.Sysop, logger, c.PerfTracker)

	c.ProgressSSE = messaging.NewSSEBroadcaster(cfg.SSE.ClientBuffer, logger)
	c.ProgressHub = messaging.NewHub(func() any { return c.ProgressService.Overview() }, cfg.SSE.HeartbeatInterval, logger)
	detach := messaging.Attach(c.ProgressStore, c.ProgressSSE, c.ProgressHub)
	c.closers = append(c.closers, func() error {
		detach()
		c.ProgressSSE.Close()
		return nil
	})

	return c, nil
}

// CloseStreams ends every open progress and log stream. The HTTP server
// calls it when shutdown begins, since Shutdown waits for active handlers.
func (c *Container) CloseStreams() {
	if c.ProgressSSE != nil {
		c.ProgressSSE.Close()
	}
	if c.Logger != nil {
		if broadcaster := c.Logger.Broadcaster(); broadcaster != nil {
			broadcaster.Shutdown()
		}
	}
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
