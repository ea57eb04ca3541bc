// Package startup prepares the application server
package startup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/edify/internal/application/container"
	"github.com/AtRiskMedia/edify/internal/infrastructure/persistence/content"
	"github.com/AtRiskMedia/edify/internal/presentation/http/server"
	"github.com/AtRiskMedia/edify/pkg/config"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 30 * time.Second
	metricsMaxAge   = time.Hour
)

// Initialize performs the complete startup sequence and blocks until the
// process receives SIGINT or SIGTERM.
func Initialize(cfg *config.Config) error {
	setupLogging(cfg)

	start := time.Now().UTC()

	log.Println("\033[32m" + `
  ▄▄▄▄▄ ▄▄▄▄  ▄ ▄▄▄▄▄ ▄   ▄
  █▄▄   █   █ █ █▄▄    ▀▄▀
  █▄▄▄▄ █▄▄▄▀ █ █       █
` + "\033[97m" + `
  edify: roadmaps that remember where you are
` + "\033[0m")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Step 1: Create dependency injection container
	log.Println("Initializing dependency injection container...")
	phaseStart := time.Now()
	appContainer, err := container.NewContainer(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer appContainer.Close()

	logger := appContainer.Logger
	logger.LogStartupPhase("container", time.Since(phaseStart), true)
	logger.Startup().Info("Container initialization complete - switching to channeled logging",
		"storage", appContainer.ProgressStore.Health().Storage,
		"roadmaps", len(appContainer.CatalogService.Roadmaps()))

	g, gctx := errgroup.WithContext(ctx)

	// Step 2: Websocket hub
	g.Go(func() error {
		appContainer.ProgressHub.Run(gctx)
		return nil
	})

	// Step 3: Catalog hot reload
	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		phaseStart = time.Now()
		watcher, err := content.NewWatcher(appContainer.CatalogRepo)
		if err == nil {
			err = watcher.Start()
		}
		logger.LogStartupPhase("catalog-watcher", time.Since(phaseStart), err == nil)
		if err != nil {
			logger.Startup().Warn("Catalog hot reload disabled", "path", cfg.Catalog.Path, "error", err.Error())
		} else {
			g.Go(func() error {
				<-gctx.Done()
				watcher.Stop()
				return nil
			})
			g.Go(func() error {
				for err := range watcher.Reloaded {
					if err != nil {
						logger.Content().Warn("Catalog reload rejected", "error", err.Error())
					}
				}
				return nil
			})
		}
	}

	// Step 4: Background metric cleanup
	g.Go(func() error {
		ticker := time.NewTicker(metricsMaxAge / 4)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				appContainer.PerfTracker.Cleanup(metricsMaxAge)
			}
		}
	})

	// Step 5: HTTP server
	phaseStart = time.Now()
	httpServer := server.New(cfg.Port, appContainer)
	logger.LogStartupPhase("http-server", time.Since(phaseStart), true)

	g.Go(func() error {
		logger.System().Info("Starting HTTP server", "address", ":"+cfg.Port)
		if err := httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Shutdown().Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Shutdown().Error("Server forced to shutdown", "error", err.Error())
			return err
		}
		return nil
	})

	logger.Startup().Info("Startup complete", "duration", time.Since(start), "port", cfg.Port)

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Shutdown().Info("Server exited")
	return nil
}

func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags)
	gin.SetMode(cfg.GinMode)
}
