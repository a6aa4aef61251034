package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/pokedex/internal/api"
	"github.com/timmy/pokedex/internal/api/handler"
	"github.com/timmy/pokedex/internal/api/middleware"
	"github.com/timmy/pokedex/internal/bootstrap"
	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/service"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := bootstrap.BuildCatalog(cfg.Catalog)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize catalog")
	}

	telemetry, err := bootstrap.BuildTelemetry(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize telemetry")
	}
	defer telemetry.Close()

	loader, err := bootstrap.BuildLoader(cfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize federation loader")
	}
	registry := bootstrap.BuildRegistry(ctx, cfg, appLogger)

	services := api.Services{
		Cache:      service.NewListCache(catalog, cfg.Catalog.PageSize, appLogger),
		Details:    service.NewDetailService(catalog),
		Components: service.NewComponentService(registry, loader, service.NewImportTracker(telemetry.Emitter), appLogger),
	}
	if cfg.Preload.Enabled {
		services.Preloader = service.NewImagePreloader(service.PreloaderConfig{
			Timeout:  cfg.Preload.Timeout,
			MaxBytes: cfg.Preload.MaxBytes,
		}, appLogger)
	}
	// Assigned only when set so the interface stays nil otherwise
	if telemetry.Attempts != nil {
		var attempts handler.AttemptLister = telemetry.Attempts
		services.Attempts = attempts
	}

	router := api.SetupRouter(services, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}, cfg.Server.Mode, appLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":    cfg.Server.Port,
			"mode":    cfg.Server.Mode,
			"catalog": cfg.Catalog.Source,
			"loader":  cfg.Federation.Loader,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
