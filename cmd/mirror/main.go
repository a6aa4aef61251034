package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/pokedex/internal/bootstrap"
	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/federation"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/storage"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "pokedex-mirror",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	only := flag.String("remote", "", "Mirror only this remote")
	ensureBucket := flag.Bool("ensure-bucket", false, "Create the bucket if it does not exist")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	store, err := bootstrap.BuildStorage(cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if s3Store, ok := store.(*storage.S3Storage); ok && *ensureBucket {
		if err := s3Store.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	registry := bootstrap.BuildRegistry(ctx, cfg, appLogger)
	remotes := registry.List()
	if *only != "" {
		remote, err := registry.Resolve(*only)
		if err != nil {
			appLogger.WithError(err).Fatal("Unknown remote")
		}
		remotes = []domain.RemoteConfig{remote}
	}

	mirror := federation.NewMirror(federation.NewHTTPLoader(cfg.Federation.Timeout), store, appLogger)
	results, err := mirror.SyncAll(ctx, remotes)

	skipped := 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		}
	}
	fields := logger.Fields{
		"total":   len(remotes),
		"synced":  len(results) - skipped,
		"skipped": skipped,
		"failed":  len(remotes) - len(results),
	}
	if err != nil {
		appLogger.WithFields(fields).WithError(err).Fatal("Mirror completed with failures")
	}
	appLogger.WithFields(fields).Info("Mirror completed")
}
