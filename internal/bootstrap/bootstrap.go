package bootstrap

import (
	"context"
	"fmt"

	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/federation"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/repository"
	"github.com/timmy/pokedex/internal/service"
	"github.com/timmy/pokedex/internal/source"
	"github.com/timmy/pokedex/internal/source/pokeapi"
	"github.com/timmy/pokedex/internal/source/staging"
	"github.com/timmy/pokedex/internal/storage"
)

// BuildCatalog creates the upstream catalog selected by cfg.Source.
func BuildCatalog(cfg config.CatalogConfig) (source.Catalog, error) {
	switch cfg.Source {
	case "staging":
		return staging.NewAdapter(cfg.StagingPath), nil
	case "pokeapi", "":
		return pokeapi.NewAdapter(&pokeapi.Config{
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			RetryCount: cfg.RetryCount,
			UserAgent:  cfg.UserAgent,
		}), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// BuildStorage creates the remote bundle mirror from cfg.
func BuildStorage(cfg config.StorageConfig) (storage.ObjectStorage, error) {
	return storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Type),
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		PublicURL: cfg.PublicURL,
	})
}

// BuildRegistry creates the remote registry from the configured remotes and,
// when a manifest URL is set, overlays the manifest. A manifest that cannot be
// fetched is logged and the configured remotes are kept.
func BuildRegistry(ctx context.Context, cfg *config.Config, log *logger.Logger) *federation.Registry {
	registry := federation.NewRegistry(cfg.Remotes.List())
	if cfg.Federation.ManifestURL == "" {
		return registry
	}

	client := federation.NewManifestClient(cfg.Federation.ManifestURL, cfg.Federation.Timeout)
	changed, err := client.Refresh(ctx, registry)
	if err != nil {
		log.WithError(err).WithField("manifest_url", cfg.Federation.ManifestURL).
			Warn("Failed to apply version manifest, using configured remotes")
		return registry
	}
	log.WithField(logger.FieldCount, changed).Info("Applied version manifest")
	return registry
}

// BuildLoader creates the remote entry loader selected by cfg.Federation.Loader.
func BuildLoader(cfg *config.Config) (federation.Loader, error) {
	switch cfg.Federation.Loader {
	case "storage":
		store, err := BuildStorage(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return federation.NewStorageLoader(store), nil
	case "http", "":
		return federation.NewHTTPLoader(cfg.Federation.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown federation loader %q", cfg.Federation.Loader)
	}
}

// Telemetry bundles the emitter with its optional persistence.
type Telemetry struct {
	Emitter *service.TelemetryEmitter
	// Attempts is nil unless persistence is enabled
	Attempts *repository.LoadAttemptRepository
	sink     *service.RepositorySink
}

// Close drains pending telemetry writes.
func (t *Telemetry) Close() {
	if t.sink != nil {
		t.sink.Close()
	}
}

// BuildTelemetry creates the telemetry emitter. Records always go to the log;
// with cfg.Telemetry.Persist they are also written to the database.
func BuildTelemetry(cfg *config.Config, log *logger.Logger) (*Telemetry, error) {
	logSink := service.NewLogSink(log)
	if !cfg.Telemetry.Persist {
		return &Telemetry{Emitter: service.NewTelemetryEmitter(logSink)}, nil
	}

	db, err := repository.InitDB(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry database: %w", err)
	}
	repo := repository.NewLoadAttemptRepository(db)
	sink := service.NewRepositorySink(repo, log, cfg.Telemetry.BufferSize)

	return &Telemetry{
		Emitter:  service.NewTelemetryEmitter(service.MultiSink{logSink, sink}),
		Attempts: repo,
		sink:     sink,
	}, nil
}
