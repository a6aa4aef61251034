package service

import (
	"context"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/federation"
	"github.com/timmy/pokedex/internal/logger"
)

// ComponentService resolves federation remotes and loads their components
// through the import tracker.
type ComponentService struct {
	registry *federation.Registry
	loader   federation.Loader
	tracker  *ImportTracker
	logger   *logger.Logger
}

// NewComponentService creates a new ComponentService.
// Parameters:
//   - registry: resolved remotes.
//   - loader: fetches remote entries (HTTP origin or storage mirror).
//   - tracker: reports every load attempt.
//   - log: logger instance; nil uses the default logger.
//
// Returns:
//   - *ComponentService: initialized service.
func NewComponentService(registry *federation.Registry, loader federation.Loader, tracker *ImportTracker, log *logger.Logger) *ComponentService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &ComponentService{registry: registry, loader: loader, tracker: tracker, logger: log}
}

// Remotes returns the currently resolved remotes.
func (s *ComponentService) Remotes() []domain.RemoteConfig {
	return s.registry.List()
}

// Load fetches component from the named remote. An unknown remote fails with
// domain.ErrRemoteNotFound before any load is attempted or reported.
func (s *ComponentService) Load(ctx context.Context, remoteName, component string) (*domain.Module, error) {
	remote, err := s.registry.Resolve(remoteName)
	if err != nil {
		return nil, err
	}

	ctx = logger.SetRemote(ctx, remote.Name)
	ctx = logger.SetComponent(ctx, component)

	mod, err := TrackedImport(ctx, s.tracker, remote.Name, remote.Version, component,
		func(ctx context.Context) (*domain.Module, error) {
			return s.loader.Load(ctx, remote, component)
		})
	if err != nil {
		s.logger.WithFields(logger.Fields{
			logger.FieldRemote:    remote.Name,
			logger.FieldVersion:   remote.Version,
			logger.FieldComponent: component,
		}).WithError(err).Warn("Remote component failed to load")
		return nil, err
	}
	return mod, nil
}
