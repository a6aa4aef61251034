package federation

import (
	"bytes"
	"context"
	"fmt"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/storage"
)

// MirrorResult describes one mirrored remote entry.
type MirrorResult struct {
	Remote  string `json:"remote"`
	Version string `json:"version"`
	Key     string `json:"key"`
	Size    int    `json:"size"`
	Skipped bool   `json:"skipped"`
}

// Mirror copies remote entries from origin into store so StorageLoader can
// serve them. Pinned versions already present are skipped; "latest" is
// always refreshed.
type Mirror struct {
	origin Loader
	store  storage.ObjectStorage
	logger *logger.Logger
}

// NewMirror creates a mirror reading through origin and writing to store.
func NewMirror(origin Loader, store storage.ObjectStorage, log *logger.Logger) *Mirror {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Mirror{origin: origin, store: store, logger: log}
}

// Sync mirrors one remote.
func (m *Mirror) Sync(ctx context.Context, remote domain.RemoteConfig) (*MirrorResult, error) {
	key := ObjectKey(remote)
	result := &MirrorResult{Remote: remote.Name, Version: remote.Version, Key: key}

	if remote.Version != domain.VersionLatest {
		exists, err := m.store.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to check mirror for %s: %w", remote.Name, err)
		}
		if exists {
			result.Skipped = true
			return result, nil
		}
	}

	mod, err := m.origin.Load(ctx, remote, "")
	if err != nil {
		return nil, err
	}
	if err := m.store.Upload(ctx, key, bytes.NewReader(mod.Source), int64(len(mod.Source)), mod.ContentType); err != nil {
		return nil, fmt.Errorf("failed to mirror %s: %w", remote.Name, err)
	}
	result.Size = len(mod.Source)

	m.logger.WithFields(logger.Fields{
		logger.FieldRemote:  remote.Name,
		logger.FieldVersion: remote.Version,
		logger.FieldSize:    result.Size,
	}).Info("Mirrored remote entry")
	return result, nil
}

// SyncAll mirrors every remote, continuing past failures.
// The first error is returned along with the successful results.
func (m *Mirror) SyncAll(ctx context.Context, remotes []domain.RemoteConfig) ([]MirrorResult, error) {
	var results []MirrorResult
	var firstErr error
	for _, remote := range remotes {
		res, err := m.Sync(ctx, remote)
		if err != nil {
			m.logger.WithField(logger.FieldRemote, remote.Name).WithError(err).Warn("Failed to mirror remote entry")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, *res)
	}
	return results, firstErr
}
