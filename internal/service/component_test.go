package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/federation"
	"github.com/timmy/pokedex/internal/logger"
)

// stubLoader returns a fixed module or error and records requested remotes.
type stubLoader struct {
	err   error
	calls []domain.RemoteConfig
}

func (l *stubLoader) Load(_ context.Context, remote domain.RemoteConfig, component string) (*domain.Module, error) {
	l.calls = append(l.calls, remote)
	if l.err != nil {
		return nil, l.err
	}
	return &domain.Module{Remote: remote.Name, Version: remote.Version, Component: component, URL: remote.EntryURL()}, nil
}

func newComponentService(loader federation.Loader, sink TelemetrySink) *ComponentService {
	registry := federation.NewRegistry([]domain.RemoteConfig{
		{Name: "design_system", BaseURL: "http://localhost:5001", Version: "1.0.0"},
		{Name: "havy", BaseURL: "http://localhost:5002", Version: "latest"},
	})
	return NewComponentService(registry, loader, NewImportTracker(NewTelemetryEmitter(sink)), logger.Discard())
}

func TestComponentService_Load(t *testing.T) {
	loader := &stubLoader{}
	sink := &recordingSink{}
	svc := newComponentService(loader, sink)

	mod, err := svc.Load(context.Background(), "design_system", "BaseCard")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001/v1.0.0/assets/remoteEntry.js", mod.URL)
	assert.Equal(t, "BaseCard", mod.Component)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, "design_system", records[0].Attempt.RemoteName)
	assert.Equal(t, "1.0.0", records[0].Attempt.VersionLabel)
	assert.True(t, records[0].Attempt.Succeeded())
}

func TestComponentService_LoadFailure(t *testing.T) {
	loadErr := errors.New("remote entry unreachable")
	sink := &recordingSink{}
	svc := newComponentService(&stubLoader{err: loadErr}, sink)

	mod, err := svc.Load(context.Background(), "havy", "CardGrid")
	assert.Nil(t, mod)
	assert.Same(t, loadErr, err)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, SeverityError, records[0].Severity)
	assert.Equal(t, "latest", records[0].Attempt.VersionLabel)
}

func TestComponentService_UnknownRemote(t *testing.T) {
	loader := &stubLoader{}
	sink := &recordingSink{}
	svc := newComponentService(loader, sink)

	_, err := svc.Load(context.Background(), "nope", "X")
	assert.ErrorIs(t, err, domain.ErrRemoteNotFound)
	assert.Empty(t, loader.calls)
	assert.Empty(t, sink.all())
	assert.Len(t, svc.Remotes(), 2)
}
