package federation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/storage"
)

const entrySource = "var design_system = {get: () => {}, init: () => {}};"

func newCDN(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/v1.0.0/assets/remoteEntry.js", "/vlatest/assets/remoteEntry.js":
			w.Header().Set("Content-Type", "text/javascript")
			io.WriteString(w, entrySource)
		case "/v9.9.9/assets/remoteEntry.js":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func TestHTTPLoader_Load(t *testing.T) {
	srv, _ := newCDN(t)
	loader := NewHTTPLoader(0)

	mod, err := loader.Load(context.Background(), domain.RemoteConfig{Name: "design_system", BaseURL: srv.URL + "/", Version: "1.0.0"}, "BaseCard")
	require.NoError(t, err)
	assert.Equal(t, "design_system", mod.Remote)
	assert.Equal(t, "1.0.0", mod.Version)
	assert.Equal(t, "BaseCard", mod.Component)
	assert.Equal(t, srv.URL+"/v1.0.0/assets/remoteEntry.js", mod.URL)
	assert.Equal(t, "text/javascript", mod.ContentType)
	assert.Equal(t, entrySource, string(mod.Source))
}

func TestHTTPLoader_LoadErrors(t *testing.T) {
	srv, _ := newCDN(t)
	loader := NewHTTPLoader(0)

	tests := []struct {
		name   string
		remote domain.RemoteConfig
	}{
		{name: "missing version", remote: domain.RemoteConfig{Name: "havy", BaseURL: srv.URL, Version: "0.0.1"}},
		{name: "server error", remote: domain.RemoteConfig{Name: "havy", BaseURL: srv.URL, Version: "9.9.9"}},
		{name: "unreachable origin", remote: domain.RemoteConfig{Name: "havy", BaseURL: "http://127.0.0.1:1", Version: "1.0.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := loader.Load(context.Background(), tt.remote, "CardGrid")
			assert.Nil(t, mod)
			assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
		})
	}
}

func TestStorageLoader_Load(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage("https://mirror.test")
	remote := domain.RemoteConfig{Name: "havy", BaseURL: "https://havy.test", Version: "1.2.0"}
	assert.Equal(t, "havy/v1.2.0/assets/remoteEntry.js", ObjectKey(remote))

	loader := NewStorageLoader(store)
	_, err := loader.Load(ctx, remote, "CardGrid")
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)

	require.NoError(t, store.Upload(ctx, ObjectKey(remote), strings.NewReader(entrySource), int64(len(entrySource)), "application/javascript"))
	mod, err := loader.Load(ctx, remote, "CardGrid")
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.test/havy/v1.2.0/assets/remoteEntry.js", mod.URL)
	assert.Equal(t, entrySource, string(mod.Source))
	assert.Equal(t, "CardGrid", mod.Component)
}

func TestMirror_Sync(t *testing.T) {
	ctx := context.Background()
	srv, hits := newCDN(t)
	store := storage.NewMemoryStorage("")
	mirror := NewMirror(NewHTTPLoader(0), store, logger.Discard())

	pinned := domain.RemoteConfig{Name: "design_system", BaseURL: srv.URL, Version: "1.0.0"}
	res, err := mirror.Sync(ctx, pinned)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, len(entrySource), res.Size)

	// Pinned versions already mirrored are not fetched again.
	res, err = mirror.Sync(ctx, pinned)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, int32(1), hits.Load())

	latest := domain.RemoteConfig{Name: "design_system", BaseURL: srv.URL, Version: "latest"}
	for i := 0; i < 2; i++ {
		res, err = mirror.Sync(ctx, latest)
		require.NoError(t, err)
		assert.False(t, res.Skipped)
	}
	assert.Equal(t, int32(3), hits.Load())

	mod, err := NewStorageLoader(store).Load(ctx, pinned, "BaseCard")
	require.NoError(t, err)
	assert.Equal(t, entrySource, string(mod.Source))
}

func TestMirror_SyncAllContinuesPastFailures(t *testing.T) {
	srv, _ := newCDN(t)
	mirror := NewMirror(NewHTTPLoader(0), storage.NewMemoryStorage(""), logger.Discard())

	results, err := mirror.SyncAll(context.Background(), []domain.RemoteConfig{
		{Name: "broken", BaseURL: srv.URL, Version: "9.9.9"},
		{Name: "design_system", BaseURL: srv.URL, Version: "1.0.0"},
	})
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	require.Len(t, results, 1)
	assert.Equal(t, "design_system", results[0].Remote)
}
