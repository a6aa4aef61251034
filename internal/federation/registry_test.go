package federation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/pokedex/internal/domain"
)

func defaultRemotes() []domain.RemoteConfig {
	return []domain.RemoteConfig{
		{Name: "design_system", BaseURL: "http://localhost:5001", Version: "latest"},
		{Name: "havy", BaseURL: "http://localhost:5002"},
	}
}

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry(defaultRemotes())

	ds, err := reg.Resolve("design_system")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001/vlatest/assets/remoteEntry.js", ds.EntryURL())

	havy, err := reg.Resolve("havy")
	require.NoError(t, err)
	assert.Equal(t, domain.VersionLatest, havy.Version)

	_, err = reg.Resolve("unknown")
	assert.ErrorIs(t, err, domain.ErrRemoteNotFound)

	names := []string{}
	for _, r := range reg.List() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"design_system", "havy"}, names)
}

func TestRegistry_ApplyManifest(t *testing.T) {
	tests := []struct {
		name        string
		manifest    *domain.VersionManifest
		wantChanged int
		wantHavy    domain.RemoteConfig
		wantNames   []string
	}{
		{
			name:        "nil manifest",
			manifest:    nil,
			wantChanged: 0,
			wantHavy:    domain.RemoteConfig{Name: "havy", BaseURL: "http://localhost:5002", Version: "latest"},
			wantNames:   []string{"design_system", "havy"},
		},
		{
			name: "pin version keeps origin",
			manifest: &domain.VersionManifest{Remotes: map[string]domain.ManifestEntry{
				"havy": {Version: "1.2.0"},
			}},
			wantChanged: 1,
			wantHavy:    domain.RemoteConfig{Name: "havy", BaseURL: "http://localhost:5002", Version: "1.2.0"},
			wantNames:   []string{"design_system", "havy"},
		},
		{
			name: "unchanged entry is not counted",
			manifest: &domain.VersionManifest{Remotes: map[string]domain.ManifestEntry{
				"havy": {Version: "latest", BaseURL: "http://localhost:5002"},
			}},
			wantChanged: 0,
			wantHavy:    domain.RemoteConfig{Name: "havy", BaseURL: "http://localhost:5002", Version: "latest"},
			wantNames:   []string{"design_system", "havy"},
		},
		{
			name: "unknown remotes are added when they carry an origin",
			manifest: &domain.VersionManifest{Remotes: map[string]domain.ManifestEntry{
				"zeta":  {BaseURL: "https://zeta.test", Version: "2.0.0"},
				"alpha": {BaseURL: "https://alpha.test"},
				"ghost": {Version: "1.0.0"},
			}},
			wantChanged: 2,
			wantHavy:    domain.RemoteConfig{Name: "havy", BaseURL: "http://localhost:5002", Version: "latest"},
			wantNames:   []string{"design_system", "havy", "alpha", "zeta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(defaultRemotes())
			assert.Equal(t, tt.wantChanged, reg.ApplyManifest(tt.manifest))

			havy, err := reg.Resolve("havy")
			require.NoError(t, err)
			assert.Equal(t, tt.wantHavy, havy)

			names := []string{}
			for _, r := range reg.List() {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestManifestClient_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"remotes":{"design_system":{"version":"1.4.0","baseUrl":"https://ds.cdn.test"}}}`)
	}))
	defer srv.Close()

	reg := NewRegistry(defaultRemotes())
	changed, err := NewManifestClient(srv.URL+"/manifest.json", 0).Refresh(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	ds, err := reg.Resolve("design_system")
	require.NoError(t, err)
	assert.Equal(t, "https://ds.cdn.test/v1.4.0/assets/remoteEntry.js", ds.EntryURL())

	_, err = NewManifestClient(srv.URL+"/missing.json", 0).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}
