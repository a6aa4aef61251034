package domain

import "strings"

// VersionLatest is the floating version label served through a CDN rewrite.
const VersionLatest = "latest"

// RemoteConfig describes one federated remote bundle.
type RemoteConfig struct {
	// Name is the federation remote name (e.g. "design_system", "havy")
	Name string `json:"name" mapstructure:"name"`
	// BaseURL is the CDN origin (e.g. "https://mf-design-system.example.app")
	BaseURL string `json:"base_url" mapstructure:"base_url"`
	// Version is a semantic version or "latest"
	Version string `json:"version" mapstructure:"version"`
}

// VersionDir returns the versioned path segment ("v1.0.0", "vlatest").
func (r RemoteConfig) VersionDir() string {
	return "v" + r.Version
}

// EntryPath returns the remote entry path relative to the base URL.
func (r RemoteConfig) EntryPath() string {
	return r.VersionDir() + "/assets/remoteEntry.js"
}

// EntryURL returns the absolute URL of the remote's entry script.
func (r RemoteConfig) EntryURL() string {
	return strings.TrimSuffix(r.BaseURL, "/") + "/" + r.EntryPath()
}

// VersionManifest pins remote versions and origins at runtime.
type VersionManifest struct {
	Remotes map[string]ManifestEntry `json:"remotes"`
}

// ManifestEntry is one remote's pinned version and origin.
type ManifestEntry struct {
	Version string `json:"version"`
	BaseURL string `json:"baseUrl"`
}

// Module is a retrieved remote entry.
type Module struct {
	Remote      string `json:"remote"`
	Version     string `json:"version"`
	Component   string `json:"component"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Source      []byte `json:"-"`
}
