package federation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/timmy/pokedex/internal/domain"
)

// Registry holds the resolved federation remotes. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	remotes map[string]domain.RemoteConfig
	order   []string
}

// NewRegistry creates a registry from the statically configured remotes.
// Later entries with a duplicate name replace earlier ones.
func NewRegistry(remotes []domain.RemoteConfig) *Registry {
	r := &Registry{remotes: make(map[string]domain.RemoteConfig, len(remotes))}
	for _, remote := range remotes {
		r.put(remote)
	}
	return r
}

// put stores remote; callers hold r.mu or own r exclusively.
func (r *Registry) put(remote domain.RemoteConfig) {
	if remote.Version == "" {
		remote.Version = domain.VersionLatest
	}
	if _, ok := r.remotes[remote.Name]; !ok {
		r.order = append(r.order, remote.Name)
	}
	r.remotes[remote.Name] = remote
}

// Resolve returns the remote registered under name.
func (r *Registry) Resolve(name string) (domain.RemoteConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	remote, ok := r.remotes[name]
	if !ok {
		return domain.RemoteConfig{}, fmt.Errorf("%w: %s", domain.ErrRemoteNotFound, name)
	}
	return remote, nil
}

// List returns all remotes in registration order.
func (r *Registry) List() []domain.RemoteConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RemoteConfig, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.remotes[name])
	}
	return out
}

// ApplyManifest overlays the manifest's pinned versions and origins.
// Empty fields leave the current value in place; unknown names are added
// when they carry a base URL. It returns the number of remotes changed.
func (r *Registry) ApplyManifest(m *domain.VersionManifest) int {
	if m == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(m.Remotes))
	for name := range m.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := 0
	for _, name := range names {
		entry := m.Remotes[name]
		if name == "" {
			continue
		}
		current, known := r.remotes[name]
		if !known {
			if entry.BaseURL == "" {
				continue
			}
			current = domain.RemoteConfig{Name: name}
		}
		next := current
		if entry.BaseURL != "" {
			next.BaseURL = entry.BaseURL
		}
		if entry.Version != "" {
			next.Version = entry.Version
		}
		if known && next == current {
			continue
		}
		r.put(next)
		changed++
	}
	return changed
}
