package federation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/pokedex/internal/domain"
)

// ManifestClient fetches the runtime version manifest.
type ManifestClient struct {
	client *resty.Client
	url    string
}

// NewManifestClient creates a client for the manifest at url.
func NewManifestClient(url string, timeout time.Duration) *ManifestClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &ManifestClient{client: client, url: url}
}

// Fetch downloads and decodes the manifest.
func (c *ManifestClient) Fetch(ctx context.Context) (*domain.VersionManifest, error) {
	var manifest domain.VersionManifest
	resp, err := c.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&manifest).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch version manifest: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: version manifest %s returned status %d",
			domain.ErrRemoteUnavailable, c.url, resp.StatusCode())
	}
	return &manifest, nil
}

// Refresh fetches the manifest and applies it to registry.
// It returns the number of remotes changed.
func (c *ManifestClient) Refresh(ctx context.Context, registry *Registry) (int, error) {
	manifest, err := c.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	return registry.ApplyManifest(manifest), nil
}
