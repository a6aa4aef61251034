package pokeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/pokedex/internal/source"
)

const (
	// DefaultBaseURL is the public PokeAPI v2 root.
	DefaultBaseURL = "https://pokeapi.co/api/v2"

	// ResourcePath is the listing/detail resource under the base URL.
	ResourcePath = "pokemon"
)

// Config holds configuration for the PokeAPI adapter.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
}

// Adapter implements source.Catalog against the PokeAPI REST endpoints.
type Adapter struct {
	client  *resty.Client
	baseURL string
}

// NewAdapter creates a new PokeAPI adapter.
// Parameters:
//   - cfg: adapter configuration; zero values use defaults.
//
// Returns:
//   - *Adapter: initialized catalog adapter.
func NewAdapter(cfg *Config) *Adapter {
	if cfg == nil {
		cfg = &Config{}
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client.SetTimeout(timeout)
	if cfg.RetryCount > 0 {
		client.SetRetryCount(cfg.RetryCount)
	}

	return &Adapter{client: client, baseURL: baseURL}
}

// ListPage fetches one page of the listing endpoint.
func (a *Adapter) ListPage(ctx context.Context, limit, offset int) (*source.ListingPage, error) {
	endpoint := a.baseURL + "/" + ResourcePath

	var page source.ListingPage
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(limit),
			"offset": strconv.Itoa(offset),
		}).
		ForceContentType("application/json").
		SetResult(&page).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing at offset %d: %w", offset, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &source.StatusError{URL: endpoint, StatusCode: resp.StatusCode()}
	}

	return &page, nil
}

// Detail fetches one item by name or id.
func (a *Adapter) Detail(ctx context.Context, nameOrID string) (*source.ItemDetail, error) {
	endpoint := a.baseURL + "/" + ResourcePath + "/" + url.PathEscape(nameOrID)

	var detail source.ItemDetail
	resp, err := a.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&detail).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch detail %q: %w", nameOrID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &source.StatusError{URL: endpoint, StatusCode: resp.StatusCode()}
	}
	if err := detail.Validate(); err != nil {
		return nil, err
	}

	return &detail, nil
}
