package federation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/storage"
)

// Loader retrieves a remote's entry module.
type Loader interface {
	// Load fetches the entry of remote for the named component.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - remote: resolved remote configuration.
	//   - component: exposed component name the caller wants.
	// Returns:
	//   - *domain.Module: retrieved entry script.
	//   - error: wraps domain.ErrRemoteUnavailable when the entry cannot be fetched.
	Load(ctx context.Context, remote domain.RemoteConfig, component string) (*domain.Module, error)
}

const defaultContentType = "application/javascript"

// HTTPLoader fetches remote entries from their CDN origin.
type HTTPLoader struct {
	client *resty.Client
}

// NewHTTPLoader creates a loader with the given request timeout.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLoader{client: resty.New().SetTimeout(timeout)}
}

// Load GETs the remote's entry URL. Any non-2xx status is an error.
func (l *HTTPLoader) Load(ctx context.Context, remote domain.RemoteConfig, component string) (*domain.Module, error) {
	url := remote.EntryURL()
	resp, err := l.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRemoteUnavailable, url, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrRemoteUnavailable, url, resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return &domain.Module{
		Remote:      remote.Name,
		Version:     remote.Version,
		Component:   component,
		URL:         url,
		ContentType: contentType,
		Source:      resp.Body(),
	}, nil
}

// StorageLoader reads remote entries from an object storage mirror.
// Objects are keyed "{name}/v{version}/assets/remoteEntry.js".
type StorageLoader struct {
	store storage.ObjectStorage
}

// NewStorageLoader creates a loader backed by store.
func NewStorageLoader(store storage.ObjectStorage) *StorageLoader {
	return &StorageLoader{store: store}
}

// ObjectKey returns the mirror key of remote's entry.
func ObjectKey(remote domain.RemoteConfig) string {
	return remote.Name + "/" + remote.EntryPath()
}

// Load downloads the mirrored entry of remote.
func (l *StorageLoader) Load(ctx context.Context, remote domain.RemoteConfig, component string) (*domain.Module, error) {
	key := ObjectKey(remote)
	body, err := l.store.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRemoteUnavailable, key, err)
	}
	defer body.Close()

	src, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrRemoteUnavailable, key, err)
	}
	return &domain.Module{
		Remote:      remote.Name,
		Version:     remote.Version,
		Component:   component,
		URL:         l.store.GetURL(key),
		ContentType: defaultContentType,
		Source:      src,
	}, nil
}
