package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/pokedex/internal/logger"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// ImageInfo describes a preloaded image.
type ImageInfo struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
}

// PreloaderConfig configures an ImagePreloader.
type PreloaderConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

// ImagePreloader warms preview images so the detail view opens without a
// visible fetch. Each URL is downloaded at most once per process.
type ImagePreloader struct {
	client   *resty.Client
	maxBytes int64
	timeout  time.Duration
	logger   *logger.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]ImageInfo
}

// NewImagePreloader creates a new preloader.
func NewImagePreloader(cfg PreloaderConfig, log *logger.Logger) *ImagePreloader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 << 20
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &ImagePreloader{
		client:   resty.New().SetTimeout(cfg.Timeout),
		maxBytes: cfg.MaxBytes,
		timeout:  cfg.Timeout,
		logger:   log,
		cache:    make(map[string]ImageInfo),
	}
}

// Cached returns the info of an already preloaded url.
func (p *ImagePreloader) Cached(url string) (ImageInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	info, ok := p.cache[url]
	return info, ok
}

// Preload downloads url and decodes its header. Concurrent calls for the same
// url share one download; failures are not cached.
func (p *ImagePreloader) Preload(ctx context.Context, url string) (ImageInfo, error) {
	if url == "" {
		return ImageInfo{}, errors.New("empty image url")
	}
	if info, ok := p.Cached(url); ok {
		return info, nil
	}

	v, err, _ := p.group.Do(url, func() (interface{}, error) {
		info, err := p.fetch(ctx, url)
		if err != nil {
			return ImageInfo{}, err
		}
		p.mu.Lock()
		p.cache[url] = info
		p.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return ImageInfo{}, err
	}
	return v.(ImageInfo), nil
}

// PreloadAsync preloads url in the background and only logs the outcome.
func (p *ImagePreloader) PreloadAsync(url string) {
	if url == "" {
		return
	}
	if _, ok := p.Cached(url); ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		start := time.Now()
		info, err := p.Preload(ctx, url)
		if err != nil {
			p.logger.WithField("url", url).WithError(err).Warn("Preview preload failed")
			return
		}
		p.logger.WithFields(logger.Fields{
			"url":                  url,
			logger.FieldSize:       info.Bytes,
			logger.FieldDurationMs: time.Since(start).Milliseconds(),
		}).Debug("Preview preloaded")
	}()
}

func (p *ImagePreloader) fetch(ctx context.Context, url string) (ImageInfo, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to download image: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return ImageInfo{}, fmt.Errorf("image %s returned status %d", url, resp.StatusCode())
	}

	data, err := io.ReadAll(io.LimitReader(body, p.maxBytes+1))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return ImageInfo{}, fmt.Errorf("image %s exceeds %d bytes", url, p.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	return ImageInfo{URL: url, Width: cfg.Width, Height: cfg.Height, Format: format, Bytes: len(data)}, nil
}
