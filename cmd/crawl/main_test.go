package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/service"
	"github.com/timmy/pokedex/internal/source/staging"
)

func stagedCache(t *testing.T, n, pageSize int) *service.ListCache {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `{"id":%d,"name":"mon-%d","sprites":{"front_default":"https://img.test/%d.png"}}`+"\n", i, i, i)
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, staging.ManifestFileName), []byte(b.String()), 0o644))
	return service.NewListCache(staging.NewAdapter(dir), pageSize, logger.Discard())
}

func TestCrawl(t *testing.T) {
	tests := []struct {
		name      string
		maxPages  int
		wantPages int
		wantItems int
		wantMore  bool
	}{
		{name: "until exhausted", maxPages: 0, wantPages: 3, wantItems: 5, wantMore: false},
		{name: "page limit", maxPages: 2, wantPages: 2, wantItems: 4, wantMore: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := stagedCache(t, 5, 2)
			pages, err := crawl(context.Background(), cache, tt.maxPages)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPages, pages)
			assert.Len(t, cache.Items(), tt.wantItems)
			assert.Equal(t, tt.wantMore, cache.Cursor().HasMore)
		})
	}
}

func TestCrawl_Canceled(t *testing.T) {
	cache := stagedCache(t, 5, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages, err := crawl(ctx, cache, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, pages)
	assert.Empty(t, cache.Items())
}
