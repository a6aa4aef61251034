package staging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/source"
)

// ManifestFileName is the JSONL manifest file name in a staging directory.
// Each line is one upstream detail payload.
const ManifestFileName = "manifest.jsonl"

// Adapter implements source.Catalog over a staged snapshot of the upstream API.
type Adapter struct {
	basePath string

	mu     sync.Mutex
	items  []*source.ItemDetail
	byKey  map[string]*source.ItemDetail
	loaded bool
}

// NewAdapter creates a new staging adapter.
// Parameters:
//   - basePath: directory containing manifest.jsonl.
//
// Returns:
//   - *Adapter: initialized staging adapter.
func NewAdapter(basePath string) *Adapter {
	return &Adapter{basePath: basePath}
}

// ListPage returns entries [offset, offset+limit) by ascending id.
// Next is set to the following offset while entries remain.
func (a *Adapter) ListPage(ctx context.Context, limit, offset int) (*source.ListingPage, error) {
	if err := a.ensureLoaded(); err != nil {
		return nil, err
	}
	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("invalid page window: limit=%d offset=%d", limit, offset)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	page := &source.ListingPage{Count: len(a.items), Results: []source.ListingEntry{}}
	if offset >= len(a.items) {
		return page, nil
	}

	end := offset + limit
	if end > len(a.items) {
		end = len(a.items)
	}
	for _, item := range a.items[offset:end] {
		page.Results = append(page.Results, source.ListingEntry{Name: item.Name})
	}

	if end < len(a.items) {
		next := "offset=" + strconv.Itoa(end)
		page.Next = &next
	}
	return page, nil
}

// Detail returns the staged payload for a name or decimal id.
func (a *Adapter) Detail(ctx context.Context, nameOrID string) (*source.ItemDetail, error) {
	if err := a.ensureLoaded(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.byKey[strings.ToLower(nameOrID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, nameOrID)
	}
	copied := *item
	return &copied, nil
}

// Count returns the number of staged items.
func (a *Adapter) Count() (int, error) {
	if err := a.ensureLoaded(); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items), nil
}

func (a *Adapter) ensureLoaded() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loaded {
		return nil
	}
	if err := a.loadItems(); err != nil {
		return fmt.Errorf("failed to load staging items: %w", err)
	}
	a.loaded = true
	return nil
}

// loadItems reads the manifest; callers hold a.mu.
func (a *Adapter) loadItems() error {
	manifestPath := filepath.Join(a.basePath, ManifestFileName)

	file, err := os.Open(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("manifest file not found: %s", manifestPath)
		}
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	a.items = nil
	a.byKey = make(map[string]*source.ItemDetail)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item source.ItemDetail
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			// Skip malformed lines
			continue
		}
		if item.Validate() != nil {
			continue
		}
		if _, dup := a.byKey[strconv.Itoa(item.ID)]; dup {
			continue
		}

		stored := item
		a.items = append(a.items, &stored)
		a.byKey[strconv.Itoa(item.ID)] = &stored
		a.byKey[strings.ToLower(item.Name)] = &stored
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading manifest: %w", err)
	}

	sort.Slice(a.items, func(i, j int) bool {
		return a.items[i].ID < a.items[j].ID
	})
	return nil
}
