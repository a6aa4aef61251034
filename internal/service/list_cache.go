package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/source"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the number of items fetched per page.
const DefaultPageSize = 12

// ListSnapshot is a consistent copy of the list cache state.
type ListSnapshot struct {
	Items       []domain.ListItem       `json:"items"`
	Cursor      domain.PaginationCursor `json:"cursor"`
	IsLoading   bool                    `json:"is_loading"`
	SearchQuery string                  `json:"search_query"`
	SelectedID  *int                    `json:"selected_id"`
}

// Filtered applies the snapshot's search query to its items.
func (s ListSnapshot) Filtered() []domain.ListItem {
	return filterItems(s.Items, s.SearchQuery)
}

// ListCache holds the paginated grid collection for the application lifetime,
// so returning to the grid never refetches pages already held.
//
// At most one page fetch runs at a time: LoadNextPage checks and sets the
// loading flag under the lock before any I/O, and concurrent calls return
// immediately. Readers always see the last committed state.
type ListCache struct {
	catalog source.Catalog
	logger  *logger.Logger

	mu         sync.RWMutex
	items      []domain.ListItem
	ids        map[int]struct{}
	cursor     domain.PaginationCursor
	loading    bool
	query      string
	selectedID *int
	generation uint64

	subMu       sync.Mutex
	subscribers map[int]func(ListSnapshot)
	nextSubID   int
}

// NewListCache creates an empty cache paging through catalog.
// Parameters:
//   - catalog: upstream listing and detail API.
//   - pageSize: entries per page; values < 1 use DefaultPageSize.
//   - log: logger instance; nil uses the default logger.
//
// Returns:
//   - *ListCache: cache in the Idle state with HasMore=true.
func NewListCache(catalog source.Catalog, pageSize int, log *logger.Logger) *ListCache {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &ListCache{
		catalog:     catalog,
		logger:      log,
		ids:         make(map[int]struct{}),
		cursor:      domain.PaginationCursor{PageSize: pageSize, HasMore: true},
		subscribers: make(map[int]func(ListSnapshot)),
	}
}

// log returns a logger from context if available, otherwise the cache's logger
func (c *ListCache) log(ctx context.Context) *logger.Logger {
	if logger.HasContextLogger(ctx) {
		return logger.FromContext(ctx)
	}
	return c.logger
}

// LoadNextPage fetches the next page and appends it to the held items.
//
// It is a no-op while another fetch is running or once the listing is
// exhausted. The listing is requested first, then every entry's detail
// concurrently; a single failure discards the whole page and leaves the
// cursor where it was, so calling again retries the same offset. The loading
// flag is cleared on every return path.
//
// Once started, a fetch runs to completion or failure: cancelling ctx does not
// abort it, since callers that hit the guard are waiting on the same page.
// Values carried by ctx, such as the request logger, are kept.
func (c *ListCache) LoadNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || !c.cursor.HasMore {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	cursor := c.cursor
	generation := c.generation
	c.mu.Unlock()
	c.notify()
	ctx = context.WithoutCancel(ctx)

	// commit runs under the lock together with clearing the loading flag.
	var commit func()
	defer func() {
		c.mu.Lock()
		if commit != nil && generation == c.generation {
			commit()
		}
		c.loading = false
		c.mu.Unlock()
		c.notify()
	}()

	start := time.Now()
	offset := cursor.Offset()
	page, err := c.catalog.ListPage(ctx, cursor.PageSize, offset)
	if err != nil {
		c.log(ctx).WithFields(logger.Fields{
			logger.FieldPageIndex: cursor.PageIndex,
			logger.FieldOffset:    offset,
		}).WithError(err).Error("Failed to fetch listing page")
		return fmt.Errorf("failed to fetch listing page %d: %w", cursor.PageIndex, err)
	}
	if page == nil {
		return fmt.Errorf("%w: listing page %d is empty", domain.ErrMalformedResponse, cursor.PageIndex)
	}

	if len(page.Results) == 0 {
		commit = func() { c.cursor.HasMore = false }
		c.log(ctx).WithField(logger.FieldPageIndex, cursor.PageIndex).Info("Listing exhausted")
		return nil
	}

	items, err := c.fetchDetails(ctx, page.Results)
	if err != nil {
		c.log(ctx).WithFields(logger.Fields{
			logger.FieldPageIndex: cursor.PageIndex,
			logger.FieldCount:     len(page.Results),
		}).WithError(err).Error("Failed to fetch page details, discarding page")
		return fmt.Errorf("failed to fetch details for page %d: %w", cursor.PageIndex, err)
	}

	hasNext := page.HasNext()
	commit = func() {
		for _, item := range items {
			if _, dup := c.ids[item.ID]; dup {
				c.logger.WithField("item_id", item.ID).Warn("Skipping duplicate item")
				continue
			}
			c.ids[item.ID] = struct{}{}
			c.items = append(c.items, item)
		}
		c.cursor.PageIndex++
		c.cursor.HasMore = hasNext
	}

	c.log(ctx).WithFields(logger.Fields{
		logger.FieldPageIndex:  cursor.PageIndex,
		logger.FieldOffset:     offset,
		logger.FieldCount:      len(items),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info("Page fetched")
	return nil
}

// fetchDetails requests every entry's detail concurrently and returns the
// mapped items in listing order, or the first error.
func (c *ListCache) fetchDetails(ctx context.Context, entries []source.ListingEntry) ([]domain.ListItem, error) {
	items := make([]domain.ListItem, len(entries))
	g, gctx := errgroup.WithContext(ctx)

	for i, entry := range entries {
		g.Go(func() error {
			if entry.Name == "" {
				return fmt.Errorf("%w: listing entry %d has no name", domain.ErrMalformedResponse, i)
			}
			detail, err := c.catalog.Detail(gctx, entry.Name)
			if err != nil {
				return fmt.Errorf("detail %q: %w", entry.Name, err)
			}
			if err := detail.Validate(); err != nil {
				return err
			}
			items[i] = source.ToListItem(detail)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Items returns the held items in fetch order.
func (c *ListCache) Items() []domain.ListItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.ListItem(nil), c.items...)
}

// FilteredItems returns the held items matching the current search query.
func (c *ListCache) FilteredItems() []domain.ListItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterItems(c.items, c.query)
}

// Lookup returns the held item with the given id.
func (c *ListCache) Lookup(id int) (domain.ListItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.ids[id]; !ok {
		return domain.ListItem{}, false
	}
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.ListItem{}, false
}

// SetSearchQuery replaces the search query.
func (c *ListCache) SetSearchQuery(q string) {
	c.mu.Lock()
	changed := c.query != q
	c.query = q
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// SearchQuery returns the current search query.
func (c *ListCache) SearchQuery() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// IsLoading reports whether a page fetch is in flight.
func (c *ListCache) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Cursor returns the pagination cursor.
func (c *ListCache) Cursor() domain.PaginationCursor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cursor
}

// OpenDetail marks id as the selected item. It does not fetch anything.
func (c *ListCache) OpenDetail(id int) {
	c.mu.Lock()
	c.selectedID = &id
	c.mu.Unlock()
	c.notify()
}

// CloseDetail clears the selection.
func (c *ListCache) CloseDetail() {
	c.mu.Lock()
	c.selectedID = nil
	c.mu.Unlock()
	c.notify()
}

// SelectedID returns the selected item id, if any.
func (c *ListCache) SelectedID() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selectedID == nil {
		return 0, false
	}
	return *c.selectedID, true
}

// Reset drops all items and rewinds the cursor. A fetch in flight at the time
// of the reset completes but its page is discarded.
func (c *ListCache) Reset() {
	c.mu.Lock()
	c.items = nil
	c.ids = make(map[int]struct{})
	c.cursor = domain.PaginationCursor{PageSize: c.cursor.PageSize, HasMore: true}
	c.selectedID = nil
	c.generation++
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns a consistent copy of the whole state.
func (c *ListCache) Snapshot() ListSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *ListCache) snapshotLocked() ListSnapshot {
	snap := ListSnapshot{
		Items:       append([]domain.ListItem(nil), c.items...),
		Cursor:      c.cursor,
		IsLoading:   c.loading,
		SearchQuery: c.query,
	}
	if c.selectedID != nil {
		id := *c.selectedID
		snap.SelectedID = &id
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (c *ListCache) Subscribe(fn func(ListSnapshot)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subscribers, id)
		c.subMu.Unlock()
	}
}

func (c *ListCache) notify() {
	c.subMu.Lock()
	if len(c.subscribers) == 0 {
		c.subMu.Unlock()
		return
	}
	fns := make([]func(ListSnapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	snap := c.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// filterItems keeps items whose lowercased name contains the lowercased query
// or whose decimal id contains the query as typed. An empty query keeps all.
func filterItems(items []domain.ListItem, query string) []domain.ListItem {
	if query == "" {
		return append([]domain.ListItem(nil), items...)
	}
	q := strings.ToLower(query)
	out := make([]domain.ListItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) || strings.Contains(strconv.Itoa(item.ID), query) {
			out = append(out, item)
		}
	}
	return out
}
