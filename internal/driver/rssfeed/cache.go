package rssfeed

import (
	"context"
	"sync"
	"time"
)

// ItemSource fetches the current items of the configured feeds.
type ItemSource interface {
	FetchItems(ctx context.Context) ([]Item, error)
}

// Cache keeps the items of the last successful refresh. Readers never touch
// the network; Refresh is driven by a background job.
type Cache struct {
	source ItemSource

	mu        sync.RWMutex
	items     []Item
	refreshed time.Time
}

func NewCache(source ItemSource) *Cache {
	return &Cache{source: source}
}

// Items returns a copy of the cached items.
func (c *Cache) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// RefreshedAt reports when items were last replaced.
func (c *Cache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshed
}

// Refresh fetches the feeds and swaps in the result. When every feed fails
// the previous items are kept.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.source.FetchItems(ctx)
	if len(items) == 0 && err != nil {
		return err
	}

	c.mu.Lock()
	c.items = items
	c.refreshed = time.Now()
	c.mu.Unlock()
	return err
}
