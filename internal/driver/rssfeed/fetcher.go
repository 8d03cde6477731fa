// Package rssfeed reads external RSS/Atom feeds that supplement CMS news.
package rssfeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Item is one feed entry reduced to the fields the search needs.
type Item struct {
	ID          string
	Title       string
	Description string
	Content     string
	Link        string
	Categories  []string
	Author      string
	Published   string
	Image       string
	Source      string
}

// Fetcher fetches a fixed list of feeds.
type Fetcher struct {
	urls       []string
	httpClient *http.Client
	limiter    *HostRateLimiter
	maxItems   int
}

// NewFetcher returns a Fetcher for urls. Each host is polled at most once
// per minInterval.
func NewFetcher(urls []string, httpClient *http.Client, minInterval time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &Fetcher{
		urls:       urls,
		httpClient: httpClient,
		limiter:    NewHostRateLimiter(minInterval),
		maxItems:   100,
	}
}

// FetchItems fetches every feed concurrently. Items of feeds that succeeded
// are returned even when others fail; the failures are joined into err.
func (f *Fetcher) FetchItems(ctx context.Context) ([]Item, error) {
	if len(f.urls) == 0 {
		return nil, nil
	}

	var (
		mu    sync.Mutex
		items []Item
		errs  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, link := range f.urls {
		g.Go(func() error {
			feedItems, err := f.fetchOne(gctx, link)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("feed %s: %w", link, err))
				return nil
			}
			items = append(items, feedItems...)
			return nil
		})
	}
	_ = g.Wait()

	return items, errors.Join(errs...)
}

func (f *Fetcher) fetchOne(ctx context.Context, link string) ([]Item, error) {
	if err := f.limiter.WaitForHost(ctx, link); err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.Client = f.httpClient
	feed, err := fp.ParseURLWithContext(link, ctx)
	if err != nil {
		return nil, err
	}

	n := len(feed.Items)
	if n > f.maxItems {
		n = f.maxItems
	}
	out := make([]Item, 0, n)
	for _, it := range feed.Items[:n] {
		out = append(out, convertItem(feed, it))
	}
	return out, nil
}

func convertItem(feed *gofeed.Feed, it *gofeed.Item) Item {
	item := Item{
		ID:          it.GUID,
		Title:       it.Title,
		Description: it.Description,
		Content:     it.Content,
		Link:        it.Link,
		Categories:  it.Categories,
		Published:   it.Published,
		Source:      feed.Title,
	}
	if item.ID == "" {
		item.ID = it.Link
	}
	if it.PublishedParsed != nil {
		item.Published = it.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if it.Author != nil {
		item.Author = it.Author.Name
	} else if len(it.Authors) > 0 && it.Authors[0] != nil {
		item.Author = it.Authors[0].Name
	}
	if it.Image != nil {
		item.Image = it.Image.URL
	}
	if item.Image == "" {
		for _, enc := range it.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				item.Image = enc.URL
				break
			}
		}
	}
	return item
}

// HostRateLimiter spaces out requests per host.
type HostRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	interval time.Duration
}

func NewHostRateLimiter(interval time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

func (h *HostRateLimiter) WaitForHost(ctx context.Context, rawURL string) error {
	if h.interval <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return &url.Error{Op: "parse", URL: rawURL, Err: errors.New("missing host in URL")}
	}
	return h.limiterFor(u.Host).Wait(ctx)
}

func (h *HostRateLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.RLock()
	limiter, ok := h.limiters[host]
	h.mu.RUnlock()
	if ok {
		return limiter
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if limiter, ok := h.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Every(h.interval), 1)
	h.limiters[host] = limiter
	return limiter
}
