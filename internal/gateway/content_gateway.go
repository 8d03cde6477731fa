package gateway

import (
	"context"
	"net/url"
	"strings"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/driver/rssfeed"
	"github.com/Queun/ai-teach-platform-sub000/internal/driver/strapi"
	"github.com/Queun/ai-teach-platform-sub000/internal/richtext"
)

// CMSDriver lists raw entries of a CMS collection.
type CMSDriver interface {
	ListEntries(ctx context.Context, path string, pageSize int) ([]strapi.Entry, error)
}

// FeedItems exposes the cached items of external news feeds.
type FeedItems interface {
	Items() []rssfeed.Item
}

// ContentGateway implements port.ContentSource on top of the CMS driver,
// normalizing every raw entry to a SearchableRecord exactly once.
type ContentGateway struct {
	driver    CMSDriver
	feeds     FeedItems
	paths     map[domain.Collection]string
	mediaBase *url.URL
	search    richtext.Extractor
	display   richtext.Extractor
}

// Option customizes a ContentGateway.
type Option func(*ContentGateway)

// WithPaths overrides the CMS API path of collections.
func WithPaths(paths map[domain.Collection]string) Option {
	return func(g *ContentGateway) {
		for col, p := range paths {
			if p != "" {
				g.paths[col] = p
			}
		}
	}
}

// WithMediaBase resolves relative upload URLs against base.
func WithMediaBase(base string) Option {
	return func(g *ContentGateway) {
		if u, err := url.Parse(base); err == nil && u.IsAbs() {
			g.mediaBase = u
		}
	}
}

// WithFeeds merges cached external feed items into the news collection.
func WithFeeds(feeds FeedItems) Option {
	return func(g *ContentGateway) {
		g.feeds = feeds
	}
}

func NewContentGateway(driver CMSDriver, opts ...Option) *ContentGateway {
	g := &ContentGateway{
		driver: driver,
		paths: map[domain.Collection]string{
			domain.CollectionTools:     string(domain.CollectionTools),
			domain.CollectionNews:      string(domain.CollectionNews),
			domain.CollectionResources: string(domain.CollectionResources),
		},
		search:  richtext.ForSearch(),
		display: richtext.ForDisplay(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FetchCollection fetches up to pageSize entries of collection and normalizes them.
func (g *ContentGateway) FetchCollection(ctx context.Context, collection domain.Collection, pageSize int) ([]domain.SearchableRecord, error) {
	path, ok := g.paths[collection]
	if !ok {
		return nil, &domain.ContentSourceError{Op: "FetchCollection", Collection: collection, Err: errUnknownCollection}
	}

	entries, err := g.driver.ListEntries(ctx, path, pageSize)
	if err != nil {
		return nil, &domain.ContentSourceError{Op: "FetchCollection", Collection: collection, Err: err}
	}

	records := make([]domain.SearchableRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, g.normalize(collection, entry))
	}

	if collection == domain.CollectionNews && g.feeds != nil {
		for _, item := range g.feeds.Items() {
			records = append(records, g.normalizeFeedItem(item))
		}
	}

	return records, nil
}

func (g *ContentGateway) normalize(collection domain.Collection, raw map[string]any) domain.SearchableRecord {
	attrs := unwrapAttributes(raw)
	fields := fieldsFor(collection)

	rec := domain.SearchableRecord{
		ID:         stringify(attrs["id"]),
		DocumentID: stringify(attrs["documentId"]),
		Type:       collection.ContentType(),
		Tags:       []string{},
	}

	if v, ok := fields.title.first(attrs); ok {
		rec.Title = strings.TrimSpace(htmlText(g.display.Extract(v)))
	}

	var body string
	if v, ok := fields.body.first(attrs); ok {
		body = g.search.Extract(v)
	}
	if v, ok := fields.description.first(attrs); ok {
		rec.Description = strings.TrimSpace(htmlText(g.search.Extract(v)))
	} else if body != "" {
		rec.Description = strings.TrimSpace(htmlText(body))
	}

	if v, ok := fields.category.first(attrs); ok {
		rec.Category = labelOf(v, g.display)
	}
	if v, ok := fields.tags.first(attrs); ok {
		rec.Tags = tagsOf(v)
	}

	for _, name := range fields.image {
		if s := imageURL(attrs[name], g.mediaBase); s != "" {
			rec.Image = s
			break
		}
	}
	if rec.Image == "" && body != "" {
		rec.Image = resolveMediaURL(firstImageSrc(body), g.mediaBase)
	}

	rec.URL = recordURL(collection, rec)
	rec.Metadata = g.metadata(attrs, fields)
	return rec
}

func (g *ContentGateway) metadata(attrs map[string]any, fields collectionFields) domain.Metadata {
	var md domain.Metadata
	if v, ok := fields.author.first(attrs); ok {
		md.Author = labelOf(v, g.display)
	}
	if v, ok := fields.date.first(attrs); ok {
		md.Date = stringify(v)
	}
	for _, key := range []string{"views", "viewCount", "downloads"} {
		if n := toInt(attrs[key]); n != nil {
			md.Views = n
			break
		}
	}
	for _, key := range []string{"rating", "score"} {
		if f := toFloat(attrs[key]); f != nil {
			md.Rating = f
			break
		}
	}
	return md
}

func (g *ContentGateway) normalizeFeedItem(item rssfeed.Item) domain.SearchableRecord {
	description := htmlText(item.Description)
	if description == "" {
		description = htmlText(item.Content)
	}
	image := item.Image
	if image == "" {
		image = firstImageSrc(item.Content)
	}
	tags := item.Categories
	if tags == nil {
		tags = []string{}
	}

	return domain.SearchableRecord{
		ID:          item.ID,
		Type:        domain.ContentTypeNews,
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(description),
		Tags:        tags,
		Category:    item.Source,
		Image:       image,
		URL:         item.Link,
		Metadata: domain.Metadata{
			Author: item.Author,
			Date:   item.Published,
		},
	}
}

// recordURL builds the detail path, preferring the stable documentId.
func recordURL(collection domain.Collection, rec domain.SearchableRecord) string {
	id := rec.DocumentID
	if id == "" {
		id = rec.ID
	}
	if id == "" {
		return collection.PathPrefix()
	}
	return collection.PathPrefix() + "/" + url.PathEscape(id)
}

func fieldsFor(collection domain.Collection) collectionFields {
	switch collection {
	case domain.CollectionTools:
		return toolFields
	case domain.CollectionNews:
		return newsFields
	default:
		return resourceFields
	}
}
