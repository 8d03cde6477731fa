package domain

// ContentType tags the collection a record came from.
type ContentType string

const (
	ContentTypeTool     ContentType = "tool"
	ContentTypeNews     ContentType = "news"
	ContentTypeResource ContentType = "resource"
)

// Collection is the plural collection name used by the CMS and the category filter.
type Collection string

const (
	CollectionTools     Collection = "tools"
	CollectionNews      Collection = "news"
	CollectionResources Collection = "resources"
)

// Collections lists the searchable collections in fan-out order.
var Collections = []Collection{CollectionTools, CollectionNews, CollectionResources}

// ContentType returns the record type tag for the collection.
func (c Collection) ContentType() ContentType {
	switch c {
	case CollectionTools:
		return ContentTypeTool
	case CollectionNews:
		return ContentTypeNews
	case CollectionResources:
		return ContentTypeResource
	default:
		return ""
	}
}

// PathPrefix is the site path under which detail pages of the collection live.
func (c Collection) PathPrefix() string {
	return "/" + string(c)
}

// Metadata is the display-only bag carried alongside a record.
type Metadata struct {
	Author string   `json:"author,omitempty"`
	Date   string   `json:"date,omitempty"`
	Views  *int     `json:"views,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// SearchableRecord is the canonical shape every CMS record is normalized to
// before scoring.
type SearchableRecord struct {
	ID          string      `json:"id"`
	DocumentID  string      `json:"documentId,omitempty"`
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Category    string      `json:"category"`
	Image       string      `json:"image,omitempty"`
	URL         string      `json:"url"`
	Metadata    Metadata    `json:"metadata"`
}

// SearchResult is a record that passed the relevance threshold.
type SearchResult struct {
	SearchableRecord
	Score float64 `json:"score"`
}
