package domain

import (
	"fmt"
	"strings"
)

// Category is the search filter. CategoryAll searches every collection.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryTools     Category = Category(CollectionTools)
	CategoryNews      Category = Category(CollectionNews)
	CategoryResources Category = Category(CollectionResources)
)

// ParseCategory maps a raw filter value to a Category. Empty means all.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case "", CategoryAll:
		return CategoryAll, nil
	case CategoryTools:
		return CategoryTools, nil
	case CategoryNews:
		return CategoryNews, nil
	case CategoryResources:
		return CategoryResources, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Includes reports whether the filter selects the collection.
func (c Category) Includes(col Collection) bool {
	return c == CategoryAll || c == "" || Category(col) == c
}

const (
	DefaultSearchLimit = 20
	DefaultSearchPage  = 1
)

// SearchQuery is the input of one search request.
type SearchQuery struct {
	Query    string
	Category Category
	Limit    int
	Page     int
}

// WithDefaults fills zero values with the documented defaults.
func (q SearchQuery) WithDefaults() SearchQuery {
	if q.Category == "" {
		q.Category = CategoryAll
	}
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Page <= 0 {
		q.Page = DefaultSearchPage
	}
	return q
}

// IsBlank reports whether the query text is empty after trimming.
func (q SearchQuery) IsBlank() bool {
	return strings.TrimSpace(q.Query) == ""
}

// CategoryCounts holds pre-pagination match counts per collection.
type CategoryCounts struct {
	Tools     int `json:"tools"`
	News      int `json:"news"`
	Resources int `json:"resources"`
}

// Add increments the counter of the given collection.
func (c *CategoryCounts) Add(col Collection) {
	switch col {
	case CollectionTools:
		c.Tools++
	case CollectionNews:
		c.News++
	case CollectionResources:
		c.Resources++
	}
}

// Sum returns the total across all collections.
func (c CategoryCounts) Sum() int {
	return c.Tools + c.News + c.Resources
}

// SearchResponse is the body returned by GET /api/search.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	Total      int            `json:"total"`
	Query      string         `json:"query"`
	Categories CategoryCounts `json:"categories"`
	// FailedCategories is only populated when partial results are enabled
	// and at least one collection could not be fetched.
	FailedCategories []Collection `json:"failedCategories,omitempty"`
}

// EmptySearchResponse is the short-circuit answer for a blank query.
func EmptySearchResponse(query string) *SearchResponse {
	return &SearchResponse{
		Results: []SearchResult{},
		Query:   query,
	}
}
