package port

//go:generate mockgen -source=search.go -destination=../mocks/search_service_mock.go -package=mocks

import (
	"context"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
)

// SearchService executes a search request.
type SearchService interface {
	Execute(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error)
}
