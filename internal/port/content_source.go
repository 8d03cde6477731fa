package port

//go:generate mockgen -source=content_source.go -destination=../mocks/content_source_mock.go -package=mocks

import (
	"context"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
)

// ContentSource fetches one page of a content collection, already normalized
// to SearchableRecord.
type ContentSource interface {
	FetchCollection(ctx context.Context, collection domain.Collection, pageSize int) ([]domain.SearchableRecord, error)
}
