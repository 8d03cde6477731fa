// Package session holds the user-local search helpers: query history,
// typeahead suggestions and result highlighting.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/logger"
	"github.com/Queun/ai-teach-platform-sub000/internal/metrics"
	"github.com/Queun/ai-teach-platform-sub000/internal/port"
)

const (
	// HistoryKey is the storage key holding the serialized history list.
	HistoryKey = "search-history"
	// MaxHistoryItems caps the number of remembered queries.
	MaxHistoryItems = 20
)

// HistoryService keeps the most recent distinct queries, newest first.
// Every mutation rewrites the full list.
type HistoryService struct {
	storage port.KeyValueStorage
	now     func() time.Time
}

func NewHistoryService(storage port.KeyValueStorage) *HistoryService {
	return &HistoryService{storage: storage, now: time.Now}
}

// List returns the stored history. A corrupt blob is logged and treated as
// an empty history.
func (s *HistoryService) List(ctx context.Context) ([]domain.SearchHistoryItem, error) {
	raw, ok, err := s.storage.Get(ctx, HistoryKey)
	if err != nil {
		metrics.RecordHistoryOperation("list", err)
		return nil, &domain.StorageError{Op: "history list", Err: err}
	}
	metrics.RecordHistoryOperation("list", nil)
	if !ok || raw == "" {
		return []domain.SearchHistoryItem{}, nil
	}

	var items []domain.SearchHistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.GlobalContext.WithContext(ctx).WarnContext(ctx, "discarding malformed search history",
			slog.String("key", HistoryKey),
			slog.String("error", err.Error()),
		)
		return []domain.SearchHistoryItem{}, nil
	}
	if items == nil {
		items = []domain.SearchHistoryItem{}
	}
	return items, nil
}

// Add records a query at the front of the history. An existing entry for
// the same query is moved instead of duplicated. Blank queries are ignored.
func (s *HistoryService) Add(ctx context.Context, query string, resultCount int) ([]domain.SearchHistoryItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	next := make([]domain.SearchHistoryItem, 0, MaxHistoryItems)
	next = append(next, domain.SearchHistoryItem{
		Query:       query,
		Timestamp:   s.now().UnixMilli(),
		ResultCount: resultCount,
	})
	for _, item := range items {
		if len(next) == MaxHistoryItems {
			break
		}
		if item.Query == query {
			continue
		}
		next = append(next, item)
	}

	if err := s.save(ctx, "add", next); err != nil {
		return nil, err
	}
	return next, nil
}

// Remove drops one query from the history.
func (s *HistoryService) Remove(ctx context.Context, query string) ([]domain.SearchHistoryItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	next := make([]domain.SearchHistoryItem, 0, len(items))
	for _, item := range items {
		if item.Query != query {
			next = append(next, item)
		}
	}

	if err := s.save(ctx, "remove", next); err != nil {
		return nil, err
	}
	return next, nil
}

// Clear deletes the stored history.
func (s *HistoryService) Clear(ctx context.Context) error {
	err := s.storage.Remove(ctx, HistoryKey)
	metrics.RecordHistoryOperation("clear", err)
	if err != nil {
		return &domain.StorageError{Op: "history clear", Err: err}
	}
	return nil
}

func (s *HistoryService) save(ctx context.Context, op string, items []domain.SearchHistoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	err = s.storage.Set(ctx, HistoryKey, string(data))
	metrics.RecordHistoryOperation(op, err)
	if err != nil {
		return &domain.StorageError{Op: "history " + op, Err: err}
	}
	return nil
}
