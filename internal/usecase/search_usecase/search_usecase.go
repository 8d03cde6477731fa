package search_usecase

import (
	"context"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/Queun/ai-teach-platform-sub000/internal/apperrors"
	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/logger"
	appOtel "github.com/Queun/ai-teach-platform-sub000/internal/infra/otel"
	"github.com/Queun/ai-teach-platform-sub000/internal/metrics"
	"github.com/Queun/ai-teach-platform-sub000/internal/port"
	"github.com/Queun/ai-teach-platform-sub000/internal/scoring"
)

const (
	// DefaultFetchPageSize is how many records are requested per collection.
	DefaultFetchPageSize = 100
	// MaxDescriptionLength is the rune length descriptions are cut to.
	MaxDescriptionLength = 200
)

type Options struct {
	FetchPageSize int
	MaxLimit      int
	// PartialResults keeps the collections that were fetched when another
	// one fails, instead of failing the whole search.
	PartialResults bool
	// FanOutTimeout bounds the parallel fetch; zero disables it.
	FanOutTimeout time.Duration
}

type SearchUsecase struct {
	source port.ContentSource
	scorer *scoring.Scorer
	opts   Options
}

func NewSearchUsecase(source port.ContentSource, scorer *scoring.Scorer, opts Options) *SearchUsecase {
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.DefaultWeights, nil)
	}
	if opts.FetchPageSize <= 0 {
		opts.FetchPageSize = DefaultFetchPageSize
	}
	return &SearchUsecase{source: source, scorer: scorer, opts: opts}
}

type fetchResult struct {
	records []domain.SearchableRecord
	err     error
}

// Execute runs one search: fan out to the selected collections, score and
// filter every record, rank, and cut the requested page.
func (u *SearchUsecase) Execute(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	start := time.Now()
	q = q.WithDefaults()
	if u.opts.MaxLimit > 0 && q.Limit > u.opts.MaxLimit {
		q.Limit = u.opts.MaxLimit
	}

	if q.IsBlank() {
		return domain.EmptySearchResponse(q.Query), nil
	}

	log := logger.GlobalContext.WithContext(ctx)

	fetched, failed, err := u.fanOut(ctx, q.Category)
	if err != nil {
		metrics.RecordSearch(string(q.Category), 0, time.Since(start).Seconds(), err)
		return nil, apperrors.SearchUnavailableError("SearchUsecase.Execute", err, map[string]any{
			"query":    q.Query,
			"category": string(q.Category),
		})
	}

	var counts domain.CategoryCounts
	matched := make([]domain.SearchResult, 0)
	for i, col := range domain.Collections {
		scoredBefore := len(matched)
		for _, rec := range fetched[i].records {
			score := u.scorer.ScoreRecord(rec, q.Query)
			if !scoring.Matches(score) {
				continue
			}
			rec.Description = truncate(rec.Description, MaxDescriptionLength)
			matched = append(matched, domain.SearchResult{SearchableRecord: rec, Score: score})
			counts.Add(col)
		}
		appOtel.Instruments().RecordScoring(ctx, string(col), len(fetched[i].records), len(matched)-scoredBefore)
	}

	// Stable: equal scores keep collection order, then source order.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})

	resp := &domain.SearchResponse{
		Results:          paginate(matched, q.Page, q.Limit),
		Total:            len(matched),
		Query:            q.Query,
		Categories:       counts,
		FailedCategories: failed,
	}

	duration := time.Since(start)
	metrics.RecordSearch(string(q.Category), resp.Total, duration.Seconds(), nil)
	log.InfoContext(ctx, "search completed",
		"query", q.Query,
		"category", string(q.Category),
		"total", resp.Total,
		"page", q.Page,
		"returned", len(resp.Results),
		"failed_categories", len(failed),
		"duration_ms", duration.Milliseconds(),
	)

	return resp, nil
}

// fanOut fetches the collections selected by category in parallel. In the
// default mode the first failure cancels the remaining fetches and is
// returned; with partial results failures are collected instead.
func (u *SearchUsecase) fanOut(ctx context.Context, category domain.Category) ([]fetchResult, []domain.Collection, error) {
	if u.opts.FanOutTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.opts.FanOutTimeout)
		defer cancel()
	}

	start := time.Now()
	results := make([]fetchResult, len(domain.Collections))

	var g *errgroup.Group
	gctx := ctx
	if u.opts.PartialResults {
		g = &errgroup.Group{}
	} else {
		g, gctx = errgroup.WithContext(ctx)
	}

	var mu sync.Mutex
	for i, col := range domain.Collections {
		if !category.Includes(col) {
			continue
		}
		g.Go(func() error {
			fetchStart := time.Now()
			records, err := u.source.FetchCollection(gctx, col, u.opts.FetchPageSize)
			metrics.RecordCollectionFetch(string(col), time.Since(fetchStart).Seconds(), err)

			mu.Lock()
			results[i] = fetchResult{records: records, err: err}
			mu.Unlock()

			if err != nil && !u.opts.PartialResults {
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	appOtel.Instruments().RecordFanOut(ctx, string(category), time.Since(start), err != nil)
	if err != nil {
		return nil, nil, err
	}

	var failed []domain.Collection
	for i, col := range domain.Collections {
		if results[i].err == nil {
			continue
		}
		logger.GlobalContext.WithContext(ctx).WarnContext(ctx, "collection fetch failed, returning partial results",
			"collection", string(col),
			"error", results[i].err,
		)
		results[i].records = nil
		failed = append(failed, col)
	}
	return results, failed, nil
}

func paginate(results []domain.SearchResult, page, limit int) []domain.SearchResult {
	if page < 1 || limit < 1 || page-1 >= (len(results)+limit-1)/limit {
		return []domain.SearchResult{}
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
