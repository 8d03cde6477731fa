package di

import (
	"fmt"
	"time"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/driver/rssfeed"
	"github.com/Queun/ai-teach-platform-sub000/internal/driver/strapi"
	"github.com/Queun/ai-teach-platform-sub000/internal/gateway"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/config"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/httpclient"
	"github.com/Queun/ai-teach-platform-sub000/internal/job"
	"github.com/Queun/ai-teach-platform-sub000/internal/rest"
	"github.com/Queun/ai-teach-platform-sub000/internal/scoring"
	"github.com/Queun/ai-teach-platform-sub000/internal/session"
	"github.com/Queun/ai-teach-platform-sub000/internal/usecase/search_usecase"
)

// feedHostInterval spaces requests to the same RSS host.
const feedHostInterval = 2 * time.Second

type ApplicationComponents struct {
	ContentGateway *gateway.ContentGateway
	// FeedCache is nil when no news feeds are configured.
	FeedCache      *rssfeed.Cache
	Jobs           *job.Scheduler
	SearchUsecase  *search_usecase.SearchUsecase
	Suggester      *session.Suggester
	Handler        *rest.Handler
}

func NewApplicationComponents(cfg *config.Config) (*ApplicationComponents, error) {
	cmsClient, err := strapi.NewClient(strapi.Config{
		BaseURL:       cfg.CMS.BaseURL,
		APIToken:      cfg.CMS.APIToken,
		MaxRetries:    cfg.CMS.MaxRetries,
		RetryInterval: cfg.CMS.RetryInterval,
		RequestsPerS:  cfg.CMS.RequestsPerS,
	}, httpclient.NewPooledClient(cfg.CMS.Timeout))
	if err != nil {
		return nil, fmt.Errorf("cms client: %w", err)
	}

	opts := []gateway.Option{
		gateway.WithPaths(map[domain.Collection]string{
			domain.CollectionTools:     cfg.CMS.ToolsPath,
			domain.CollectionNews:      cfg.CMS.NewsPath,
			domain.CollectionResources: cfg.CMS.ResourcesPath,
		}),
		gateway.WithMediaBase(cfg.CMS.BaseURL),
	}
	jobs := job.NewScheduler()
	var feedCache *rssfeed.Cache
	if len(cfg.Feeds.NewsFeedURLs) > 0 {
		fetcher := rssfeed.NewFetcher(cfg.Feeds.NewsFeedURLs, httpclient.NewPooledClient(cfg.Feeds.Timeout), feedHostInterval)
		feedCache = rssfeed.NewCache(fetcher)
		opts = append(opts, gateway.WithFeeds(feedCache))
		jobs.Add(job.Job{
			Name:     "news-feed-refresh",
			Interval: cfg.Feeds.Refresh,
			Timeout:  feedRefreshTimeout(cfg.Feeds, len(cfg.Feeds.NewsFeedURLs)),
			Fn:       feedCache.Refresh,
		})
	}
	contentGateway := gateway.NewContentGateway(cmsClient, opts...)

	patterns, err := scoring.NewPatternCache(cfg.Search.PatternCache)
	if err != nil {
		return nil, fmt.Errorf("pattern cache: %w", err)
	}
	scorer := scoring.NewScorer(scoring.DefaultWeights, patterns)

	searchUsecase := search_usecase.NewSearchUsecase(contentGateway, scorer, search_usecase.Options{
		FetchPageSize:  cfg.Search.FetchPageSize,
		MaxLimit:       cfg.Search.MaxLimit,
		PartialResults: cfg.Search.PartialResults,
		FanOutTimeout:  cfg.Search.FanOutTimeout,
	})

	suggester := session.NewSuggester(session.DefaultCurated())

	return &ApplicationComponents{
		ContentGateway: contentGateway,
		FeedCache:      feedCache,
		Jobs:           jobs,
		SearchUsecase:  searchUsecase,
		Suggester:      suggester,
		Handler:        rest.NewHandler(searchUsecase, suggester, cfg.Search.DefaultLimit),
	}, nil
}

// feedRefreshTimeout leaves room for host spacing on top of the fetch timeout.
func feedRefreshTimeout(cfg config.FeedsConfig, feeds int) time.Duration {
	return cfg.Timeout + time.Duration(feeds)*feedHostInterval
}
