package di

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Queun/ai-teach-platform-sub000/internal/infra/config"
)

func testConfig() *config.Config {
	return &config.Config{
		CMS: config.CMSConfig{
			BaseURL:   "http://cms.local:1337",
			ToolsPath: "tools", NewsPath: "news", ResourcesPath: "resources",
		},
		Search: config.SearchConfig{FetchPageSize: 100, DefaultLimit: 20, MaxLimit: 100, PatternCache: 16},
	}
}

func TestNewApplicationComponents(t *testing.T) {
	c, err := NewApplicationComponents(testConfig())
	require.NoError(t, err)
	assert.NotNil(t, c.SearchUsecase)
	assert.NotNil(t, c.Handler)
	assert.NotEmpty(t, c.Suggester.Popular())
	assert.Nil(t, c.FeedCache)
	assert.NotNil(t, c.Jobs)
}

func TestNewApplicationComponents_WithFeeds(t *testing.T) {
	cfg := testConfig()
	cfg.Feeds.NewsFeedURLs = []string{"https://example.com/feed.xml"}
	cfg.Feeds.Refresh = time.Minute
	c, err := NewApplicationComponents(cfg)
	require.NoError(t, err)
	assert.NotNil(t, c.ContentGateway)
	assert.NotNil(t, c.FeedCache)
	assert.Empty(t, c.FeedCache.Items(), "feeds are only read by the background job")
}

func TestNewApplicationComponents_InvalidCMSURL(t *testing.T) {
	cfg := testConfig()
	cfg.CMS.BaseURL = "not a url"
	_, err := NewApplicationComponents(cfg)
	assert.Error(t, err)
}
