package rssfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>EdTech Daily</title>
  <link>https://edtech.example.com</link>
  <item>
    <title>AI tutors arrive in classrooms</title>
    <link>https://edtech.example.com/ai-tutors</link>
    <guid>tutor-1</guid>
    <description>&lt;p&gt;Schools adopt &lt;b&gt;AI&lt;/b&gt; tutors.&lt;/p&gt;</description>
    <category>AI</category>
    <category>Classroom</category>
    <pubDate>Mon, 02 Jun 2025 08:00:00 GMT</pubDate>
    <enclosure url="https://edtech.example.com/tutor.jpg" type="image/jpeg" length="100"/>
  </item>
  <item>
    <title>No guid item</title>
    <link>https://edtech.example.com/no-guid</link>
  </item>
</channel>
</rss>`

func TestFetchItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	f := NewFetcher([]string{srv.URL + "/feed.xml"}, srv.Client(), 0)
	items, err := f.FetchItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "tutor-1", first.ID)
	assert.Equal(t, "AI tutors arrive in classrooms", first.Title)
	assert.Equal(t, []string{"AI", "Classroom"}, first.Categories)
	assert.Equal(t, "EdTech Daily", first.Source)
	assert.Equal(t, "2025-06-02T08:00:00Z", first.Published)
	assert.Equal(t, "https://edtech.example.com/tutor.jpg", first.Image)
	assert.Contains(t, first.Description, "<b>AI</b>")

	assert.Equal(t, "https://edtech.example.com/no-guid", items[1].ID)
}

func TestFetchItems_PartialFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	f := NewFetcher([]string{good.URL, bad.URL}, nil, 0)
	items, err := f.FetchItems(context.Background())

	assert.Error(t, err)
	assert.Len(t, items, 2, "items of the healthy feed are kept")
}

func TestFetchItems_NoFeeds(t *testing.T) {
	items, err := NewFetcher(nil, nil, time.Second).FetchItems(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestHostRateLimiter(t *testing.T) {
	h := NewHostRateLimiter(time.Hour)

	require.NoError(t, h.WaitForHost(context.Background(), "https://a.example.com/rss"))
	assert.Same(t, h.limiterFor("a.example.com"), h.limiterFor("a.example.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, h.WaitForHost(ctx, "https://a.example.com/atom"), "second call within the interval must wait")

	assert.Error(t, h.WaitForHost(context.Background(), "/relative"))
}

type stubSource struct {
	items []Item
	err   error
}

func (s *stubSource) FetchItems(context.Context) ([]Item, error) {
	return s.items, s.err
}

func TestCache_Refresh(t *testing.T) {
	src := &stubSource{items: []Item{{ID: "a"}}}
	c := NewCache(src)
	assert.Empty(t, c.Items())
	assert.True(t, c.RefreshedAt().IsZero())

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []Item{{ID: "a"}}, c.Items())
	assert.False(t, c.RefreshedAt().IsZero())

	// Every feed failing keeps what was cached.
	src.items, src.err = nil, errors.New("all feeds down")
	assert.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, []Item{{ID: "a"}}, c.Items())

	// A partial failure still replaces the items.
	src.items, src.err = []Item{{ID: "b"}}, errors.New("one feed down")
	assert.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, []Item{{ID: "b"}}, c.Items())
}

func TestCache_ItemsIsACopy(t *testing.T) {
	c := NewCache(&stubSource{items: []Item{{ID: "a"}}})
	require.NoError(t, c.Refresh(context.Background()))

	items := c.Items()
	items[0].ID = "changed"
	assert.Equal(t, "a", c.Items()[0].ID)
}
