package strapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Queun/ai-teach-platform-sub000/internal/apperrors"
)

func newTestClient(t *testing.T, srv *httptest.Server, token string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:       srv.URL,
		APIToken:      token,
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
	}, srv.Client())
	require.NoError(t, err)
	return c
}

func TestBuildListURL(t *testing.T) {
	base, err := url.Parse("https://cms.example.com/strapi")
	require.NoError(t, err)

	got, err := url.Parse(BuildListURL(base, "/tools/", 100))
	require.NoError(t, err)

	assert.Equal(t, "/strapi/api/tools", got.Path)
	assert.Equal(t, "100", got.Query().Get("pagination[pageSize]"))
	assert.Equal(t, "1", got.Query().Get("pagination[page]"))
	assert.Equal(t, "*", got.Query().Get("populate"))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url"}, nil)
	assert.Error(t, err)
}

func TestListEntries_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/news", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":7,"documentId":"abc","title":"Flat"},{"id":8,"attributes":{"title":"Wrapped"}}],"meta":{}}`))
	}))
	defer srv.Close()

	entries, err := newTestClient(t, srv, "secret").ListEntries(context.Background(), "news", 100)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, json.Number("7"), entries[0]["id"])
	assert.Equal(t, "abc", entries[0]["documentId"])
	assert.Contains(t, entries[1], "attributes")
}

func TestListEntries_NullData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	entries, err := newTestClient(t, srv, "").ListEntries(context.Background(), "tools", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListEntries_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":1}]}`))
	}))
	defer srv.Close()

	entries, err := newTestClient(t, srv, "").ListEntries(context.Background(), "tools", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestListEntries_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, "").ListEntries(context.Background(), "tools", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSearchServiceUnavailable)
	assert.Equal(t, int32(3), calls.Load())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestListEntries_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"data":null,"error":{"status":403,"name":"ForbiddenError","message":"Forbidden"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, "").ListEntries(context.Background(), "resources", 10)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "cms returned status 403: Forbidden")
}

func TestListEntries_MalformedBodyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, "").ListEntries(context.Background(), "tools", 10)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestListEntries_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, srv, "").ListEntries(ctx, "tools", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSearchTimeout)
}
