package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Queun/ai-teach-platform-sub000/internal/apperrors"
	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/mocks"
	"github.com/Queun/ai-teach-platform-sub000/internal/session"
)

func newTestServer(t *testing.T) (*echo.Echo, *mocks.MockSearchService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockSearchService(ctrl)
	suggester := session.NewSuggester(session.Curated{
		Suggestions: []string{"ChatGPT 教学应用", "AI 写作助手"},
		Popular:     []string{"ChatGPT", "AI 写作"},
	})

	e := echo.New()
	RegisterRoutes(e, NewHandler(svc, suggester, 0))
	return e, svc
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearch_DefaultsApplied(t *testing.T) {
	e, svc := newTestServer(t)

	svc.EXPECT().
		Execute(gomock.Any(), domain.SearchQuery{Query: "ai", Category: domain.CategoryAll, Limit: 20, Page: 1}).
		Return(&domain.SearchResponse{
			Results: []domain.SearchResult{{
				SearchableRecord: domain.SearchableRecord{ID: "1", Type: domain.ContentTypeTool, Title: "AI tutor", URL: "/tools/1"},
				Score:            12,
			}},
			Total:      1,
			Query:      "ai",
			Categories: domain.CategoryCounts{Tools: 1},
		}, nil)

	rec := get(e, "/api/search?q=ai")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, "ai", body["query"])
	assert.Equal(t, map[string]any{"tools": float64(1), "news": float64(0), "resources": float64(0)}, body["categories"])
	assert.NotContains(t, body, "failedCategories")

	results := body["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "tool", first["type"])
	assert.Equal(t, float64(12), first["score"])
}

func TestSearch_ParamsPassedThrough(t *testing.T) {
	e, svc := newTestServer(t)

	svc.EXPECT().
		Execute(gomock.Any(), domain.SearchQuery{Query: "课件", Category: domain.CategoryNews, Limit: 5, Page: 3}).
		Return(domain.EmptySearchResponse("课件"), nil)

	rec := get(e, "/api/search?q=%E8%AF%BE%E4%BB%B6&category=News&limit=5&page=3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[],"total":0,"query":"课件","categories":{"tools":0,"news":0,"resources":0}}`, rec.Body.String())
}

func TestSearch_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"unknown category", "/api/search?q=ai&category=videos"},
		{"zero limit", "/api/search?q=ai&limit=0"},
		{"negative page", "/api/search?q=ai&page=-1"},
		{"non numeric limit", "/api/search?q=ai&limit=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestServer(t)
			rec := get(e, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body apperrors.HTTPResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "invalid search request", body.Error)
			assert.NotEmpty(t, body.Details)
		})
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	e, svc := newTestServer(t)

	cause := &domain.ContentSourceError{Op: "FetchCollection", Collection: domain.CollectionNews, Err: errors.New("connection refused")}
	svc.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.SearchUnavailableError("SearchUsecase.Execute", cause, nil))

	rec := get(e, "/api/search?q=ai")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t,
		fmt.Sprintf(`{"error":"search service unavailable","details":%q}`, cause.Error()),
		rec.Body.String())
}

func TestSearch_ForeignErrorIsInternal(t *testing.T) {
	e, svc := newTestServer(t)
	svc.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil, errors.New("unexpected"))

	rec := get(e, "/api/search?q=ai")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"search service unavailable","details":"unexpected"}`, rec.Body.String())
}

func TestSuggestions(t *testing.T) {
	e, _ := newTestServer(t)

	rec := get(e, "/api/search/suggestions?q=chat")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"query":"chat","suggestions":["ChatGPT 教学应用"]}`, rec.Body.String())

	rec = get(e, "/api/search/suggestions?q=c")
	assert.JSONEq(t, `{"query":"c","suggestions":[]}`, rec.Body.String())
}

func TestPopular(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/api/search/popular")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queries":["ChatGPT","AI 写作"]}`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	e, _ := newTestServer(t)

	rec := get(e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(e, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSearchRequest_ToQuery(t *testing.T) {
	q, err := SearchRequest{Query: "ai"}.ToQuery(10)
	require.NoError(t, err)
	assert.Equal(t, domain.SearchQuery{Query: "ai", Category: domain.CategoryAll, Limit: 10, Page: 1}, q)

	five := 5
	q, err = SearchRequest{Query: "ai", Category: "tools", Limit: &five}.ToQuery(10)
	require.NoError(t, err)
	assert.Equal(t, domain.SearchQuery{Query: "ai", Category: domain.CategoryTools, Limit: 5, Page: 1}, q)
}

func TestRequestValidator_Messages(t *testing.T) {
	v := NewRequestValidator()
	zero := 0
	err := v.Validate(&SearchRequest{Category: "videos", Limit: &zero})
	require.Error(t, err)
	assert.Equal(t, "category must be one of [all tools news resources]; limit must be at least 1", err.Error())
}
