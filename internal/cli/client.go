package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Queun/ai-teach-platform-sub000/internal/apperrors"
	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/httpclient"
)

// APIClient calls the search API of a running server.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpclient.NewPooledClient(timeout),
	}
}

// APIError is a non-200 answer of the search API.
type APIError struct {
	StatusCode int
	Body       apperrors.HTTPResponse
}

func (e *APIError) Error() string {
	if e.Body.Details != "" {
		return fmt.Sprintf("%s (%d): %s", e.Body.Error, e.StatusCode, e.Body.Details)
	}
	if e.Body.Error != "" {
		return fmt.Sprintf("%s (%d)", e.Body.Error, e.StatusCode)
	}
	return fmt.Sprintf("search API returned status %d", e.StatusCode)
}

// Search runs GET /api/search.
func (c *APIClient) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	if q.Category != "" {
		params.Set("category", string(q.Category))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSearchServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(body, &apiErr.Body)
		return nil, apiErr
	}

	var out domain.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &out, nil
}
