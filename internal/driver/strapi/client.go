// Package strapi is a minimal read-only client for the Strapi REST API that
// backs the tools, news and resources collections.
package strapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/Queun/ai-teach-platform-sub000/internal/apperrors"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/logger"
)

const (
	userAgent       = "jiaoxue-search/1.0"
	maxErrorBodyLen = 512
)

// Entry is one raw record as returned by Strapi: either flat (v5) or wrapped
// in an "attributes" envelope (v4).
type Entry map[string]any

type listResponse struct {
	Data  []Entry   `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Status  int    `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cms returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("cms returned status %d", e.StatusCode)
}

// Config configures a Client.
type Config struct {
	BaseURL       string
	APIToken      string
	MaxRetries    int
	RetryInterval time.Duration
	RequestsPerS  float64
}

type Client struct {
	baseURL       *url.URL
	token         string
	httpClient    *http.Client
	limiter       *rate.Limiter
	maxRetries    int
	retryInterval time.Duration
}

// NewClient validates cfg and returns a Client using httpClient for transport.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	limit := rate.Inf
	if cfg.RequestsPerS > 0 {
		limit = rate.Limit(cfg.RequestsPerS)
	}
	burst := int(cfg.RequestsPerS)
	if burst < 3 {
		burst = 3
	}

	return &Client{
		baseURL:       u,
		token:         cfg.APIToken,
		httpClient:    httpClient,
		limiter:       rate.NewLimiter(limit, burst),
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
	}, nil
}

// BuildListURL returns the URL listing the first page of path with all
// relations populated.
func BuildListURL(base *url.URL, path string, pageSize int) string {
	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + "/api/" + strings.Trim(path, "/")

	vals := url.Values{}
	vals.Set("pagination[page]", "1")
	vals.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	vals.Set("populate", "*")
	u.RawQuery = vals.Encode()

	return u.String()
}

// ListEntries fetches the first pageSize entries of the collection at path.
// Transient failures (network errors, 429 and 5xx) are retried with
// exponential backoff; other statuses fail immediately.
func (c *Client) ListEntries(ctx context.Context, path string, pageSize int) ([]Entry, error) {
	target := BuildListURL(c.baseURL, path, pageSize)

	operation := func() ([]Entry, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		entries, err := c.get(ctx, target)
		if err == nil {
			return entries, nil
		}
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return nil, err
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !retryableStatus(statusErr.StatusCode) {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		logger.Logger.WarnContext(ctx, "cms request failed, retrying", "url", target, "error", err)
		return nil, err
	}

	entries, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackoff()),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
	)
	if err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

func (c *Client) newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	if c.retryInterval > 0 {
		bo.InitialInterval = c.retryInterval
	}
	bo.MaxInterval = 2 * time.Second
	bo.Multiplier = 2
	return bo
}

func (c *Client) get(ctx context.Context, target string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Logger.DebugContext(ctx, "Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var payload listResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode cms response: %w", err))
	}
	if payload.Error != nil {
		return nil, &StatusError{StatusCode: payload.Error.Status, Message: payload.Error.Message}
	}
	if payload.Data == nil {
		return []Entry{}, nil
	}
	return payload.Data, nil
}

func errorMessage(body []byte) string {
	var payload listResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// classify maps transport failures onto the search sentinels.
func classify(err error) error {
	if isTimeoutError(err) {
		return fmt.Errorf("%w: %w", apperrors.ErrSearchTimeout, err)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrSearchServiceUnavailable, err)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
