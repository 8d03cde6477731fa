package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Queun/ai-teach-platform-sub000/internal/apperrors"
	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/infra/logger"
	"github.com/Queun/ai-teach-platform-sub000/internal/port"
	"github.com/Queun/ai-teach-platform-sub000/internal/session"
)

// SearchRequest holds the query parameters of GET /api/search.
type SearchRequest struct {
	Query    string `query:"q"`
	Category string `query:"category" validate:"omitempty,oneof=all tools news resources"`
	Limit    *int   `query:"limit" validate:"omitempty,min=1"`
	Page     *int   `query:"page" validate:"omitempty,min=1"`
}

// ToQuery converts a validated request into a search query. A missing
// limit becomes defaultLimit.
func (r SearchRequest) ToQuery(defaultLimit int) (domain.SearchQuery, error) {
	category, err := domain.ParseCategory(r.Category)
	if err != nil {
		return domain.SearchQuery{}, err
	}
	q := domain.SearchQuery{Query: r.Query, Category: category, Limit: defaultLimit}
	if r.Limit != nil {
		q.Limit = *r.Limit
	}
	if r.Page != nil {
		q.Page = *r.Page
	}
	return q.WithDefaults(), nil
}

type SuggestionsResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

type PopularResponse struct {
	Queries []string `json:"queries"`
}

// Handler serves the search API.
type Handler struct {
	search       port.SearchService
	suggester    *session.Suggester
	defaultLimit int
}

func NewHandler(search port.SearchService, suggester *session.Suggester, defaultLimit int) *Handler {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultSearchLimit
	}
	return &Handler{search: search, suggester: suggester, defaultLimit: defaultLimit}
}

// Search handles GET /api/search.
func (h *Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ValidationError(apperrors.ErrInvalidInput.Error(), bindError(err), nil), "Search")
	}
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if err := c.Validate(&req); err != nil {
		return respondError(c, apperrors.ValidationError(apperrors.ErrInvalidInput.Error(), err, nil), "Search")
	}

	q, err := req.ToQuery(h.defaultLimit)
	if err != nil {
		return respondError(c, apperrors.ValidationError(apperrors.ErrInvalidInput.Error(), err, nil), "Search")
	}

	ctx := logger.WithOperation(c.Request().Context(), "search")
	resp, err := h.search.Execute(ctx, q)
	if err != nil {
		return respondError(c, err, "Search")
	}
	return c.JSON(http.StatusOK, resp)
}

// Suggestions handles GET /api/search/suggestions.
func (h *Handler) Suggestions(c echo.Context) error {
	q := c.QueryParam("q")
	return c.JSON(http.StatusOK, SuggestionsResponse{
		Query:       q,
		Suggestions: h.suggester.Suggest(q),
	})
}

// Popular handles GET /api/search/popular.
func (h *Handler) Popular(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "public, max-age=300")
	return c.JSON(http.StatusOK, PopularResponse{Queries: h.suggester.Popular()})
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func respondError(c echo.Context, err error, operation string) error {
	appErr := apperrors.FromError(operation, err)
	ctx := c.Request().Context()
	apperrors.LogError(logger.GlobalContext.WithContext(ctx), appErr, operation)
	return c.JSON(appErr.HTTPStatusCode(), appErr.ToHTTPResponse())
}

// bindError keeps the binder's message but drops echo's status prefix.
func bindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return errors.New(msg)
		}
	}
	return err
}
