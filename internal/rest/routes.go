package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the API on e.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	if e.Validator == nil {
		e.Validator = NewRequestValidator()
	}

	e.GET("/healthz", Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/search", h.Search)
	api.GET("/search/suggestions", h.Suggestions)
	api.GET("/search/popular", h.Popular)
}
