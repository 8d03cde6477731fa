// Package middleware holds the echo middleware of the search API.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Queun/ai-teach-platform-sub000/internal/infra/logger"
)

const HeaderRequestID = "X-Request-ID"

func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Response().Header().Set(HeaderRequestID, requestID)

			ctx := logger.WithRequestID(c.Request().Context(), requestID)
			ctx = logger.WithClientIP(ctx, c.RealIP())
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
