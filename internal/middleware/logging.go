package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Queun/ai-teach-platform-sub000/internal/infra/logger"
)

// quietPaths are polled by probes and scrapers.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

func LoggingMiddleware(baseLogger *slog.Logger) echo.MiddlewareFunc {
	contextLogger := logger.NewContextLogger(baseLogger)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if quietPaths[req.URL.Path] {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the response so the logged status is final.
				c.Error(err)
			}

			ctx := req.Context()
			log := contextLogger.WithContext(ctx)
			res := c.Response()
			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"query", req.URL.RawQuery,
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", res.Size,
				"remote_addr", c.RealIP(),
			}
			switch {
			case res.Status >= 500:
				log.ErrorContext(ctx, "request completed", append(attrs, "error", err)...)
			case res.Status >= 400:
				log.WarnContext(ctx, "request completed", attrs...)
			default:
				log.InfoContext(ctx, "request completed", attrs...)
			}
			return nil
		}
	}
}
