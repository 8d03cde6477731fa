// Package logger configures the process-wide structured logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
)

const instrumentationName = "jiaoxue-search"

// Logger is the process-wide logger. It writes JSON to stdout until Init
// InitWithOTel
// replaces it.
var Logger = slog.New(NewTraceContextHandler(slog.NewJSONHandler(os.Stdout, nil)))

// InitWithOTel initializes the logger, additionally exporting records through
// the OTel log bridge when enableOTel is set.
func InitWithOTel(level string, enableOTel bool) {
	lvl := parseLevel(level)

	var handler slog.Handler
	if enableOTel {
		handler = NewMultiHandler(os.Stdout, lvl)
	} else {
		handler = NewTraceContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	}

	Logger = slog.New(handler)
	GlobalContext = NewContextLogger(Logger)
	slog.SetDefault(Logger)

	Logger.Info("Logger initialized", "otel_enabled", enableOTel, "level", lvl.String())
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler sends records to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler writes JSON to w and exports to the global OTel logger provider.
func NewMultiHandler(w io.Writer, level slog.Level) *MultiHandler {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	otelHandler := otelslog.NewHandler(
		instrumentationName,
		otelslog.WithLoggerProvider(global.GetLoggerProvider()),
	)

	return &MultiHandler{
		handlers: []slog.Handler{
			NewTraceContextHandler(jsonHandler),
			otelHandler,
		},
	}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			_ = handler.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: next}
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &MultiHandler{handlers: next}
}
