package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	OperationKey ContextKey = "operation"
	ClientIPKey  ContextKey = "client_ip"
)

// GlobalContext is rebuilt by InitWithOTel alongside Logger.
var GlobalContext = NewContextLogger(Logger)

type ContextLogger struct {
	logger *slog.Logger
}

func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext adds request scoped values to log entries.
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	args := make([]any, 0, 6)

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		args = append(args, "request_id", requestID)
	}
	if operation, ok := ctx.Value(OperationKey).(string); ok {
		args = append(args, "operation", operation)
	}
	if ip, ok := ctx.Value(ClientIPKey).(string); ok {
		args = append(args, "client_ip", ip)
	}

	return cl.logger.With(args...)
}

func (cl *ContextLogger) LogError(ctx context.Context, operation string, err error) {
	cl.WithContext(ctx).ErrorContext(ctx, "operation failed",
		"operation", operation,
		"error", err,
	)
}

// WithRequestID returns a child context carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithOperation returns a child context carrying the operation name.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// WithClientIP returns a child context carrying the caller address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}

// RequestIDFrom extracts the request id, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
