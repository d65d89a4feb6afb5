// Package observability carries request-scoped logging state through context.
package observability

import (
	"context"
	"log/slog"
)

type loggerContextKey struct{}

type requestIDContextKey struct{}

// ContextWithLogger attaches a non-nil logger to the context.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, lg)
}

// LoggerFromContext returns the logger stored in the context or the default
// slog logger when none is present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if lg, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && lg != nil {
		return lg
	}
	return slog.Default()
}

// ContextWithRequestID stores a non-empty request_id so the engine and the
// transports can correlate their logs with the HTTP request or CLI run.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext retrieves the request_id, or "" when none is present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	rid, _ := ctx.Value(requestIDContextKey{}).(string)
	return rid
}

// TaskLogger is the context logger annotated with the task name and, when
// known, the request_id. Loggers stored by the HTTP middleware already carry
// request_id, so it is only added for bare contexts.
func TaskLogger(ctx context.Context, task string) *slog.Logger {
	lg := LoggerFromContext(ctx).With(slog.String("task", task))
	if ctx == nil {
		return lg
	}
	if _, stored := ctx.Value(loggerContextKey{}).(*slog.Logger); stored {
		return lg
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		lg = lg.With(slog.String("request_id", rid))
	}
	return lg
}
