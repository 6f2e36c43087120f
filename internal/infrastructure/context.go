package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

// TraceIDContextKey carries the request trace ID.
const TraceIDContextKey contextKey = "trace_id"

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(TraceIDContextKey).(string)
	return traceID
}

// EnsureTraceID returns ctx with a fresh UUID trace ID unless one is set.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, uuid.NewString())
}

// WithComponent tags logger output with the emitting component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}
