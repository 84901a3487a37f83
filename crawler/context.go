package crawler

import (
	"context"

	"go.uber.org/zap"
)

type ContextKey string

const RunIDKey ContextKey = "run_id"

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// RunID retrieves the run ID from context
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextLogger returns baseLogger annotated with the run ID carried by ctx
func ContextLogger(ctx context.Context, baseLogger *zap.Logger) *zap.Logger {
	if id := RunID(ctx); id != "" {
		return baseLogger.With(zap.String(string(RunIDKey), id))
	}
	return baseLogger
}
