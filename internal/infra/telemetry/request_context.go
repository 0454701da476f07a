package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type requestContextKey struct{}

// EnsureRequestID returns a context carrying a request id, minting one
// when none is present.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, requestContextKey{}, id), id
}

// RequestIDFromContext extracts the request id added by EnsureRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestContextKey{}).(string)
	return id, ok && id != ""
}

// LoggerWithRequest annotates a logger with the context's request id.
func LoggerWithRequest(ctx context.Context, base *zap.Logger) *zap.Logger {
	logger := base
	if logger == nil {
		logger = zap.NewNop()
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		return logger.With(zap.String("request_id", id))
	}
	return logger
}
