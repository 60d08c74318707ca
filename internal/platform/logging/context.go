package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type ctxKey struct{}

var fallback atomic.Pointer[slog.Logger]

func init() {
	fallback.Store(slog.Default())
}

func defaultLogger() *slog.Logger {
	return fallback.Load()
}

func stored(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}

	logger, ok := ctx.Value(ctxKey{}).(*slog.Logger)

	return logger, ok && logger != nil
}

// FromContext returns the request logger, or the process default when ctx
// carries none. A nil ctx is allowed.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := stored(ctx); ok {
		return logger
	}

	return defaultLogger()
}

// FromContextOr is FromContext with an explicit fallback, used by
// components that were handed their own logger at construction.
func FromContextOr(ctx context.Context, or *slog.Logger) *slog.Logger {
	if logger, ok := stored(ctx); ok {
		return logger
	}

	if or != nil {
		return or
	}

	return defaultLogger()
}

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithAttrs returns a ctx whose logger carries attrs on every line.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return WithAttrs(ctx, slog.String("request_id", id))
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return WithAttrs(ctx, slog.String("correlation_id", id))
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return WithAttrs(ctx, slog.String("trace_id", id))
}

// SetDefault replaces both the package fallback and slog's default.
func SetDefault(logger *slog.Logger) {
	fallback.Store(logger)
	slog.SetDefault(logger)
}
