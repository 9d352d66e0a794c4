package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type ctxKey struct{}

func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return L()
}

// WithRun tags every line logged during one pipeline pass with a short run id.
func WithRun(ctx context.Context, mode string) context.Context {
	logger := FromContext(ctx).With(
		"mode", mode,
		"run_id", generateShortID(),
	)
	return ContextWithLogger(ctx, logger)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	logger := FromContext(ctx).With(
		"operation", operation,
		"op_id", generateShortID(),
	)
	return ContextWithLogger(ctx, logger)
}

func generateShortID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}
