// Package requestctx carries authenticated request identity through context.
package requestctx

import (
	"context"
	"strings"
)

type callerContextKey struct{}

type requestIDContextKey struct{}

// WithCaller stores the authenticated caller address in context.
func WithCaller(ctx context.Context, caller string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, strings.TrimSpace(caller))
}

// CallerFromContext returns the authenticated caller address stored in context.
func CallerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(callerContextKey{}).(string)
	return value
}

// WithRequestID stores the request correlation id in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request correlation id stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}
