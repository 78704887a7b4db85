// Package requestcontext carries request-scoped values through context.Context.
package requestcontext

import "context"

type contextKeyRequestID struct{}

// WithRequestID stores the correlation id for the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the correlation id, or "" when none was set
// (non-HTTP contexts such as tests and the CLI).
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return id
	}
	return ""
}
