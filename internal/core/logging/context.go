package logging

import "context"

type contextKey string

const (
	navIDKey    contextKey = "nav_id"
	providerKey contextKey = "provider"
)

// WithNavID tags the context with the id of one navigation step.
func WithNavID(ctx context.Context, navID string) context.Context {
	return context.WithValue(ctx, navIDKey, navID)
}

// WithProvider tags the context with the provider a request is made for.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey, provider)
}

// GetNavID returns the navigation id, or "" if not set.
func GetNavID(ctx context.Context) string {
	if id, ok := ctx.Value(navIDKey).(string); ok {
		return id
	}
	return ""
}

// GetProvider returns the provider name, or "" if not set.
func GetProvider(ctx context.Context) string {
	if p, ok := ctx.Value(providerKey).(string); ok {
		return p
	}
	return ""
}
