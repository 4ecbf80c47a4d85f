// Package context holds the typed request context keys shared by the
// middleware and the generated handlers.
package context

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey int

const (
	requestIDKey contextKey = iota
	claimsKey
)

// GetRequestID extracts the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// SetRequestID adds the request ID to the context
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetClaims extracts the verified token claims from the context
func GetClaims(ctx context.Context) map[string]interface{} {
	if claims, ok := ctx.Value(claimsKey).(map[string]interface{}); ok {
		return claims
	}
	return nil
}

// SetClaims adds the verified token claims to the context
func SetClaims(ctx context.Context, claims map[string]interface{}) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
