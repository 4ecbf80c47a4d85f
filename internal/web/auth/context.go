package auth

import (
	"context"

	webcontext "github.com/conduit-lang/restgen/internal/web/context"
)

// GetClaims retrieves the verified claims from the context.
// Returns nil if the request was not authenticated.
func GetClaims(ctx context.Context) Claims {
	claims := webcontext.GetClaims(ctx)
	if claims == nil {
		return nil
	}
	return Claims(claims)
}

// SetClaims adds the verified claims to the context
func SetClaims(ctx context.Context, claims Claims) context.Context {
	return webcontext.SetClaims(ctx, claims)
}
