package middleware

import (
	"errors"
	"net/http"

	"github.com/conduit-lang/restgen/internal/web/auth"
	"github.com/conduit-lang/restgen/internal/web/response"
)

// JWT creates a middleware that requires a valid login token. Verified claims
// are stored in the request context. A missing token or one that is not a
// login token is answered with 401 "Unauthorized", a token that does not
// verify with 401 "Token invalid".
func JWT(tokens *auth.TokenService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			claims, err := tokens.ValidateToken(raw)
			switch {
			case errors.Is(err, auth.ErrNotLoginToken):
				response.Unauthorized(w, "Unauthorized")
				return
			case err != nil:
				response.Unauthorized(w, "Token invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetClaims(r.Context(), claims)))
		})
	}
}
