package middleware

import (
	"net/http"

	"github.com/google/uuid"

	webcontext "github.com/conduit-lang/restgen/internal/web/context"
)

// RequestIDHeader is the header used to read and echo request IDs
const RequestIDHeader = "X-Request-ID"

// RequestID creates a middleware that assigns every request an ID. An ID sent
// by the client is kept.
func RequestID() Middleware {
	return RequestIDWithGenerator(uuid.NewString)
}

// RequestIDWithGenerator is like RequestID with a custom ID generator
func RequestIDWithGenerator(generate func() string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = generate()
			}

			r = r.WithContext(webcontext.SetRequestID(r.Context(), requestID))
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r)
		})
	}
}
