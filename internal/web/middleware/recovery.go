package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	webcontext "github.com/conduit-lang/restgen/internal/web/context"
	"github.com/conduit-lang/restgen/internal/web/response"
)

// Recovery creates a middleware that turns panics into 500 responses and logs them
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let net/http abort the connection as intended
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				logger.Error("panic recovered",
					zap.Error(err),
					zap.String("request_id", webcontext.GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)

				response.InternalServerError(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
