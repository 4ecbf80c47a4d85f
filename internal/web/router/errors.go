package router

import (
	"fmt"
	"net/http"

	"github.com/conduit-lang/restgen/internal/web/response"
)

// ErrorHandler provides default error handlers
type ErrorHandler struct {
	// Include request details in responses (disable in production)
	ShowDetails bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(showDetails bool) *ErrorHandler {
	return &ErrorHandler{
		ShowDetails: showDetails,
	}
}

// NotFoundHandler returns a handler for 404 Not Found errors
func (eh *ErrorHandler) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var details map[string]interface{}
		if eh.ShowDetails {
			details = map[string]interface{}{
				"path":   r.URL.Path,
				"method": r.Method,
			}
		}
		response.WriteErrorWithDetails(w, http.StatusNotFound, response.CodeNotFound,
			"The requested resource was not found", details)
	}
}

// MethodNotAllowedHandler returns a handler for 405 Method Not Allowed errors
func (eh *ErrorHandler) MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var details map[string]interface{}
		if eh.ShowDetails {
			details = map[string]interface{}{
				"path":   r.URL.Path,
				"method": r.Method,
			}
		}
		response.WriteErrorWithDetails(w, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed,
			fmt.Sprintf("Method %s is not allowed for this resource", r.Method), details)
	}
}

// SetupDefaultErrorHandlers configures the router with default error handlers
func SetupDefaultErrorHandlers(r *Router, showDetails bool) {
	eh := NewErrorHandler(showDetails)
	r.NotFound(eh.NotFoundHandler())
	r.MethodNotAllowed(eh.MethodNotAllowedHandler())
}
