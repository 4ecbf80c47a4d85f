// Package response writes JSON bodies for generated routes and middleware.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error  ErrorDetail `json:"error"`
	Status int         `json:"status"`
}

// ErrorDetail contains detailed error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes derived from HTTP statuses
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodePreconditionFailed  = "PRECONDITION_FAILED"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// WriteError writes an error response
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorWithDetails(w, status, code, message, nil)
}

// WriteErrorWithDetails writes an error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	if code == "" {
		code = errorCodeFromStatus(status)
	}
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
		Status: status,
	}
	JSON(w, status, resp)
}

// BadRequest writes a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message string, details map[string]interface{}) {
	WriteErrorWithDetails(w, http.StatusBadRequest, CodeBadRequest, message, details)
}

// Unauthorized writes a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden writes a 403 Forbidden response
func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// NotFound writes a 404 Not Found response
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// PreconditionFailed writes a 412 Precondition Failed response
func PreconditionFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusPreconditionFailed, CodePreconditionFailed, message)
}

// InternalServerError writes a 500 response. The cause is never exposed.
func InternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternalServerError, "An internal server error occurred")
}

func errorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusPreconditionFailed:
		return CodePreconditionFailed
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	default:
		return CodeInternalServerError
	}
}

// JSON writes v as the JSON response body
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // client went away; nothing left to report
}
