package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	webcontext "github.com/conduit-lang/restgen/internal/web/context"
)

func TestRequestID_Generates(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = webcontext.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("Expected UUID request ID, got %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("Expected response header %q, got %q", seen, rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_KeepsClientID(t *testing.T) {
	var seen string
	handler := RequestIDWithGenerator(func() string { return "generated" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = webcontext.GetRequestID(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "client-id" {
		t.Errorf("Expected client-id, got %q", seen)
	}
}
