package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, "Filter not valid", map[string]interface{}{"code": "InvalidFilterSyntax"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
	assert.Equal(t, "Filter not valid", resp.Error.Message)
	assert.Equal(t, "InvalidFilterSyntax", resp.Error.Details["code"])
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name    string
		write   func(w http.ResponseWriter)
		status  int
		code    string
		message string
	}{
		{"unauthorized default", func(w http.ResponseWriter) { Unauthorized(w, "") }, 401, CodeUnauthorized, "Unauthorized"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "Token invalid") }, 401, CodeUnauthorized, "Token invalid"},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "You don't have the rights to retrieve this.") }, 403, CodeForbidden, "You don't have the rights to retrieve this."},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "Model not found") }, 404, CodeNotFound, "Model not found"},
		{"precondition", func(w http.ResponseWriter) { PreconditionFailed(w, "Could not create item because it exists") }, 412, CodePreconditionFailed, "Could not create item because it exists"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w) }, 500, CodeInternalServerError, "An internal server error occurred"},
		{"code from status", func(w http.ResponseWriter) { WriteError(w, http.StatusTooManyRequests, "", "slow down") }, 429, CodeTooManyRequests, "slow down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Nil(t, resp.Error.Details)
		})
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, []int{1, 2})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[1,2]`, rec.Body.String())
}
