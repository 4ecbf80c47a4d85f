package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateETag(t *testing.T) {
	a := GenerateETag([]byte(`[{"id":1}]`))
	assert.Equal(t, a, GenerateETag([]byte(`[{"id":1}]`)))
	assert.NotEqual(t, a, GenerateETag([]byte(`[{"id":2}]`)))
	assert.Regexp(t, `^W/"[0-9a-f]{32}"$`, a)
}

func TestParseIfNoneMatch(t *testing.T) {
	assert.Nil(t, ParseIfNoneMatch(""))
	assert.Equal(t, []string{"*"}, ParseIfNoneMatch(" * "))
	assert.Equal(t, []string{`"a"`, `W/"b"`}, ParseIfNoneMatch(`"a", W/"b", garbage`))
}

func TestMatchesETag(t *testing.T) {
	assert.True(t, MatchesETag(`W/"a"`, []string{`"a"`}))
	assert.True(t, MatchesETag(`W/"a"`, []string{`"x"`, `W/"a"`}))
	assert.True(t, MatchesETag(`W/"a"`, []string{"*"}))
	assert.False(t, MatchesETag(`W/"a"`, []string{`"b"`}))
	assert.False(t, MatchesETag(`W/"a"`, nil))
}

func newTagged(status int, body string) http.Handler {
	return ETag(Config{CacheControl: "no-cache"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestETagMiddleware(t *testing.T) {
	handler := newTagged(http.StatusOK, `[{"id":1}]`)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v/1/model", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, `[{"id":1}]`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/v/1/model", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, etag, rec.Header().Get("ETag"))

	req = httptest.NewRequest(http.MethodGet, "/v/1/model", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestETagMiddlewareSkips(t *testing.T) {
	rec := httptest.NewRecorder()
	newTagged(http.StatusNotFound, `{"error":{}}`).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("ETag"))
	assert.Equal(t, `{"error":{}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	newTagged(http.StatusCreated, `{"id":1}`).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get("ETag"))
}
