package cache

import (
	"bytes"
	"net/http"

	"github.com/conduit-lang/restgen/internal/web/middleware"
)

// Config holds configuration of the ETag middleware
type Config struct {
	// CacheControl is sent with every tagged response; empty sends none
	CacheControl string
}

// ETag tags successful GET responses and answers requests whose
// If-None-Match names the current tag with 304 and no body.
// Responses of other methods pass through untouched.
func ETag(config Config) middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			rec := &bufferedWriter{header: make(http.Header), status: http.StatusOK}
			next.ServeHTTP(rec, r)

			h := w.Header()
			for k, v := range rec.header {
				h[k] = v
			}

			if rec.status != http.StatusOK {
				w.WriteHeader(rec.status)
				_, _ = w.Write(rec.body.Bytes())
				return
			}

			etag := GenerateETag(rec.body.Bytes())
			h.Set("ETag", etag)
			if config.CacheControl != "" {
				h.Set("Cache-Control", config.CacheControl)
			}

			if MatchesETag(etag, ParseIfNoneMatch(r.Header.Get("If-None-Match"))) {
				h.Del("Content-Length")
				h.Del("Content-Type")
				w.WriteHeader(http.StatusNotModified)
				return
			}

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(rec.body.Bytes())
		})
	}
}

// bufferedWriter holds the whole response until the tag is known
type bufferedWriter struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(status int) {
	if !b.wroteHeader {
		b.status = status
		b.wroteHeader = true
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}
