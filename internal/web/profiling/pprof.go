// Package profiling serves the pprof endpoints on a listener of their own.
// They expose stacks and heap contents and must not share the public
// address of the API.
package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/go-chi/chi/v5"
)

// DefaultPath is where the endpoints are mounted
const DefaultPath = "/debug/pprof"

// Config holds profiling configuration
type Config struct {
	// Path defaults to DefaultPath
	Path string

	// BlockRate and MutexFraction enable the block and mutex profiles when positive
	BlockRate     int
	MutexFraction int
}

// Handler returns a router serving the pprof endpoints below config.Path
func Handler(config Config) http.Handler {
	path := config.Path
	if path == "" {
		path = DefaultPath
	}
	if config.BlockRate > 0 {
		runtime.SetBlockProfileRate(config.BlockRate)
	}
	if config.MutexFraction > 0 {
		runtime.SetMutexProfileFraction(config.MutexFraction)
	}

	router := chi.NewRouter()
	router.Route(path, func(r chi.Router) {
		r.HandleFunc("/", pprof.Index)
		r.HandleFunc("/cmdline", pprof.Cmdline)
		r.HandleFunc("/profile", pprof.Profile)
		r.HandleFunc("/symbol", pprof.Symbol)
		r.HandleFunc("/trace", pprof.Trace)
		for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			r.Handle("/"+name, pprof.Handler(name))
		}
	})
	return router
}
