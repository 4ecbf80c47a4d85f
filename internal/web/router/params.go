package router

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// ParamError is returned when a path parameter does not match its declared type
type ParamError struct {
	Name string
	Err  error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("path parameter %s: %v", e.Name, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// GetPathParam is a convenience function to extract a raw path parameter
func GetPathParam(req *http.Request, name string) string {
	return chi.URLParam(req, name)
}

// TypedPathParam extracts a path parameter and converts it to the given type
func TypedPathParam(req *http.Request, name string, typ *schema.TypeSpec) (interface{}, error) {
	raw := chi.URLParam(req, name)
	// chi routes on the escaped path when it differs from the default encoding
	if req.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
	}
	if raw == "" {
		return nil, &ParamError{Name: name, Err: fmt.Errorf("missing")}
	}
	v, err := typ.ParsePathValue(raw)
	if err != nil {
		return nil, &ParamError{Name: name, Err: err}
	}
	return v, nil
}

// PathValues extracts every bound path parameter, typed by its field
func PathValues(req *http.Request, resource *schema.ResourceSchema, params PathParams) (map[string]interface{}, error) {
	values := make(map[string]interface{}, params.Len())
	for _, name := range params.names {
		v, err := TypedPathParam(req, name, resource.Fields[name].Type)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	return values, nil
}
