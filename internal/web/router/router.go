package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/conduit-lang/restgen/internal/web/middleware"
)

// Router manages HTTP routing using chi framework
type Router struct {
	mux    chi.Router
	routes map[string]*Route

	// Middleware chain
	chain *middleware.Chain

	// For introspection
	registeredRoutes []*RouteInfo
}

// Route represents a single registered route
type Route struct {
	Pattern string           // /v/1/model/:id
	Method  string           // GET, POST, etc.
	Handler http.HandlerFunc // Handler function

	info *RouteInfo
}

// CRUDOperation represents a generated REST operation
type CRUDOperation int

const (
	// OpNone marks routes that were not generated for a resource
	OpNone CRUDOperation = iota
	// OpList represents the list operation (GET prefix)
	OpList
	// OpGetByIDs represents the by-ids operation (GET prefix/:ids)
	OpGetByIDs
	// OpCreate represents the create operation (POST prefix)
	OpCreate
	// OpUpdate represents the update operation (PUT prefix/:id)
	OpUpdate
	// OpDelete represents the delete operation (DELETE prefix/:ids)
	OpDelete
)

// String returns the string representation of CRUDOperation
func (o CRUDOperation) String() string {
	switch o {
	case OpNone:
		return ""
	case OpList:
		return "list"
	case OpGetByIDs:
		return "getByIds"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// NewRouter creates a new Router instance
func NewRouter() *Router {
	return &Router{
		mux:              chi.NewRouter(),
		routes:           make(map[string]*Route),
		chain:            middleware.NewChain(),
		registeredRoutes: make([]*RouteInfo, 0),
	}
}

// ServeHTTP implements http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Use adds middleware to the router's middleware chain. It must be called
// before any route is registered.
func (r *Router) Use(middlewares ...middleware.Middleware) {
	for _, m := range middlewares {
		r.chain.Use(m)
		r.mux.Use(m)
	}
}

// Get registers a GET route
func (r *Router) Get(pattern string, handler http.HandlerFunc) *Route {
	return r.addRoute(http.MethodGet, pattern, handler)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handler http.HandlerFunc) *Route {
	return r.addRoute(http.MethodPost, pattern, handler)
}

// Put registers a PUT route
func (r *Router) Put(pattern string, handler http.HandlerFunc) *Route {
	return r.addRoute(http.MethodPut, pattern, handler)
}

// Delete registers a DELETE route
func (r *Router) Delete(pattern string, handler http.HandlerFunc) *Route {
	return r.addRoute(http.MethodDelete, pattern, handler)
}

// addRoute registers a route with the given method, pattern, and handler.
// Patterns may use :name or {name} for path parameters.
func (r *Router) addRoute(method, pattern string, handler http.HandlerFunc) *Route {
	info := &RouteInfo{
		Pattern:    pattern,
		Method:     method,
		Parameters: extractParameters(pattern),
	}
	route := &Route{
		Pattern: pattern,
		Method:  method,
		Handler: handler,
		info:    info,
	}

	r.mux.Method(method, ChiPattern(pattern), handler)

	routeKey := fmt.Sprintf("%s:%s", method, pattern)
	r.routes[routeKey] = route
	r.registeredRoutes = append(r.registeredRoutes, info)

	return route
}

// Named sets a name for the route
func (route *Route) Named(name string) *Route {
	route.info.Name = name
	return route
}

// WithResource sets resource metadata for the route
func (route *Route) WithResource(resourceName string, operation CRUDOperation) *Route {
	route.info.ResourceName = resourceName
	route.info.Operation = operation.String()
	return route
}

// Describe sets the human readable title and description of the route
func (route *Route) Describe(title, description string) *Route {
	route.info.Title = title
	route.info.Description = description
	return route
}

// Declare replaces the parameter and return declarations of the route
func (route *Route) Declare(params []RouteParameter, returns []ReturnDeclaration) *Route {
	route.info.Parameters = params
	route.info.Returns = returns
	return route
}

// Info returns the introspection data of the route
func (route *Route) Info() *RouteInfo {
	return route.info
}

// GetRoutes returns all registered routes for introspection
func (r *Router) GetRoutes() []*RouteInfo {
	return r.registeredRoutes
}

// GetRoute returns a route by name
func (r *Router) GetRoute(name string) (*Route, error) {
	for _, route := range r.routes {
		if route.info.Name == name {
			return route, nil
		}
	}
	return nil, fmt.Errorf("route not found: %s", name)
}

// NotFound sets the handler for 404 Not Found
func (r *Router) NotFound(handler http.HandlerFunc) {
	r.mux.NotFound(handler)
}

// MethodNotAllowed sets the handler for 405 Method Not Allowed
func (r *Router) MethodNotAllowed(handler http.HandlerFunc) {
	r.mux.MethodNotAllowed(handler)
}

// ChiPattern converts :name path segments to chi's {name} form
func ChiPattern(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") && len(part) > 1 {
			parts[i] = "{" + part[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

// PathParamNames returns the names of the path parameters of a pattern in order
func PathParamNames(pattern string) []string {
	names := make([]string, 0)
	for _, part := range strings.Split(pattern, "/") {
		switch {
		case strings.HasPrefix(part, ":") && len(part) > 1:
			names = append(names, part[1:])
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") && len(part) > 2:
			name := strings.Trim(part, "{}")
			// chi allows {name:regexp}
			if i := strings.Index(name, ":"); i >= 0 {
				name = name[:i]
			}
			names = append(names, name)
		}
	}
	return names
}

// extractParameters extracts parameter definitions from a route pattern
func extractParameters(pattern string) []RouteParameter {
	names := PathParamNames(pattern)
	params := make([]RouteParameter, len(names))
	for i, name := range names {
		params[i] = RouteParameter{
			Name:   name,
			Type:   "string",
			Source: PathParam,
		}
	}
	return params
}
