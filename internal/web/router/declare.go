package router

// RouteInfo provides metadata about a route for introspection
type RouteInfo struct {
	Pattern      string
	Method       string
	Name         string
	ResourceName string
	Operation    string
	Title        string
	Description  string
	Parameters   []RouteParameter
	Returns      []ReturnDeclaration
}

// RouteParameter describes a parameter in a route
type RouteParameter struct {
	Name     string
	Type     string // id, int, string, array<id>, ...
	Optional bool
	Default  interface{}
	Source   ParameterSource // path, query, body
}

// ReturnDeclaration describes one possible response of a route
type ReturnDeclaration struct {
	Status int
	Error  string // message of an error response
	Type   string // type of a successful response
}

// ParameterSource indicates where a parameter comes from
type ParameterSource int

const (
	// PathParam indicates a URL path parameter
	PathParam ParameterSource = iota
	// QueryParam indicates a URL query parameter
	QueryParam
	// HeaderParam indicates an HTTP header parameter
	HeaderParam
	// BodyParam indicates a key of the JSON request body
	BodyParam
)

// String returns the string representation of ParameterSource
func (p ParameterSource) String() string {
	switch p {
	case PathParam:
		return "path"
	case QueryParam:
		return "query"
	case HeaderParam:
		return "header"
	case BodyParam:
		return "body"
	default:
		return "unknown"
	}
}

// ParametersFrom returns the parameters of the given source in declaration order
func (ri *RouteInfo) ParametersFrom(source ParameterSource) []RouteParameter {
	var out []RouteParameter
	for _, p := range ri.Parameters {
		if p.Source == source {
			out = append(out, p)
		}
	}
	return out
}
