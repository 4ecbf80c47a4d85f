package router

import (
	"fmt"

	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// UnknownPathParamError is a configuration error: a route template names a
// path parameter that is not a field of the resource
type UnknownPathParamError struct {
	Param    string
	Pattern  string
	Resource string
}

func (e *UnknownPathParamError) Error() string {
	return fmt.Sprintf("param %s not known in resource %s for path %s", e.Param, e.Resource, e.Pattern)
}

// PathParams is the ordered set of internal field names bound by a route
// template. It is computed once at registration and never modified.
type PathParams struct {
	names []string
	set   map[string]struct{}
}

// Has reports whether the field is bound by the path
func (p PathParams) Has(name string) bool {
	_, ok := p.set[name]
	return ok
}

// Names returns the bound field names in path order
func (p PathParams) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of bound fields
func (p PathParams) Len() int {
	return len(p.names)
}

// PartitionFields resolves the path parameters of pattern against the
// resource. Path parameters always use internal field names.
func PartitionFields(pattern string, resource *schema.ResourceSchema) (PathParams, error) {
	params := PathParams{set: make(map[string]struct{})}
	for _, name := range PathParamNames(pattern) {
		if !resource.HasField(name) {
			return PathParams{}, &UnknownPathParamError{Param: name, Pattern: pattern, Resource: resource.Name}
		}
		if _, dup := params.set[name]; dup {
			continue
		}
		params.set[name] = struct{}{}
		params.names = append(params.names, name)
	}
	return params, nil
}

// WritableField is a field accepted in request bodies of write routes
type WritableField struct {
	Field    *schema.Field
	Optional bool
}

// WritableFields returns the fields clients may send in POST and PUT bodies,
// in declaration order: public, not auto, not read-only, not derived and not
// bound by the path. A field is optional if it is declared optional or has a default.
func WritableFields(resource *schema.ResourceSchema, params PathParams) []WritableField {
	var fields []WritableField
	for _, f := range resource.OrderedFields() {
		if !f.Writable() || params.Has(f.Name) {
			continue
		}
		fields = append(fields, WritableField{
			Field:    f,
			Optional: f.Optional || f.HasDefault(),
		})
	}
	return fields
}
