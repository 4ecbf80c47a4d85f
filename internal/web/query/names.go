package query

import (
	"fmt"

	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// UnknownFieldError is returned by ResolveExternalName
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%q does not exist", e.Name)
}

// ResolveExternalName maps a client supplied field name to the internal name.
// A field declaring an alias can only be addressed through that alias; its
// internal name is accepted only for fields without a mapping.
func ResolveExternalName(name string, resource *schema.ResourceSchema) (string, error) {
	for _, field := range resource.OrderedFields() {
		if field.Mapped != "" && field.Mapped == name {
			return field.Name, nil
		}
	}

	if field, ok := resource.Field(name); ok && field.Mapped == "" {
		return field.Name, nil
	}

	return "", &UnknownFieldError{Name: name}
}

// ReverseMap converts a request body keyed by external names into a record
// keyed by internal names. Unknown keys fail with UnknownFieldError.
func ReverseMap(body map[string]interface{}, resource *schema.ResourceSchema) (map[string]interface{}, error) {
	record := make(map[string]interface{}, len(body))
	for key, value := range body {
		internal, err := ResolveExternalName(key, resource)
		if err != nil {
			return nil, err
		}
		record[internal] = value
	}
	return record, nil
}

// PublicView projects a stored record onto the client facing shape: public
// fields only, keyed by external name, with derived values computed.
func PublicView(record map[string]interface{}, resource *schema.ResourceSchema) map[string]interface{} {
	view := make(map[string]interface{}, len(resource.Fields))
	for _, field := range resource.OrderedFields() {
		if !field.Public {
			continue
		}
		if field.IsDerived() {
			view[field.ExternalName()] = field.Derive(record)
			continue
		}
		view[field.ExternalName()] = record[field.Name]
	}
	return view
}

// PublicViews applies PublicView to every record
func PublicViews(records []map[string]interface{}, resource *schema.ResourceSchema) []map[string]interface{} {
	views := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		views[i] = PublicView(rec, resource)
	}
	return views
}
