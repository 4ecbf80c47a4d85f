// Package schema provides the field metadata registry for generated CRUD resources.
// Every resource is described once, at startup, by a statically constructed table
// of fields. Request handling only ever performs lookups against it.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// PrimitiveType represents the scalar types a field can hold
type PrimitiveType int

const (
	// TypeID is an integer identifier (serial primary keys and references)
	TypeID PrimitiveType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeString
	TypeEmail
	TypeUUID
	// TypeTime is a unix timestamp in milliseconds
	TypeTime

	// Composite types
	TypeArray
	TypeObject
)

// String returns the string representation of the primitive type
func (p PrimitiveType) String() string {
	switch p {
	case TypeID:
		return "id"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeEmail:
		return "email"
	case TypeUUID:
		return "uuid"
	case TypeTime:
		return "time"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// ParsePrimitiveType converts a string to a PrimitiveType
func ParsePrimitiveType(s string) (PrimitiveType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "id":
		return TypeID, nil
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "string":
		return TypeString, nil
	case "email":
		return TypeEmail, nil
	case "uuid":
		return TypeUUID, nil
	case "time":
		return TypeTime, nil
	case "array":
		return TypeArray, nil
	case "object":
		return TypeObject, nil
	default:
		return 0, fmt.Errorf("unknown primitive type: %s", s)
	}
}

// TypeSpec is the complete type of a field
type TypeSpec struct {
	BaseType PrimitiveType

	Items *TypeSpec            // For array
	Keys  map[string]*TypeSpec // For object; nil accepts any keys
}

// Scalar returns a TypeSpec for a non-composite type
func Scalar(t PrimitiveType) *TypeSpec {
	return &TypeSpec{BaseType: t}
}

// ArrayOf returns an array TypeSpec with the given element type
func ArrayOf(items *TypeSpec) *TypeSpec {
	return &TypeSpec{BaseType: TypeArray, Items: items}
}

// ObjectOf returns an object TypeSpec with the given keys
func ObjectOf(keys map[string]*TypeSpec) *TypeSpec {
	return &TypeSpec{BaseType: TypeObject, Keys: keys}
}

// String returns a string representation of the TypeSpec
func (t *TypeSpec) String() string {
	switch t.BaseType {
	case TypeArray:
		if t.Items == nil {
			return "array"
		}
		return fmt.Sprintf("array<%s>", t.Items.String())
	case TypeObject:
		if len(t.Keys) == 0 {
			return "object"
		}
		names := make([]string, 0, len(t.Keys))
		for name := range t.Keys {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name + ": " + t.Keys[name].String()
		}
		return "object{" + strings.Join(parts, ", ") + "}"
	default:
		return t.BaseType.String()
	}
}

// IsNumeric returns true if the type holds a number
func (t *TypeSpec) IsNumeric() bool {
	return t.BaseType == TypeID ||
		t.BaseType == TypeInt ||
		t.BaseType == TypeFloat ||
		t.BaseType == TypeTime
}

// IsComposite returns true for array and object types
func (t *TypeSpec) IsComposite() bool {
	return t.BaseType == TypeArray || t.BaseType == TypeObject
}

// DeriveFunc computes the value of a derived field from the stored record
type DeriveFunc func(record map[string]interface{}) interface{}

// Field describes one field of a resource
type Field struct {
	// Name is the internal name used by the storage layer
	Name string
	Type *TypeSpec

	// Mapped is the client-facing alias. Empty means the internal name is used.
	Mapped string

	Public   bool // visible, filterable and orderable
	Auto     bool // assigned by the server, e.g. serial primary keys
	ReadOnly bool
	Optional bool
	Key      bool // part of the identity

	// Derive marks the field as derived: computed on output, never stored or accepted
	Derive DeriveFunc

	Default     interface{}
	DefaultFunc func() interface{}
}

// ExternalName returns the name clients use for the field
func (f *Field) ExternalName() string {
	if f.Mapped != "" {
		return f.Mapped
	}
	return f.Name
}

// IsMapped returns true if the field declares an external alias
func (f *Field) IsMapped() bool {
	return f.Mapped != "" && f.Mapped != f.Name
}

// IsDerived returns true if the field is computed server side
func (f *Field) IsDerived() bool {
	return f.Derive != nil
}

// HasDefault returns true if the field has a static or computed default
func (f *Field) HasDefault() bool {
	return f.Default != nil || f.DefaultFunc != nil
}

// DefaultValue returns the default value, calling DefaultFunc if set
func (f *Field) DefaultValue() interface{} {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	return f.Default
}

// Writable returns true if clients may set the field through a request body
func (f *Field) Writable() bool {
	return f.Public && !f.Auto && !f.ReadOnly && !f.IsDerived()
}

// Stored returns true if the field is a column in the storage layer
func (f *Field) Stored() bool {
	return !f.IsDerived()
}

// ResourceSchema is the complete field table of a resource
type ResourceSchema struct {
	Name          string
	Documentation string
	TableName     string

	Fields map[string]*Field
	order  []string
}

// NewResourceSchema creates a ResourceSchema with the given fields in declaration order
func NewResourceSchema(name string, fields ...*Field) *ResourceSchema {
	r := &ResourceSchema{
		Name:      name,
		Fields:    make(map[string]*Field, len(fields)),
		order:     make([]string, 0, len(fields)),
		TableName: toSnakeCase(name),
	}
	for _, f := range fields {
		r.AddField(f)
	}
	return r
}

// AddField appends a field. A field with the same name replaces the previous one
// but keeps its position.
func (r *ResourceSchema) AddField(f *Field) *ResourceSchema {
	if r.Fields == nil {
		r.Fields = make(map[string]*Field)
	}
	if _, exists := r.Fields[f.Name]; !exists {
		r.order = append(r.order, f.Name)
	}
	r.Fields[f.Name] = f
	return r
}

// FieldNames returns the internal field names in declaration order
func (r *ResourceSchema) FieldNames() []string {
	if len(r.order) != len(r.Fields) {
		// Fields were assigned directly; fall back to a stable order
		names := make([]string, 0, len(r.Fields))
		for name := range r.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	}
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// OrderedFields returns the fields in declaration order
func (r *ResourceSchema) OrderedFields() []*Field {
	names := r.FieldNames()
	fields := make([]*Field, len(names))
	for i, name := range names {
		fields[i] = r.Fields[name]
	}
	return fields
}

// Field returns the field with the given internal name
func (r *ResourceSchema) Field(name string) (*Field, bool) {
	f, ok := r.Fields[name]
	return f, ok
}

// HasField returns true if the resource has a field with the given internal name
func (r *ResourceSchema) HasField(name string) bool {
	_, exists := r.Fields[name]
	return exists
}

// IDField returns the "id" field used by the by-ids, PUT and DELETE routes
func (r *ResourceSchema) IDField() (*Field, error) {
	f, ok := r.Fields["id"]
	if !ok {
		return nil, fmt.Errorf("resource %s has no id field", r.Name)
	}
	return f, nil
}

// KeyFields returns the identity fields in declaration order
func (r *ResourceSchema) KeyFields() []*Field {
	var keys []*Field
	for _, f := range r.OrderedFields() {
		if f.Key {
			keys = append(keys, f)
		}
	}
	return keys
}

// StoredFields returns the non-derived fields in declaration order
func (r *ResourceSchema) StoredFields() []*Field {
	var stored []*Field
	for _, f := range r.OrderedFields() {
		if f.Stored() {
			stored = append(stored, f)
		}
	}
	return stored
}

// toSnakeCase converts a string to snake_case
func toSnakeCase(s string) string {
	var result []rune
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if prev >= 'a' && prev <= 'z' {
				result = append(result, '_')
			} else if i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z' {
				result = append(result, '_')
			}
		}
		if r >= 'A' && r <= 'Z' {
			result = append(result, r+('a'-'A'))
		} else {
			result = append(result, r)
		}
	}
	return string(result)
}
