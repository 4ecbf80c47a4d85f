package schema

import (
	"fmt"
	"strings"
)

// ValidationError represents a schema validation error with context
type ValidationError struct {
	Resource string
	Field    string
	Message  string
	Hint     string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder

	if e.Resource != "" {
		b.WriteString(e.Resource)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
		b.WriteString(": ")
	}

	b.WriteString(e.Message)

	if e.Hint != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

// SchemaValidator checks the invariants of a resource's field table
type SchemaValidator struct {
	errors []*ValidationError
}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// Validate validates a single resource schema
func (v *SchemaValidator) Validate(schema *ResourceSchema) error {
	v.errors = make([]*ValidationError, 0)

	if strings.TrimSpace(schema.Name) == "" {
		v.addError("", "", "resource name is required", "")
	}
	if len(schema.Fields) == 0 {
		v.addError(schema.Name, "", "resource has no fields", "")
	}

	v.validateFields(schema)
	v.validateExternalNames(schema)

	if len(v.errors) > 0 {
		msgs := make([]string, len(v.errors))
		for i, err := range v.errors {
			msgs[i] = err.Error()
		}
		return fmt.Errorf("schema validation failed with %d errors:\n%s",
			len(v.errors), strings.Join(msgs, "\n"))
	}

	return nil
}

// Errors returns the errors collected by the last call to Validate
func (v *SchemaValidator) Errors() []*ValidationError {
	return v.errors
}

func (v *SchemaValidator) validateFields(schema *ResourceSchema) {
	for _, name := range schema.FieldNames() {
		field := schema.Fields[name]

		if field.Name != name {
			v.addError(schema.Name, name, fmt.Sprintf("field registered as %q but named %q", name, field.Name), "")
			continue
		}
		if field.Type == nil {
			v.addError(schema.Name, name, "field has no type", "")
			continue
		}
		if err := validateTypeSpec(field.Type); err != nil {
			v.addError(schema.Name, name, err.Error(), "")
		}

		if field.IsDerived() {
			if field.Key {
				v.addError(schema.Name, name, "derived field cannot be part of the key", "")
			}
			if field.Auto {
				v.addError(schema.Name, name, "derived field cannot be auto", "")
			}
			if field.HasDefault() {
				v.addError(schema.Name, name, "derived field cannot have a default", "")
			}
		}

		if field.Default != nil {
			if _, ok := field.Type.Check(field.Default); !ok {
				v.addError(schema.Name, name,
					fmt.Sprintf("default value %v is not a valid %s", field.Default, field.Type),
					"")
			}
		}
	}
}

// validateExternalNames ensures an external name resolves to at most one field
func (v *SchemaValidator) validateExternalNames(schema *ResourceSchema) {
	seen := make(map[string]string, len(schema.Fields))
	for _, name := range schema.FieldNames() {
		field := schema.Fields[name]
		external := field.ExternalName()

		if other, exists := seen[external]; exists {
			v.addError(schema.Name, name,
				fmt.Sprintf("external name %q is already used by field %q", external, other),
				"choose a different mapped name")
			continue
		}
		seen[external] = name

		if field.IsMapped() {
			if _, clash := schema.Fields[external]; clash {
				v.addError(schema.Name, name,
					fmt.Sprintf("mapped name %q collides with the internal name of another field", external),
					"")
			}
		}
	}
}

func (v *SchemaValidator) addError(resource, field, message, hint string) {
	v.errors = append(v.errors, &ValidationError{
		Resource: resource,
		Field:    field,
		Message:  message,
		Hint:     hint,
	})
}

func validateTypeSpec(t *TypeSpec) error {
	switch t.BaseType {
	case TypeArray:
		if t.Items != nil {
			return validateTypeSpec(t.Items)
		}
	case TypeObject:
		for key, kt := range t.Keys {
			if kt == nil {
				return fmt.Errorf("object key %q has no type", key)
			}
			if err := validateTypeSpec(kt); err != nil {
				return err
			}
		}
	default:
		if t.Items != nil || t.Keys != nil {
			return fmt.Errorf("%s cannot declare items or keys", t.BaseType)
		}
	}
	return nil
}
