package schema

import (
	"fmt"
	"strings"
)

// TypeDefinition is the declarative form of a TypeSpec
type TypeDefinition struct {
	Type  string                     `mapstructure:"type"`
	Items *TypeDefinition            `mapstructure:"items"`
	Keys  map[string]*TypeDefinition `mapstructure:"keys"`
}

// FieldDefinition is the declarative form of a Field, as read from a config file
type FieldDefinition struct {
	Name     string                     `mapstructure:"name"`
	Type     string                     `mapstructure:"type"`
	Items    *TypeDefinition            `mapstructure:"items"`
	Keys     map[string]*TypeDefinition `mapstructure:"keys"`
	Mapped   string                     `mapstructure:"mapped"`
	Public   bool                       `mapstructure:"public"`
	Auto     bool                       `mapstructure:"auto"`
	ReadOnly bool                       `mapstructure:"read_only"`
	Optional bool                       `mapstructure:"optional"`
	Key      bool                       `mapstructure:"key"`
	Default  interface{}                `mapstructure:"default"`

	// DeriveFrom makes the field derived: its value is a copy of the named field
	DeriveFrom string `mapstructure:"derive_from"`
}

// ResourceDefinition is the declarative form of a ResourceSchema
type ResourceDefinition struct {
	Name          string            `mapstructure:"name"`
	Table         string            `mapstructure:"table"`
	Documentation string            `mapstructure:"documentation"`
	Fields        []FieldDefinition `mapstructure:"fields"`
}

// Build converts the definition into a ResourceSchema. The result still has
// to pass Registry.Register before it is used.
func (d *ResourceDefinition) Build() (*ResourceSchema, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, fmt.Errorf("resource definition has no name")
	}

	res := NewResourceSchema(d.Name)
	res.Documentation = d.Documentation
	if d.Table != "" {
		res.TableName = d.Table
	}

	for i := range d.Fields {
		fd := &d.Fields[i]
		field, err := fd.build()
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", d.Name, err)
		}
		if res.HasField(field.Name) {
			return nil, fmt.Errorf("resource %s: duplicate field %s", d.Name, field.Name)
		}
		res.AddField(field)
	}

	for _, fd := range d.Fields {
		if fd.DeriveFrom != "" && !res.HasField(fd.DeriveFrom) {
			return nil, fmt.Errorf("resource %s: field %s derives from unknown field %s",
				d.Name, fd.Name, fd.DeriveFrom)
		}
	}

	return res, nil
}

func (fd *FieldDefinition) build() (*Field, error) {
	if fd.Name == "" {
		return nil, fmt.Errorf("field definition has no name")
	}

	typ, err := (&TypeDefinition{Type: fd.Type, Items: fd.Items, Keys: fd.Keys}).build()
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fd.Name, err)
	}

	field := &Field{
		Name:     fd.Name,
		Type:     typ,
		Mapped:   fd.Mapped,
		Public:   fd.Public,
		Auto:     fd.Auto,
		ReadOnly: fd.ReadOnly,
		Optional: fd.Optional,
		Key:      fd.Key,
	}

	if fd.Default != nil {
		value, ok := typ.Check(fd.Default)
		if !ok {
			return nil, fmt.Errorf("field %s: default %v is not a valid %s", fd.Name, fd.Default, typ)
		}
		field.Default = value
	}

	if source := fd.DeriveFrom; source != "" {
		field.Derive = func(record map[string]interface{}) interface{} {
			return record[source]
		}
	}

	return field, nil
}

func (td *TypeDefinition) build() (*TypeSpec, error) {
	base, err := ParsePrimitiveType(td.Type)
	if err != nil {
		return nil, err
	}

	spec := &TypeSpec{BaseType: base}

	switch base {
	case TypeArray:
		if td.Items != nil {
			items, err := td.Items.build()
			if err != nil {
				return nil, fmt.Errorf("items: %w", err)
			}
			spec.Items = items
		}
	case TypeObject:
		if len(td.Keys) > 0 {
			spec.Keys = make(map[string]*TypeSpec, len(td.Keys))
			for name, kd := range td.Keys {
				if kd == nil {
					return nil, fmt.Errorf("key %s has no type", name)
				}
				kt, err := kd.build()
				if err != nil {
					return nil, fmt.Errorf("key %s: %w", name, err)
				}
				spec.Keys[name] = kt
			}
		}
	default:
		if td.Items != nil || len(td.Keys) > 0 {
			return nil, fmt.Errorf("type %s cannot declare items or keys", base)
		}
	}

	return spec, nil
}
