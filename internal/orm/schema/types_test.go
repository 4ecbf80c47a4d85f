package schema

import (
	"testing"
)

func TestPrimitiveTypeString(t *testing.T) {
	tests := []struct {
		typ      PrimitiveType
		expected string
	}{
		{TypeID, "id"},
		{TypeInt, "int"},
		{TypeFloat, "float"},
		{TypeBool, "bool"},
		{TypeString, "string"},
		{TypeEmail, "email"},
		{TypeUUID, "uuid"},
		{TypeTime, "time"},
		{TypeArray, "array"},
		{TypeObject, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}

			parsed, err := ParsePrimitiveType(tt.expected)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if parsed != tt.typ {
				t.Errorf("round trip: expected %v, got %v", tt.typ, parsed)
			}
		})
	}

	if _, err := ParsePrimitiveType("decimal"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestTypeSpecString(t *testing.T) {
	tests := []struct {
		name     string
		spec     *TypeSpec
		expected string
	}{
		{"scalar", Scalar(TypeString), "string"},
		{"array", ArrayOf(Scalar(TypeInt)), "array<int>"},
		{"untyped array", &TypeSpec{BaseType: TypeArray}, "array"},
		{
			"object",
			ObjectOf(map[string]*TypeSpec{"b": Scalar(TypeString), "a": Scalar(TypeInt)}),
			"object{a: int, b: string}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestFieldFlags(t *testing.T) {
	mapped := &Field{Name: "mapped", Type: Scalar(TypeInt), Public: true, Mapped: "someNumber"}
	if mapped.ExternalName() != "someNumber" {
		t.Errorf("expected someNumber, got %s", mapped.ExternalName())
	}
	if !mapped.IsMapped() || !mapped.Writable() {
		t.Error("mapped public field should be mapped and writable")
	}

	selfMapped := &Field{Name: "x", Type: Scalar(TypeInt), Mapped: "x"}
	if selfMapped.IsMapped() {
		t.Error("a field mapped to its own name is not mapped")
	}

	auto := &Field{Name: "id", Type: Scalar(TypeID), Public: true, Auto: true}
	if auto.Writable() {
		t.Error("auto field must not be writable")
	}

	derived := &Field{Name: "d", Type: Scalar(TypeInt), Public: true, Derive: func(map[string]interface{}) interface{} { return 1 }}
	if derived.Writable() || derived.Stored() {
		t.Error("derived field must be neither writable nor stored")
	}

	calls := 0
	withFunc := &Field{Name: "n", Type: Scalar(TypeInt), DefaultFunc: func() interface{} { calls++; return int64(calls) }}
	if !withFunc.HasDefault() {
		t.Error("expected default")
	}
	if withFunc.DefaultValue() != int64(1) || withFunc.DefaultValue() != int64(2) {
		t.Error("DefaultFunc should be evaluated on every call")
	}
}

func TestResourceSchemaOrder(t *testing.T) {
	res := NewResourceSchema("BlogPost",
		&Field{Name: "id", Type: Scalar(TypeID), Key: true},
		&Field{Name: "title", Type: Scalar(TypeString)},
		&Field{Name: "author", Type: Scalar(TypeString), Derive: func(map[string]interface{}) interface{} { return nil }},
	)

	if res.TableName != "blog_post" {
		t.Errorf("expected blog_post, got %s", res.TableName)
	}

	names := res.FieldNames()
	if len(names) != 3 || names[0] != "id" || names[1] != "title" || names[2] != "author" {
		t.Errorf("unexpected field order: %v", names)
	}

	res.AddField(&Field{Name: "title", Type: Scalar(TypeEmail)})
	if res.FieldNames()[1] != "title" || res.Fields["title"].Type.BaseType != TypeEmail {
		t.Error("replacing a field should keep its position")
	}

	if len(res.StoredFields()) != 2 {
		t.Errorf("expected 2 stored fields, got %d", len(res.StoredFields()))
	}
	if keys := res.KeyFields(); len(keys) != 1 || keys[0].Name != "id" {
		t.Errorf("unexpected key fields: %v", keys)
	}
	if _, err := res.IDField(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	noID := NewResourceSchema("x", &Field{Name: "key", Type: Scalar(TypeString)})
	if _, err := noID.IDField(); err == nil {
		t.Error("expected error for missing id field")
	}
}

func TestFieldNamesWithoutDeclarationOrder(t *testing.T) {
	res := &ResourceSchema{
		Name: "direct",
		Fields: map[string]*Field{
			"b": {Name: "b", Type: Scalar(TypeInt)},
			"a": {Name: "a", Type: Scalar(TypeInt)},
		},
	}

	names := res.FieldNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
