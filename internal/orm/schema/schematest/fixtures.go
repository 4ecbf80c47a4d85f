// Package schematest provides resource tables shared by the tests of the
// query compilers, the stores and the generated routes.
package schematest

import "github.com/conduit-lang/restgen/internal/orm/schema"

// Model returns the "model" resource: an auto id, an optional string, a
// private field with a default, a mapped int and a derived copy of the id.
func Model() *schema.ResourceSchema {
	return schema.NewResourceSchema("model",
		&schema.Field{Name: "id", Type: schema.Scalar(schema.TypeID), Public: true, Auto: true, Key: true},
		&schema.Field{Name: "optionalVal", Type: schema.Scalar(schema.TypeString), Public: true, Optional: true},
		&schema.Field{Name: "hasDefault", Type: schema.Scalar(schema.TypeInt), Default: int64(7)},
		&schema.Field{Name: "mapped", Type: schema.Scalar(schema.TypeInt), Public: true, Mapped: "someNumber"},
		&schema.Field{
			Name:   "isDerived",
			Type:   schema.Scalar(schema.TypeID),
			Public: true,
			Derive: func(record map[string]interface{}) interface{} { return record["id"] },
		},
	)
}

// Submodel returns a resource nested below model through modelId.
func Submodel() *schema.ResourceSchema {
	return schema.NewResourceSchema("submodel",
		&schema.Field{Name: "id", Type: schema.Scalar(schema.TypeID), Public: true, Auto: true, Key: true},
		&schema.Field{Name: "modelId", Type: schema.Scalar(schema.TypeID), Public: true},
		&schema.Field{Name: "opt", Type: schema.Scalar(schema.TypeString), Public: true, Optional: true},
	)
}

// Multikey returns a resource identified by id and key together.
func Multikey() *schema.ResourceSchema {
	return schema.NewResourceSchema("multikey",
		&schema.Field{Name: "id", Type: schema.Scalar(schema.TypeID), Public: true, Key: true},
		&schema.Field{Name: "key", Type: schema.Scalar(schema.TypeString), Public: true, Key: true},
	)
}

// StrangeIDs returns a resource with a client-chosen, read-only string id.
func StrangeIDs() *schema.ResourceSchema {
	return schema.NewResourceSchema("strangeids",
		&schema.Field{Name: "id", Type: schema.Scalar(schema.TypeString), Public: true, Key: true, ReadOnly: true},
		&schema.Field{Name: "val", Type: schema.Scalar(schema.TypeInt), Public: true},
	)
}

// AdvancedModel returns a resource with composite field types.
func AdvancedModel() *schema.ResourceSchema {
	return schema.NewResourceSchema("advancedmodel",
		&schema.Field{Name: "id", Type: schema.Scalar(schema.TypeID), Public: true, Auto: true, Key: true},
		&schema.Field{Name: "textarray", Type: schema.ArrayOf(schema.Scalar(schema.TypeString)), Public: true},
		&schema.Field{
			Name: "object",
			Type: schema.ObjectOf(map[string]*schema.TypeSpec{
				"a":   schema.Scalar(schema.TypeInt),
				"bcd": schema.Scalar(schema.TypeString),
			}),
			Public: true,
		},
	)
}
