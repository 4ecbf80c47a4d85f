package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ormquery "github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/orm/schema/schematest"
)

func TestCompileOrderPreservesInputOrder(t *testing.T) {
	res := schema.NewResourceSchema("letters",
		&schema.Field{Name: "a", Type: schema.Scalar(schema.TypeInt), Public: true},
		&schema.Field{Name: "b", Type: schema.Scalar(schema.TypeInt), Public: true},
	)

	order, err := CompileOrder(str(`[{"key":"b","dir":"DESC"},{"key":"a","dir":"ASC"}]`), res, Options{})
	require.NoError(t, err)
	assert.Equal(t, ormquery.Order{
		{Field: "b", Dir: ormquery.Desc},
		{Field: "a", Dir: ormquery.Asc},
	}, order)
}

func TestCompileOrder(t *testing.T) {
	model := schematest.Model()

	t.Run("absent", func(t *testing.T) {
		order, err := CompileOrder(nil, model, Options{})
		require.NoError(t, err)
		assert.Empty(t, order)
	})

	t.Run("mapped field by alias", func(t *testing.T) {
		order, err := CompileOrder(str(`[{"key":"someNumber","dir":"ASC"}]`), model, Options{})
		require.NoError(t, err)
		assert.Equal(t, ormquery.Order{{Field: "mapped", Dir: ormquery.Asc}}, order)
	})

	tests := []struct {
		name string
		raw  string
		code Code
	}{
		{"syntax", `[{"key":"id"`, CodeInvalidOrderSyntax},
		{"not a list", `{"key":"id","dir":"ASC"}`, CodeInvalidOrderSyntax},
		{"trailing bracket", `[{"key":"id","dir":"ASC"}]]`, CodeInvalidOrderSyntax},
		{"trailing brace", `[{"key":"id","dir":"ASC"}]}`, CodeInvalidOrderSyntax},
		{"second list", `[] []`, CodeInvalidOrderSyntax},
		{"missing dir", `[{"key":"id"}]`, CodeInvalidOrderSyntax},
		{"extra property", `[{"key":"id","dir":"ASC","nulls":"first"}]`, CodeInvalidOrderSyntax},
		{"internal name of mapped field", `[{"key":"mapped","dir":"ASC"}]`, CodeUnknownOrderField},
		{"unknown", `[{"key":"nope","dir":"ASC"}]`, CodeUnknownOrderField},
		{"not public", `[{"key":"hasDefault","dir":"ASC"}]`, CodeUnknownOrderField},
		{"derived", `[{"key":"isDerived","dir":"ASC"}]`, CodeUnknownOrderField},
		{"lower case direction", `[{"key":"id","dir":"asc"}]`, CodeInvalidOrderDirection},
		{"bad direction", `[{"key":"id","dir":"UP"}]`, CodeInvalidOrderDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileOrder(str(tt.raw), model, Options{})
			requireCode(t, err, tt.code)
		})
	}
}

func TestCompileOrderDerivedPolicy(t *testing.T) {
	order, err := CompileOrder(str(`[{"key":"isDerived","dir":"DESC"}]`), schematest.Model(), Options{AllowDerivedOrder: true})
	require.NoError(t, err)
	assert.Equal(t, ormquery.Order{{Field: "isDerived", Dir: ormquery.Desc}}, order)
}
