package migrate

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/orm/schema/schematest"
)

var submodelRef = crud.Reference{ChildResource: "submodel", Field: "modelId", ParentResource: "model"}

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	for _, res := range []*schema.ResourceSchema{
		schematest.Submodel(), schematest.Model(), schematest.Multikey(), schematest.AdvancedModel(),
	} {
		require.NoError(t, r.Register(res))
	}
	return r
}

func TestGenerateCreateTablePostgres(t *testing.T) {
	gen := NewDDLGenerator(crud.Postgres)
	ddl, err := gen.GenerateCreateTable(schematest.Model(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "model" (
  "id" BIGSERIAL NOT NULL,
  "optionalVal" TEXT NULL,
  "hasDefault" BIGINT NOT NULL DEFAULT 7,
  "mapped" BIGINT NOT NULL,
  PRIMARY KEY ("id")
)`, ddl)
	assert.NotContains(t, ddl, "isDerived")
}

func TestGenerateCreateTableSQLite(t *testing.T) {
	gen := NewDDLGenerator(crud.SQLite)
	ddl, err := gen.GenerateCreateTable(schematest.Model(), nil, nil)
	require.NoError(t, err)

	assert.Contains(t, ddl, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.Contains(t, ddl, `"hasDefault" INTEGER NOT NULL DEFAULT 7`)
	assert.NotContains(t, ddl, "PRIMARY KEY (")
}

func TestGenerateCreateTableKeys(t *testing.T) {
	gen := NewDDLGenerator(crud.Postgres)

	ddl, err := gen.GenerateCreateTable(schematest.Multikey(), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, ddl, `"id" BIGINT NOT NULL`)
	assert.Contains(t, ddl, `PRIMARY KEY ("id", "key")`)

	ddl, err = gen.GenerateCreateTable(schematest.AdvancedModel(), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, ddl, `"textarray" TEXT NOT NULL`)
	assert.Contains(t, ddl, `"object" TEXT NOT NULL`)
}

func TestGenerateCreateTableReferences(t *testing.T) {
	gen := NewDDLGenerator(crud.Postgres)
	parents := map[string]*schema.ResourceSchema{"model": schematest.Model(), "multikey": schematest.Multikey()}

	ddl, err := gen.GenerateCreateTable(schematest.Submodel(), parents, []crud.Reference{submodelRef})
	require.NoError(t, err)
	assert.Contains(t, ddl, `FOREIGN KEY ("modelId") REFERENCES "model" ("id")`)

	// composite parent keys get no foreign key
	ddl, err = gen.GenerateCreateTable(schematest.Submodel(), parents,
		[]crud.Reference{{ChildResource: "submodel", Field: "modelId", ParentResource: "multikey"}})
	require.NoError(t, err)
	assert.NotContains(t, ddl, "FOREIGN KEY")

	_, err = gen.GenerateCreateTable(schematest.Submodel(), parents,
		[]crud.Reference{{ChildResource: "submodel", Field: "modelId", ParentResource: "nothing"}})
	assert.ErrorContains(t, err, "unknown resource nothing")

	_, err = gen.GenerateCreateTable(schematest.Submodel(), parents,
		[]crud.Reference{{ChildResource: "submodel", Field: "parent", ParentResource: "model"}})
	assert.ErrorContains(t, err, "unknown field")

	_, err = gen.GenerateCreateTable(nil, nil, nil)
	assert.Error(t, err)
}

func TestMapDefault(t *testing.T) {
	tm := NewTypeMapper(crud.SQLite)

	cases := []struct {
		field *schema.Field
		want  string
		ok    bool
	}{
		{&schema.Field{Type: schema.Scalar(schema.TypeString), Default: "it's"}, "'it''s'", true},
		{&schema.Field{Type: schema.Scalar(schema.TypeBool), Default: true}, "TRUE", true},
		{&schema.Field{Type: schema.Scalar(schema.TypeFloat), Default: 1.5}, "1.5", true},
		{&schema.Field{Type: schema.Scalar(schema.TypeInt), Default: 3}, "3", true},
		{&schema.Field{Type: schema.Scalar(schema.TypeInt)}, "", false},
		{&schema.Field{Type: schema.Scalar(schema.TypeInt), DefaultFunc: func() interface{} { return 1 }}, "", false},
		{&schema.Field{Type: schema.ArrayOf(schema.Scalar(schema.TypeInt)), Default: []interface{}{}}, "", false},
	}
	for _, tc := range cases {
		got, ok := tm.MapDefault(tc.field)
		assert.Equal(t, tc.ok, ok)
		assert.Equal(t, tc.want, got)
	}
}

func TestPlanOrdersParentsFirst(t *testing.T) {
	stmts, err := Plan(testRegistry(t), crud.Postgres, []crud.Reference{submodelRef})
	require.NoError(t, err)

	var order []string
	for _, s := range stmts {
		order = append(order, s.Resource)
	}
	assert.Equal(t, []string{"advancedmodel", "model", "multikey", "submodel"}, order)

	// without references the order is by name
	stmts, err = Plan(testRegistry(t), crud.Postgres, nil)
	require.NoError(t, err)
	assert.Equal(t, "submodel", stmts[len(stmts)-1].Resource)
}

func TestOrderByReferencesCycle(t *testing.T) {
	a := schema.NewResourceSchema("a")
	b := schema.NewResourceSchema("b")
	out := orderByReferences([]*schema.ResourceSchema{b, a}, []crud.Reference{
		{ChildResource: "a", ParentResource: "b"},
		{ChildResource: "b", ParentResource: "a"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Name)
}

func TestRunnerApply(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	runner := NewRunner(db, zap.New(core))

	stmts := []Statement{
		{Resource: "model", Table: "model", SQL: `CREATE TABLE IF NOT EXISTS "model" (x)`},
		{Resource: "submodel", Table: "submodel", SQL: `CREATE TABLE IF NOT EXISTS "submodel" (y)`},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(stmts[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(stmts[1].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, runner.Apply(context.Background(), stmts))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, logs.FilterMessage("migration applied").Len())
}

func TestRunnerApplyRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = NewRunner(db, nil).Apply(context.Background(), []Statement{{Resource: "model", Table: "model", SQL: "CREATE TABLE"}})
	assert.ErrorContains(t, err, "failed to create table model")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunnerApplyNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewRunner(db, nil).Apply(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	registry := testRegistry(t)
	stmts, err := Plan(registry, crud.SQLite, []crud.Reference{submodelRef})
	require.NoError(t, err)

	runner := NewRunner(db, nil)
	require.NoError(t, runner.Apply(context.Background(), stmts))
	// existing tables are kept
	require.NoError(t, runner.Apply(context.Background(), stmts))

	model, _ := registry.Get("model")
	store := crud.NewSQLStore(db, crud.SQLite)
	id, err := store.Insert(context.Background(), model, crud.Record{"mapped": int64(3)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	rows, err := store.Load(context.Background(), model, nil, crud.Page{}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 7, rows[0]["hasDefault"])
	assert.EqualValues(t, 3, rows[0]["mapped"])
	assert.Nil(t, rows[0]["optionalVal"])
}
