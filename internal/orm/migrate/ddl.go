// Package migrate creates the tables backing the registered resources in a
// SQL store.
package migrate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// TypeMapper maps field types to column types of one dialect
type TypeMapper struct {
	dialect crud.Dialect
}

// NewTypeMapper creates a TypeMapper for dialect
func NewTypeMapper(dialect crud.Dialect) *TypeMapper {
	return &TypeMapper{dialect: dialect}
}

// MapType returns the column type of t. Composite values and uuids are
// stored as text, times as milliseconds.
func (tm *TypeMapper) MapType(t *schema.TypeSpec) (string, error) {
	if t == nil {
		return "", fmt.Errorf("type spec cannot be nil")
	}
	pg := tm.dialect.Name == crud.Postgres.Name

	switch t.BaseType {
	case schema.TypeID, schema.TypeInt, schema.TypeTime:
		if pg {
			return "BIGINT", nil
		}
		return "INTEGER", nil
	case schema.TypeFloat:
		if pg {
			return "DOUBLE PRECISION", nil
		}
		return "REAL", nil
	case schema.TypeBool:
		return "BOOLEAN", nil
	case schema.TypeString, schema.TypeEmail, schema.TypeUUID,
		schema.TypeArray, schema.TypeObject:
		return "TEXT", nil
	default:
		return "", fmt.Errorf("unsupported type: %s", t)
	}
}

// MapDefault renders a literal default. Defaults computed per request and
// composite defaults have no column default.
func (tm *TypeMapper) MapDefault(f *schema.Field) (string, bool) {
	if f.DefaultFunc != nil || f.Default == nil || f.Type.IsComposite() {
		return "", false
	}
	switch v := f.Default.(type) {
	case bool:
		if v {
			return "TRUE", true
		}
		return "FALSE", true
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return "", false
	}
}

// DDLGenerator renders CREATE TABLE statements
type DDLGenerator struct {
	dialect    crud.Dialect
	typeMapper *TypeMapper
}

// NewDDLGenerator creates a DDLGenerator for dialect
func NewDDLGenerator(dialect crud.Dialect) *DDLGenerator {
	return &DDLGenerator{dialect: dialect, typeMapper: NewTypeMapper(dialect)}
}

// GenerateCreateTable renders the table of resource. The stored fields
// become columns in declaration order and the key fields the primary key.
// refs whose child is resource add foreign keys.
func (g *DDLGenerator) GenerateCreateTable(
	resource *schema.ResourceSchema,
	parents map[string]*schema.ResourceSchema,
	refs []crud.Reference,
) (string, error) {
	if resource == nil {
		return "", fmt.Errorf("resource cannot be nil")
	}

	var defs []string
	inlineKey := false
	for _, f := range resource.StoredFields() {
		def, inline, err := g.column(f)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", f.Name, err)
		}
		inlineKey = inlineKey || inline
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return "", fmt.Errorf("resource %s has no stored fields", resource.Name)
	}

	if keys := resource.KeyFields(); len(keys) > 0 && !inlineKey {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = query.QuoteIdentifier(k.Name)
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(names, ", ")+")")
	}

	for _, ref := range refs {
		if ref.ChildResource != resource.Name {
			continue
		}
		parent, ok := parents[ref.ParentResource]
		if !ok {
			return "", fmt.Errorf("reference %s.%s: unknown resource %s",
				ref.ChildResource, ref.Field, ref.ParentResource)
		}
		if !resource.HasField(ref.Field) {
			return "", fmt.Errorf("reference %s.%s: unknown field", ref.ChildResource, ref.Field)
		}
		// A foreign key needs a unique target; composite keys are left to the store.
		if keys := parent.KeyFields(); len(keys) != 1 || keys[0].Name != "id" {
			continue
		}
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			query.QuoteIdentifier(ref.Field),
			query.QuoteIdentifier(parent.TableName),
			query.QuoteIdentifier("id"),
		))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", query.QuoteIdentifier(resource.TableName))
	for i, def := range defs {
		b.WriteString("  ")
		b.WriteString(def)
		if i < len(defs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String(), nil
}

// column renders one column. inline reports a primary key declared on the
// column itself, which SQLite needs for autoincrement.
func (g *DDLGenerator) column(f *schema.Field) (def string, inline bool, err error) {
	name := query.QuoteIdentifier(f.Name)

	if f.Auto && f.Name == "id" {
		if g.dialect.Name == crud.Postgres.Name {
			return name + " BIGSERIAL NOT NULL", false, nil
		}
		return name + " INTEGER PRIMARY KEY AUTOINCREMENT", true, nil
	}

	columnType, err := g.typeMapper.MapType(f.Type)
	if err != nil {
		return "", false, err
	}

	parts := []string{name, columnType}
	if f.Optional {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}
	if d, ok := g.typeMapper.MapDefault(f); ok {
		parts = append(parts, "DEFAULT "+d)
	}
	return strings.Join(parts, " "), false, nil
}

// orderByReferences sorts resources so that parents precede their children.
// Ties and cycles fall back to name order.
func orderByReferences(resources []*schema.ResourceSchema, refs []crud.Reference) []*schema.ResourceSchema {
	sorted := make([]*schema.ResourceSchema, len(resources))
	copy(sorted, resources)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	byName := make(map[string]*schema.ResourceSchema, len(sorted))
	for _, r := range sorted {
		byName[r.Name] = r
	}
	parentsOf := make(map[string][]string)
	for _, ref := range refs {
		parentsOf[ref.ChildResource] = append(parentsOf[ref.ChildResource], ref.ParentResource)
	}

	out := make([]*schema.ResourceSchema, 0, len(sorted))
	state := make(map[string]int) // 1 visiting, 2 done
	var visit func(name string)
	visit = func(name string) {
		r, ok := byName[name]
		if !ok || state[name] != 0 {
			return
		}
		state[name] = 1
		for _, p := range parentsOf[name] {
			visit(p)
		}
		state[name] = 2
		out = append(out, r)
	}
	for _, r := range sorted {
		visit(r.Name)
	}
	return out
}
