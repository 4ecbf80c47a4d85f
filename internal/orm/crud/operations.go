package crud

import (
	"context"

	"github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// Record is a stored row keyed by internal field name
type Record = map[string]interface{}

// Page limits the rows returned by Load. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// Store is the persistence collaborator of the generated routes. Predicates
// and records use internal field names; derived fields are never passed in.
type Store interface {
	// Load returns the records matching pred, ordered and paged
	Load(ctx context.Context, resource *schema.ResourceSchema, pred query.Predicate, page Page, order query.Order) ([]Record, error)

	// Insert stores a new record and returns the value of its id field.
	// A key conflict yields ErrDoesExist.
	Insert(ctx context.Context, resource *schema.ResourceSchema, record Record) (interface{}, error)

	// Update replaces the stored fields of the records matching where.
	// No match yields ErrNotFound.
	Update(ctx context.Context, resource *schema.ResourceSchema, where query.Predicate, record Record) error

	// Delete removes the records matching where and returns how many were removed.
	// A record still referenced by others yields ErrIsReference.
	Delete(ctx context.Context, resource *schema.ResourceSchema, where query.Predicate) (int64, error)
}

// storedColumns returns the column names of the resource in declaration order
func storedColumns(resource *schema.ResourceSchema) []string {
	fields := resource.StoredFields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	return columns
}

// autoID reports whether the id of new records is assigned by the store
func autoID(resource *schema.ResourceSchema) bool {
	f, ok := resource.Field("id")
	return ok && f.Auto
}
