package crud

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// Reference declares that Field of ChildResource holds the id of a ParentResource record
type Reference struct {
	ChildResource  string
	Field          string
	ParentResource string
}

// MemoryStore implements Store in process. It is used for development
// servers and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	tables     map[string][]Record
	sequences  map[string]int64
	references []Reference
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore(references ...Reference) *MemoryStore {
	return &MemoryStore{
		tables:     make(map[string][]Record),
		sequences:  make(map[string]int64),
		references: references,
	}
}

// Load returns copies of the matching records
func (m *MemoryStore) Load(
	ctx context.Context,
	resource *schema.ResourceSchema,
	pred query.Predicate,
	page Page,
	order query.Order,
) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := make([]Record, 0)
	for _, rec := range m.tables[resource.Name] {
		if pred.Match(rec) {
			matched = append(matched, copyRecord(rec))
		}
	}
	m.mu.RUnlock()

	order.Apply(matched)

	if page.Offset > 0 {
		if page.Offset >= len(matched) {
			return []Record{}, nil
		}
		matched = matched[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}

	return matched, nil
}

// Insert stores a copy of the record. Auto ids are assigned from a
// per-resource sequence starting at 1.
func (m *MemoryStore) Insert(ctx context.Context, resource *schema.ResourceSchema, record Record) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := make(Record, len(resource.Fields))
	for _, name := range storedColumns(resource) {
		rec[name] = record[name]
	}

	if autoID(resource) {
		if _, set := record["id"]; !set {
			m.sequences[resource.Name]++
			rec["id"] = m.sequences[resource.Name]
		}
	}

	keys := resource.KeyFields()
	for _, existing := range m.tables[resource.Name] {
		if len(keys) > 0 && sameKey(keys, existing, rec) {
			return nil, fmt.Errorf("%w: %s", ErrDoesExist, resource.Name)
		}
	}

	m.tables[resource.Name] = append(m.tables[resource.Name], rec)
	return rec["id"], nil
}

// Update overwrites the given fields of every matching record
func (m *MemoryStore) Update(ctx context.Context, resource *schema.ResourceSchema, where query.Predicate, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, rec := range m.tables[resource.Name] {
		if !where.Match(rec) {
			continue
		}
		found = true
		for _, name := range storedColumns(resource) {
			if value, ok := record[name]; ok {
				rec[name] = value
			}
		}
	}

	if !found {
		return ErrNotFound
	}
	return nil
}

// Delete removes every matching record. Nothing is removed if one of them is
// still referenced.
func (m *MemoryStore) Delete(ctx context.Context, resource *schema.ResourceSchema, where query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var kept, removed []Record
	for _, rec := range m.tables[resource.Name] {
		if where.Match(rec) {
			removed = append(removed, rec)
		} else {
			kept = append(kept, rec)
		}
	}

	for _, rec := range removed {
		if m.isReferenced(resource.Name, rec["id"]) {
			return 0, fmt.Errorf("%w: %s %v", ErrIsReference, resource.Name, rec["id"])
		}
	}

	m.tables[resource.Name] = kept
	return int64(len(removed)), nil
}

func (m *MemoryStore) isReferenced(parent string, id interface{}) bool {
	if id == nil {
		return false
	}
	ref := query.Eq(id)
	for _, r := range m.references {
		if r.ParentResource != parent {
			continue
		}
		for _, child := range m.tables[r.ChildResource] {
			if ref.Match(child[r.Field]) {
				return true
			}
		}
	}
	return false
}

func sameKey(keys []*schema.Field, a, b Record) bool {
	for _, k := range keys {
		if !reflect.DeepEqual(a[k.Name], b[k.Name]) {
			return false
		}
	}
	return true
}

func copyRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
