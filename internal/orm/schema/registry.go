package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the field tables of all resources. It is filled at startup
// and only read afterwards.
type Registry struct {
	schemas   map[string]*ResourceSchema
	validator *SchemaValidator
	mu        sync.RWMutex
}

// NewRegistry creates a new schema registry
func NewRegistry() *Registry {
	return &Registry{
		schemas:   make(map[string]*ResourceSchema),
		validator: NewSchemaValidator(),
	}
}

// Register validates and registers a resource schema
func (r *Registry) Register(schema *ResourceSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[schema.Name]; exists {
		return fmt.Errorf("resource %s is already registered", schema.Name)
	}

	if err := r.validator.Validate(schema); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", schema.Name, err)
	}

	r.schemas[schema.Name] = schema
	return nil
}

// MustRegister is like Register but panics on error. Intended for static tables.
func (r *Registry) MustRegister(schema *ResourceSchema) *ResourceSchema {
	if err := r.Register(schema); err != nil {
		panic(err)
	}
	return schema
}

// Get retrieves a resource schema by name
func (r *Registry) Get(name string) (*ResourceSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[name]
	return schema, exists
}

// GetFields returns the field table of a resource keyed by internal name
func (r *Registry) GetFields(resourceName string) (map[string]*Field, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[resourceName]
	if !exists {
		return nil, fmt.Errorf("resource %s not found", resourceName)
	}

	return schema.Fields, nil
}

// List returns the names of all registered resources, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered schemas
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.schemas)
}

// Exists checks if a resource schema exists
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[name]
	return exists
}

// Clear removes all registered schemas (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schemas = make(map[string]*ResourceSchema)
}
