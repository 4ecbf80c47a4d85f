// Package query compiles the filter and order parameters of generated list
// routes into the predicate and ordering structures of the storage layer.
// Compilation is pure: it only reads the resource schema.
package query

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"

	ormquery "github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// operatorLike is the only operator accepted inside a filter operator object
const operatorLike = "like"

// FieldSet is a set of internal field names, e.g. the fields bound by a route path
type FieldSet interface {
	Has(name string) bool
}

// Options controls policy decisions of the compilers
type Options struct {
	// AllowDerivedOrder permits ordering by public derived fields
	AllowDerivedOrder bool
}

type entry struct {
	key   string
	value interface{}
}

// CompileFilter validates a raw JSON filter against the resource and returns
// the predicate keyed by internal field name. A nil or empty raw filter yields
// an empty predicate. The first failing key decides the error.
func CompileFilter(raw *string, resource *schema.ResourceSchema, pathParams FieldSet, opts Options) (ormquery.Predicate, error) {
	pred := ormquery.Predicate{}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return pred, nil
	}

	entries, err := decodeObject(*raw)
	if err != nil {
		return nil, newError(CodeInvalidFilterSyntax, "")
	}

	internal := make([]string, len(entries))
	for i, e := range entries {
		name, err := ResolveExternalName(e.key, resource)
		if err != nil {
			return nil, newError(CodeUnknownFilterField, e.key)
		}
		internal[i] = name
	}

	for i, e := range entries {
		field := resource.Fields[internal[i]]

		if !field.Public || field.IsDerived() {
			return nil, newError(CodeFieldNotFilterable, e.key)
		}
		if pathParams != nil && pathParams.Has(field.Name) {
			return nil, newError(CodeFilterPathCollision, e.key)
		}

		cond, err := compileCondition(e.key, field, e.value)
		if err != nil {
			return nil, err
		}
		pred[field.Name] = cond
	}

	return pred, nil
}

func compileCondition(key string, field *schema.Field, value interface{}) (*ormquery.Condition, error) {
	if ops, ok := value.(map[string]interface{}); ok {
		return compileOperators(key, field, ops)
	}

	if value == nil {
		if field.Optional {
			return ormquery.Eq(nil), nil
		}
		return nil, newError(CodeFilterTypeMismatch, key)
	}

	checked, ok := field.Type.Check(value)
	if !ok {
		return nil, newError(CodeFilterTypeMismatch, key)
	}
	return ormquery.Eq(checked), nil
}

func compileOperators(key string, field *schema.Field, ops map[string]interface{}) (*ormquery.Condition, error) {
	unknown := make([]string, 0)
	for op := range ops {
		if op != operatorLike {
			unknown = append(unknown, op)
		}
	}
	if len(unknown) > 0 || len(ops) == 0 {
		sort.Strings(unknown)
		e := newError(CodeUnknownFilterOperator, key)
		e.Operators = unknown
		return nil, e
	}

	pattern, isString := ops[operatorLike].(string)
	if field.Type.BaseType != schema.TypeString || !isString {
		return nil, newError(CodeLikeOperatorTypeMismatch, key)
	}
	return ormquery.Like(pattern), nil
}

// decodeObject decodes a JSON object keeping the order of its keys. A
// repeated key keeps its first position and its last value.
func decodeObject(raw string) ([]entry, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("filter must be a JSON object")
	}

	var entries []entry
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key must be a string")
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		if i, seen := index[key]; seen {
			entries[i].value = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, entry{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after filter object")
	}

	return entries, nil
}
