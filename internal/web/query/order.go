package query

import (
	"encoding/json"
	"io"
	"strings"

	ormquery "github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
)

type orderItem struct {
	Key *string `json:"key"`
	Dir *string `json:"dir"`
}

// CompileOrder validates a raw JSON order expression, a list of
// {"key": ..., "dir": "ASC"|"DESC"} objects, and returns the sort directives
// in client order. A nil or empty raw order yields no ordering.
func CompileOrder(raw *string, resource *schema.ResourceSchema, opts Options) (ormquery.Order, error) {
	order := ormquery.Order{}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return order, nil
	}

	var items []orderItem
	dec := json.NewDecoder(strings.NewReader(*raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&items); err != nil {
		return nil, newError(CodeInvalidOrderSyntax, "")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, newError(CodeInvalidOrderSyntax, "")
	}

	for _, item := range items {
		if item.Key == nil || item.Dir == nil {
			return nil, newError(CodeInvalidOrderSyntax, "")
		}
		key := *item.Key

		name, err := ResolveExternalName(key, resource)
		if err != nil {
			return nil, newError(CodeUnknownOrderField, key)
		}
		field := resource.Fields[name]
		if !field.Public || (field.IsDerived() && !opts.AllowDerivedOrder) {
			return nil, newError(CodeUnknownOrderField, key)
		}

		dir, ok := ormquery.ParseDirection(*item.Dir)
		if !ok {
			return nil, newError(CodeInvalidOrderDirection, key)
		}

		order = append(order, ormquery.Sort{Field: name, Dir: dir})
	}

	return order, nil
}
