package crud

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// scanRows scans multiple rows into records, normalising driver values to
// the representation the schema types use
func scanRows(rows *sql.Rows, resource *schema.ResourceSchema) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]Record, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(Record, len(columns))
		for i, col := range columns {
			v, err := fromDriverValue(resource.Fields[col], values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			record[col] = v
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func fromDriverValue(field *schema.Field, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	if field != nil && field.Type.IsComposite() {
		var raw []byte
		switch data := v.(type) {
		case []byte:
			raw = data
		case string:
			raw = []byte(data)
		default:
			return v, nil
		}
		decoded, err := schema.DecodeJSON(raw)
		if err != nil {
			return nil, err
		}
		if checked, ok := field.Type.Check(decoded); ok {
			return checked, nil
		}
		return decoded, nil
	}

	switch data := v.(type) {
	case []byte:
		return string(data), nil
	case int32:
		return int64(data), nil
	case int:
		return int64(data), nil
	case time.Time:
		return data.UnixMilli(), nil
	}
	return v, nil
}

// encodePredicate encodes the values compared against composite fields the
// way toDriverValue stores them, so they compare as JSON text.
func encodePredicate(resource *schema.ResourceSchema, pred query.Predicate) (query.Predicate, error) {
	out := make(query.Predicate, len(pred))
	for name, cond := range pred {
		field := resource.Fields[name]
		if cond == nil || field == nil || !field.Type.IsComposite() {
			out[name] = cond
			continue
		}
		switch cond.Operator {
		case query.OpEqual:
			v, err := toDriverValue(field, cond.Value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", name, err)
			}
			out[name] = &query.Condition{Operator: cond.Operator, Value: v}
		case query.OpIn:
			values, _ := cond.Value.([]interface{})
			encoded := make([]interface{}, len(values))
			for i, value := range values {
				v, err := toDriverValue(field, value)
				if err != nil {
					return nil, fmt.Errorf("failed to encode %s: %w", name, err)
				}
				encoded[i] = v
			}
			out[name] = query.In(encoded)
		default:
			out[name] = cond
		}
	}
	return out, nil
}

// toDriverValue encodes composite values as JSON documents
func toDriverValue(field *schema.Field, v interface{}) (interface{}, error) {
	if v == nil || field == nil || !field.Type.IsComposite() {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
