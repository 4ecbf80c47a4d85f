package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/mail"
	"strconv"

	"github.com/google/uuid"
)

// Check reports whether v is a valid value of the type. On success it returns
// v normalised to the representation the storage layer expects: integers as
// int64, floats as float64, arrays as []interface{} and objects as
// map[string]interface{}. nil is never valid; callers decide about optional fields.
func (t *TypeSpec) Check(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, false
	}

	switch t.BaseType {
	case TypeID, TypeInt, TypeTime:
		return toInt64(v)

	case TypeFloat:
		return toFloat64(v)

	case TypeBool:
		b, ok := v.(bool)
		return b, ok

	case TypeString:
		s, ok := v.(string)
		return s, ok

	case TypeEmail:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return nil, false
		}
		return s, true

	case TypeUUID:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, false
		}
		return id.String(), true

	case TypeArray:
		items, ok := v.([]interface{})
		if !ok {
			return nil, false
		}
		out := make([]interface{}, len(items))
		for i, item := range items {
			if t.Items == nil {
				out[i] = item
				continue
			}
			checked, ok := t.Items.Check(item)
			if !ok {
				return nil, false
			}
			out[i] = checked
		}
		return out, true

	case TypeObject:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if t.Keys == nil {
			return obj, true
		}
		out := make(map[string]interface{}, len(obj))
		for key, value := range obj {
			keyType, known := t.Keys[key]
			if !known {
				return nil, false
			}
			checked, ok := keyType.Check(value)
			if !ok {
				return nil, false
			}
			out[key] = checked
		}
		for key := range t.Keys {
			if _, present := out[key]; !present {
				return nil, false
			}
		}
		return out, true
	}

	return nil, false
}

// ParsePathValue converts a raw URL path segment into a value of the type.
// Composite types are expected to be JSON encoded.
func (t *TypeSpec) ParsePathValue(raw string) (interface{}, error) {
	var candidate interface{}

	switch t.BaseType {
	case TypeID, TypeInt, TypeTime:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected %s, got %q", t, raw)
		}
		return n, nil
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expected %s, got %q", t, raw)
		}
		return f, nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected %s, got %q", t, raw)
		}
		return b, nil
	case TypeArray, TypeObject:
		decoded, err := DecodeJSON([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("expected JSON %s: %w", t, err)
		}
		candidate = decoded
	default:
		candidate = raw
	}

	value, ok := t.Check(candidate)
	if !ok {
		return nil, fmt.Errorf("expected %s, got %q", t, raw)
	}
	return value, nil
}

// DecodeJSON decodes a JSON document keeping numbers as json.Number so integer
// and float values can be told apart by Check.
func DecodeJSON(data []byte) (interface{}, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// floatToInt64 accepts integral floats such as 30.0 or 3e1 within int64 range
func floatToInt64(f float64) (interface{}, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, false
	}
	return int64(f), true
}

func toInt64(v interface{}) (interface{}, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return floatToInt64(f)
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatToInt64(n)
	default:
		return nil, false
	}
}

func toFloat64(v interface{}) (interface{}, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return f, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return nil, false
	}
}
