// Package query provides the compiled predicate and ordering structures that
// the request compilers produce and the stores consume.
package query

import (
	"fmt"
	"sort"
	"strings"
)

// Operator represents a comparison operator
type Operator int

const (
	OpEqual Operator = iota
	OpLike
	OpIn
	OpIsNull
)

// Name returns the operator name used in compiled predicates
func (o Operator) Name() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpLike:
		return "like"
	case OpIn:
		return "in"
	case OpIsNull:
		return "null"
	default:
		return "unknown"
	}
}

// String returns the SQL representation of the operator
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpLike:
		return "LIKE"
	case OpIn:
		return "IN"
	case OpIsNull:
		return "IS NULL"
	default:
		return "UNKNOWN"
	}
}

// Condition is the compiled constraint on a single field
type Condition struct {
	Operator Operator
	Value    interface{}
}

// Eq returns an equality condition. A nil value compiles to IS NULL.
func Eq(value interface{}) *Condition {
	if value == nil {
		return &Condition{Operator: OpIsNull}
	}
	return &Condition{Operator: OpEqual, Value: value}
}

// Like returns a pattern condition. % and _ keep their SQL meaning.
func Like(pattern string) *Condition {
	return &Condition{Operator: OpLike, Value: pattern}
}

// In returns a set membership condition
func In(values []interface{}) *Condition {
	return &Condition{Operator: OpIn, Value: values}
}

// String renders the condition as {op, val}
func (c *Condition) String() string {
	if c.Operator == OpIsNull {
		return "{null}"
	}
	return fmt.Sprintf("{%s %v}", c.Operator.Name(), c.Value)
}

// Predicate maps internal field names to conditions. All conditions must hold.
type Predicate map[string]*Condition

// Fields returns the constrained field names, sorted
func (p Predicate) Fields() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new predicate holding the conditions of p and other.
// Conditions in other win on conflicting fields.
func (p Predicate) Merge(other Predicate) Predicate {
	merged := make(Predicate, len(p)+len(other))
	for name, cond := range p {
		merged[name] = cond
	}
	for name, cond := range other {
		merged[name] = cond
	}
	return merged
}

// Placeholder renders the n-th (1-based) bind parameter of a statement
type Placeholder func(n int) string

// DollarPlaceholder renders PostgreSQL style placeholders ($1, $2, ...)
func DollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// QuestionPlaceholder renders SQLite style placeholders
func QuestionPlaceholder(int) string {
	return "?"
}

// QuoteIdentifier quotes a column or table name
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ToSQL converts the predicate to a WHERE clause body. Conditions are joined
// with AND in field name order. An empty predicate renders as "".
func (p Predicate) ToSQL(ph Placeholder, paramCounter *int, args *[]interface{}) (string, error) {
	if len(p) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(p))
	for _, field := range p.Fields() {
		sql, err := conditionToSQL(QuoteIdentifier(field), p[field], ph, paramCounter, args)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", field, err)
		}
		parts = append(parts, sql)
	}

	return strings.Join(parts, " AND "), nil
}

// conditionToSQL converts a condition to SQL with parameterized values
func conditionToSQL(column string, cond *Condition, ph Placeholder, paramCounter *int, args *[]interface{}) (string, error) {
	switch cond.Operator {
	case OpEqual, OpLike:
		*args = append(*args, cond.Value)
		sql := fmt.Sprintf("%s %s %s", column, cond.Operator, ph(*paramCounter))
		*paramCounter++
		return sql, nil

	case OpIn:
		values, ok := cond.Value.([]interface{})
		if !ok {
			return "", fmt.Errorf("IN operator requires []interface{} value")
		}
		if len(values) == 0 {
			// IN with empty array always returns false
			return "FALSE", nil
		}

		placeholders := make([]string, len(values))
		for i, v := range values {
			*args = append(*args, v)
			placeholders[i] = ph(*paramCounter)
			*paramCounter++
		}
		return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")), nil

	case OpIsNull:
		return fmt.Sprintf("%s IS NULL", column), nil

	default:
		return "", fmt.Errorf("unsupported operator: %v", cond.Operator)
	}
}
