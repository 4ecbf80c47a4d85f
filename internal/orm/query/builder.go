package query

import (
	"fmt"
	"strings"
)

// SelectBuilder builds a parameterized SELECT for one table
type SelectBuilder struct {
	table       string
	columns     []string
	where       Predicate
	order       Order
	limit       int
	offset      int
	placeholder Placeholder
}

// NewSelect creates a builder selecting the given columns from table
func NewSelect(table string, columns ...string) *SelectBuilder {
	return &SelectBuilder{
		table:       table,
		columns:     columns,
		placeholder: DollarPlaceholder,
	}
}

// Placeholder sets the bind parameter style
func (sb *SelectBuilder) Placeholder(ph Placeholder) *SelectBuilder {
	sb.placeholder = ph
	return sb
}

// Where sets the predicate; all conditions are combined with AND
func (sb *SelectBuilder) Where(p Predicate) *SelectBuilder {
	sb.where = p
	return sb
}

// OrderBy sets the ordering
func (sb *SelectBuilder) OrderBy(o Order) *SelectBuilder {
	sb.order = o
	return sb
}

// Limit sets the maximum number of rows; zero or less means no limit
func (sb *SelectBuilder) Limit(n int) *SelectBuilder {
	sb.limit = n
	return sb
}

// Offset sets the number of rows to skip. It only applies together with a limit.
func (sb *SelectBuilder) Offset(n int) *SelectBuilder {
	sb.offset = n
	return sb
}

// ToSQL returns the statement and its arguments
func (sb *SelectBuilder) ToSQL() (string, []interface{}, error) {
	if len(sb.columns) == 0 {
		return "", nil, fmt.Errorf("no columns to select from %s", sb.table)
	}

	quoted := make([]string, len(sb.columns))
	for i, c := range sb.columns {
		quoted[i] = QuoteIdentifier(c)
	}

	var b strings.Builder
	args := make([]interface{}, 0)
	counter := 1

	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(quoted, ", "), QuoteIdentifier(sb.table))

	where, err := sb.where.ToSQL(sb.placeholder, &counter, &args)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if order := sb.order.ToSQL(); order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}

	if sb.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %s", sb.placeholder(counter))
		args = append(args, sb.limit)
		counter++
	}
	// SQLite only accepts OFFSET after a LIMIT
	if sb.offset > 0 && sb.limit > 0 {
		fmt.Fprintf(&b, " OFFSET %s", sb.placeholder(counter))
		args = append(args, sb.offset)
	}

	return b.String(), args, nil
}
