package query

import (
	"fmt"
	"strings"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts exactly "ASC" or "DESC"
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Asc, Desc:
		return Direction(s), true
	default:
		return "", false
	}
}

// Sort is a single ordering directive on an internal field name
type Sort struct {
	Field string
	Dir   Direction
}

// Order is a sequence of sort directives; the first entry is the primary key
type Order []Sort

// ToSQL renders the ORDER BY list, or "" for an empty order
func (o Order) ToSQL() string {
	if len(o) == 0 {
		return ""
	}
	parts := make([]string, len(o))
	for i, s := range o {
		parts[i] = fmt.Sprintf("%s %s", QuoteIdentifier(s.Field), s.Dir)
	}
	return strings.Join(parts, ", ")
}
