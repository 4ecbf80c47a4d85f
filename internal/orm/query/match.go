package query

import (
	"encoding/json"
	"reflect"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

// Match reports whether a record satisfies every condition of the predicate.
// It is used by stores that evaluate predicates in process.
func (p Predicate) Match(record map[string]interface{}) bool {
	for field, cond := range p {
		if !cond.Match(record[field]) {
			return false
		}
	}
	return true
}

// Match reports whether a single value satisfies the condition
func (c *Condition) Match(value interface{}) bool {
	switch c.Operator {
	case OpIsNull:
		return value == nil
	case OpEqual:
		return value != nil && valuesEqual(value, c.Value)
	case OpIn:
		values, _ := c.Value.([]interface{})
		for _, v := range values {
			if value != nil && valuesEqual(value, v) {
				return true
			}
		}
		return false
	case OpLike:
		s, ok := value.(string)
		pattern, _ := c.Value.(string)
		return ok && likeRegexp(pattern).MatchString(s)
	default:
		return false
	}
}

func valuesEqual(a, b interface{}) bool {
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		return ok && an == bn
	}
	return reflect.DeepEqual(a, b)
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// likeCacheSize bounds the compiled patterns kept for client supplied filters
const likeCacheSize = 256

var likeCache = newLikeCache(likeCacheSize)

func newLikeCache(size int) *lru.Cache {
	cache, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return cache
}

// likeRegexp translates a SQL LIKE pattern into an anchored regular expression
func likeRegexp(pattern string) *regexp.Regexp {
	if re, ok := likeCache.Get(pattern); ok {
		return re.(*regexp.Regexp)
	}

	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re := regexp.MustCompile(b.String())
	likeCache.Add(pattern, re)
	return re
}

// Apply sorts records in place following the order directives. Nil values
// sort first in ascending order.
func (o Order) Apply(records []map[string]interface{}) {
	if len(o) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, s := range o {
			c := compareValues(records[i][s.Field], records[j][s.Field])
			if c == 0 {
				continue
			}
			if s.Dir == Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if an, ok := asNumber(a); ok {
		if bn, ok := asNumber(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}

	return 0
}
