package query

import (
	"net/http"
	"strconv"
)

// Defaults of the list route query parameters
const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

// ListParams holds the raw query parameters of a list request
type ListParams struct {
	Limit  int
	Offset int

	// Filter and Order are nil when the parameter is absent
	Filter *string
	Order  *string
}

// ParseListParams reads limit, offset, filter and order from the query string.
// maxLimit caps the limit when positive.
func ParseListParams(r *http.Request, defaultLimit, maxLimit int) (*ListParams, error) {
	q := r.URL.Query()

	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	params := &ListParams{Limit: defaultLimit, Offset: DefaultOffset}

	if v, ok := q["limit"]; ok && len(v) > 0 {
		n, err := strconv.Atoi(v[0])
		if err != nil || n < 1 {
			return nil, newError(CodeInvalidQueryParameter, "limit")
		}
		params.Limit = n
	}
	if maxLimit > 0 && params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	if v, ok := q["offset"]; ok && len(v) > 0 {
		n, err := strconv.Atoi(v[0])
		if err != nil || n < 0 {
			return nil, newError(CodeInvalidQueryParameter, "offset")
		}
		params.Offset = n
	}

	if v, ok := q["filter"]; ok && len(v) > 0 {
		filter := v[0]
		params.Filter = &filter
	}
	if v, ok := q["order"]; ok && len(v) > 0 {
		order := v[0]
		params.Order = &order
	}

	return params, nil
}
