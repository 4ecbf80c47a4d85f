package rest

import (
	"net/http"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	ormquery "github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/web/query"
	"github.com/conduit-lang/restgen/internal/web/response"
)

// list serves GET prefix: the public views of the records matching the path
// parameters and the optional filter, ordered and paged.
func (h *handler) list(cfg *RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := h.pathValues(w, r)
		if !ok {
			return
		}

		lp, err := query.ParseListParams(r, h.opts.DefaultLimit, h.opts.MaxLimit)
		if err != nil {
			h.queryError(w, r, err)
			return
		}

		if !h.checkAccess(w, r, cfg, params) {
			return
		}

		filter, err := query.CompileFilter(lp.Filter, h.resource, h.params, h.opts.queryOptions())
		if err != nil {
			h.queryError(w, r, err)
			return
		}
		order, err := query.CompileOrder(lp.Order, h.resource, h.opts.queryOptions())
		if err != nil {
			h.queryError(w, r, err)
			return
		}

		pred := filter.Merge(equalities(params))
		page := crud.Page{Limit: lp.Limit, Offset: lp.Offset}

		if h.ordersByDerived(order) {
			h.listOrderedByDerived(w, r, pred, page, order)
			return
		}

		records, err := h.store.Load(r.Context(), h.resource, pred, page, order)
		if err != nil {
			h.internalError(w, r, "failed to load records", err)
			return
		}
		response.JSON(w, http.StatusOK, query.PublicViews(records, h.resource))
	}
}

// listOrderedByDerived sorts and pages in process since derived values do not exist in storage
func (h *handler) listOrderedByDerived(w http.ResponseWriter, r *http.Request, pred ormquery.Predicate, page crud.Page, order ormquery.Order) {
	records, err := h.store.Load(r.Context(), h.resource, pred, crud.Page{}, nil)
	if err != nil {
		h.internalError(w, r, "failed to load records", err)
		return
	}

	withDerived := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		withDerived[i] = withDerivedValues(rec, h.resource)
	}
	order.Apply(withDerived)

	start := page.Offset
	if start > len(withDerived) {
		start = len(withDerived)
	}
	end := len(withDerived)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	response.JSON(w, http.StatusOK, query.PublicViews(withDerived[start:end], h.resource))
}

func (h *handler) ordersByDerived(order ormquery.Order) bool {
	for _, s := range order {
		if f, ok := h.resource.Field(s.Field); ok && f.IsDerived() {
			return true
		}
	}
	return false
}

// getByIDs serves GET prefix/:ids where ids is a JSON array of ids
func (h *handler) getByIDs(cfg *RouteConfig) http.HandlerFunc {
	idsType := schema.ArrayOf(h.idType())

	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := h.pathValues(w, r)
		if !ok {
			return
		}
		ids, ok := h.typedParam(w, r, "ids", idsType)
		if !ok {
			return
		}

		if !h.checkAccess(w, r, cfg, withParam(params, "ids", ids)) {
			return
		}

		pred := equalities(params)
		pred[h.idField.Name] = ormquery.In(ids.([]interface{}))

		records, err := h.store.Load(r.Context(), h.resource, pred, crud.Page{}, nil)
		if err != nil {
			h.internalError(w, r, "failed to load records", err)
			return
		}
		response.JSON(w, http.StatusOK, query.PublicViews(records, h.resource))
	}
}

func (h *handler) idType() *schema.TypeSpec {
	if h.idField == nil {
		return schema.Scalar(schema.TypeID)
	}
	return h.idField.Type
}

// equalities turns typed path parameters into equality conditions
func equalities(params map[string]interface{}) ormquery.Predicate {
	pred := make(ormquery.Predicate, len(params))
	for name, v := range params {
		pred[name] = ormquery.Eq(v)
	}
	return pred
}

func withParam(params map[string]interface{}, name string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out[name] = value
	return out
}

func withDerivedValues(rec map[string]interface{}, resource *schema.ResourceSchema) map[string]interface{} {
	out := make(map[string]interface{}, len(resource.Fields))
	for k, v := range rec {
		out[k] = v
	}
	for _, f := range resource.OrderedFields() {
		if f.IsDerived() {
			out[f.Name] = f.Derive(rec)
		}
	}
	return out
}
