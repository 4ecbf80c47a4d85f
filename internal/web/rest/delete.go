package rest

import (
	"net/http"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	ormquery "github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/web/response"
)

// delete serves DELETE prefix/:ids and answers "ok"
func (h *handler) delete(cfg *RouteConfig) http.HandlerFunc {
	idsType := schema.ArrayOf(h.idType())

	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := h.pathValues(w, r)
		if !ok {
			return
		}
		raw, ok := h.typedParam(w, r, "ids", idsType)
		if !ok {
			return
		}

		if !h.checkAccess(w, r, cfg, withParam(params, "ids", raw)) {
			return
		}

		ids := raw.([]interface{})
		if len(ids) == 0 {
			response.JSON(w, http.StatusOK, "ok")
			return
		}

		where := equalities(params)
		where[h.idField.Name] = ormquery.In(ids)

		_, err := h.store.Delete(r.Context(), h.resource, where)
		switch {
		case crud.IsReference(err):
			response.PreconditionFailed(w, MsgDeleteIsReference)
		case err != nil:
			h.internalError(w, r, "failed to delete records", err)
		default:
			response.JSON(w, http.StatusOK, "ok")
		}
	}
}
