package rest

import (
	"net/http"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/web/response"
)

// create serves POST prefix and answers with the id of the new record
func (h *handler) create(cfg *RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := h.pathValues(w, r)
		if !ok {
			return
		}

		body, err := decodeBody(w, r)
		if err != nil {
			h.fieldMismatch(w, err)
			return
		}
		values, err := h.checkWritable(body)
		if err != nil {
			h.fieldMismatch(w, err)
			return
		}

		if !h.checkAccess(w, r, cfg, merge(values, params)) {
			return
		}

		// the path decides bound fields; a body copy of them is ignored
		if keys := h.checkKeys(body, params); keys.unknown != "" {
			tooManyParameters(w, MsgCreateTooMany, keys.unknown)
			return
		}

		record := merge(values, params)
		for _, f := range h.resource.StoredFields() {
			if _, set := record[f.Name]; !set && !f.Auto && f.HasDefault() {
				record[f.Name] = f.DefaultValue()
			}
		}

		id, err := h.store.Insert(r.Context(), h.resource, record)
		switch {
		case crud.IsDoesExist(err):
			response.PreconditionFailed(w, MsgCreateExists)
		case err != nil:
			h.internalError(w, r, "failed to insert record", err)
		default:
			response.JSON(w, http.StatusOK, id)
		}
	}
}

// merge returns a new map with the entries of a and b; b wins on conflicts
func merge(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
