package rest

import (
	"net/http"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	ormquery "github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/web/response"
)

// MsgAlterExists answers a PUT that collides with the key of another record
const MsgAlterExists = "Could not alter item because it exists"

// update serves PUT prefix/:id. Optional fields absent from the body are cleared.
func (h *handler) update(cfg *RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := h.pathValues(w, r)
		if !ok {
			return
		}
		id, ok := h.typedParam(w, r, "id", h.idType())
		if !ok {
			return
		}
		bound := withParam(params, h.idField.Name, id)

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

		if !h.checkAccess(w, r, cfg, merge(values, bound)) {
			return
		}

		keys := h.checkKeys(body, bound)
		if keys.unknown != "" {
			tooManyParameters(w, MsgAlterTooMany, keys.unknown)
			return
		}
		if len(keys.overlap) > 0 {
			response.BadRequest(w, MsgAlterPathID, map[string]interface{}{"fields": keys.overlap})
			return
		}

		record := values
		for _, wf := range h.writable {
			if _, set := record[wf.Field.Name]; !set && wf.Field.Optional {
				record[wf.Field.Name] = nil
			}
		}

		where := equalities(bound)
		if len(record) == 0 {
			h.touch(w, r, where, id)
			return
		}

		err = h.store.Update(r.Context(), h.resource, where, record)
		switch {
		case crud.IsNotFound(err):
			response.NotFound(w, h.name+" not found")
		case crud.IsDoesExist(err):
			response.PreconditionFailed(w, MsgAlterExists)
		case err != nil:
			h.internalError(w, r, "failed to update record", err)
		default:
			response.JSON(w, http.StatusOK, id)
		}
	}
}

// touch answers a PUT without fields to write: 404 if the record does not exist
func (h *handler) touch(w http.ResponseWriter, r *http.Request, where ormquery.Predicate, id interface{}) {
	records, err := h.store.Load(r.Context(), h.resource, where, crud.Page{Limit: 1}, nil)
	switch {
	case err != nil:
		h.internalError(w, r, "failed to load record", err)
	case len(records) == 0:
		response.NotFound(w, h.name+" not found")
	default:
		response.JSON(w, http.StatusOK, id)
	}
}
