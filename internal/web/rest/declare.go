package rest

import (
	"net/http"

	"github.com/conduit-lang/restgen/internal/web/query"
	"github.com/conduit-lang/restgen/internal/web/router"
)

// declare describes the parameters and responses of a generated route.
// Body parameters and returned objects use external field names.
func (h *handler) declare(op router.CRUDOperation) ([]router.RouteParameter, []router.ReturnDeclaration) {
	params := h.pathDeclarations()
	var returns []router.ReturnDeclaration

	switch op {
	case router.OpList:
		params = append(params,
			router.RouteParameter{Name: "limit", Type: "int", Optional: true, Default: h.defaultLimit(), Source: router.QueryParam},
			router.RouteParameter{Name: "offset", Type: "int", Optional: true, Default: query.DefaultOffset, Source: router.QueryParam},
			router.RouteParameter{Name: "filter", Type: "string", Optional: true, Source: router.QueryParam},
			router.RouteParameter{Name: "order", Type: "string", Optional: true, Source: router.QueryParam},
		)
		returns = append(returns,
			router.ReturnDeclaration{Status: http.StatusOK, Type: "array<" + h.viewType() + ">"},
			router.ReturnDeclaration{Status: http.StatusBadRequest, Error: MsgFieldMismatch},
		)
		for _, code := range listErrorCodes {
			returns = append(returns, router.ReturnDeclaration{Status: http.StatusBadRequest, Error: query.Message(code)})
		}

	case router.OpGetByIDs:
		params = append(params, router.RouteParameter{Name: "ids", Type: "array<" + h.idType().String() + ">", Source: router.PathParam})
		returns = append(returns,
			router.ReturnDeclaration{Status: http.StatusOK, Type: "array<" + h.viewType() + ">"},
			router.ReturnDeclaration{Status: http.StatusBadRequest, Error: MsgFieldMismatch},
		)

	case router.OpCreate:
		params = append(params, h.bodyDeclarations()...)
		returns = append(returns,
			router.ReturnDeclaration{Status: http.StatusOK, Type: h.idType().String()},
			router.ReturnDeclaration{Status: http.StatusBadRequest, Error: MsgFieldMismatch},
			router.ReturnDeclaration{Status: http.StatusBadRequest, Error: MsgCreateTooMany},
			router.ReturnDeclaration{Status: http.StatusPreconditionFailed, Error: MsgCreateExists},
		)

	case router.OpUpdate:
		params = append(params, router.RouteParameter{Name: "id", Type: h.idType().String(), Source: router.PathParam})
		params = append(params, h.bodyDeclarations()...)
		returns = append(returns,
			router.ReturnDeclaration{Status: http.StatusOK, Type: h.idType().String()},
			router.ReturnDeclaration{Status: http.StatusBadRequest, Error: MsgFieldMismatch},
			router.ReturnDeclaration{Status: http.StatusBadRequest, Error: MsgAlterTooMany},
			router.ReturnDeclaration{Status: http.StatusBadRequest, Error: MsgAlterPathID},
			router.ReturnDeclaration{Status: http.StatusNotFound, Error: h.name + " not found"},
			router.ReturnDeclaration{Status: http.StatusPreconditionFailed, Error: MsgAlterExists},
		)

	case router.OpDelete:
		params = append(params, router.RouteParameter{Name: "ids", Type: "array<" + h.idType().String() + ">", Source: router.PathParam})
		returns = append(returns,
			router.ReturnDeclaration{Status: http.StatusOK, Type: `"ok"`},
			router.ReturnDeclaration{Status: http.StatusBadRequest, Error: MsgFieldMismatch},
			router.ReturnDeclaration{Status: http.StatusPreconditionFailed, Error: MsgDeleteIsReference},
		)
	}

	returns = append(returns, router.ReturnDeclaration{Status: http.StatusForbidden, Error: MsgAccessDenied})
	if h.tokens != nil {
		returns = append(returns,
			router.ReturnDeclaration{Status: http.StatusUnauthorized, Error: "Unauthorized"},
			router.ReturnDeclaration{Status: http.StatusUnauthorized, Error: "Token invalid"},
		)
	}
	return params, returns
}

var listErrorCodes = []query.Code{
	query.CodeInvalidFilterSyntax,
	query.CodeUnknownFilterField,
	query.CodeFilterPathCollision,
	query.CodeUnknownFilterOperator,
	query.CodeLikeOperatorTypeMismatch,
	query.CodeFilterTypeMismatch,
	query.CodeInvalidOrderSyntax,
	query.CodeUnknownOrderField,
	query.CodeInvalidOrderDirection,
}

func (h *handler) pathDeclarations() []router.RouteParameter {
	names := h.params.Names()
	params := make([]router.RouteParameter, len(names))
	for i, name := range names {
		params[i] = router.RouteParameter{
			Name:   name,
			Type:   h.resource.Fields[name].Type.String(),
			Source: router.PathParam,
		}
	}
	return params
}

func (h *handler) bodyDeclarations() []router.RouteParameter {
	params := make([]router.RouteParameter, len(h.writable))
	for i, wf := range h.writable {
		params[i] = router.RouteParameter{
			Name:     wf.Field.ExternalName(),
			Type:     wf.Field.Type.String(),
			Optional: wf.Optional,
			Default:  wf.Field.Default,
			Source:   router.BodyParam,
		}
	}
	return params
}

// viewType renders the public view of a record, e.g. {id: id, someNumber: int}
func (h *handler) viewType() string {
	s := "{"
	first := true
	for _, f := range h.resource.OrderedFields() {
		if !f.Public {
			continue
		}
		if !first {
			s += ", "
		}
		first = false
		s += f.ExternalName() + ": " + f.Type.String()
		if f.Optional {
			s += "?"
		}
	}
	return s + "}"
}

func (h *handler) defaultLimit() int {
	if h.opts.DefaultLimit > 0 {
		return h.opts.DefaultLimit
	}
	return query.DefaultLimit
}
