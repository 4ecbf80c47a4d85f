package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/web/auth"
	webcontext "github.com/conduit-lang/restgen/internal/web/context"
	"github.com/conduit-lang/restgen/internal/web/middleware"
	"github.com/conduit-lang/restgen/internal/web/query"
	"github.com/conduit-lang/restgen/internal/web/response"
	"github.com/conduit-lang/restgen/internal/web/router"
)

// Messages of the generated routes
const (
	MsgAccessDenied      = "You don't have the rights to retrieve this."
	MsgFieldMismatch     = "Fieldmissmatch"
	MsgCreateTooMany     = "Could not create item because your request had too many parameters"
	MsgCreateExists      = "Could not create item because it exists"
	MsgAlterTooMany      = "Could not alter item because your request had too many parameters"
	MsgAlterPathID       = "Could not alter item because it would change a path id"
	MsgDeleteIsReference = "Could not delete as other items reference this item"
)

// maxBodyBytes bounds request bodies of the write routes
const maxBodyBytes = 1 << 20

// handler holds everything the generated routes of one resource share. It is
// built once at registration and only read afterwards.
type handler struct {
	prefix   string
	name     string
	resource *schema.ResourceSchema
	store    crud.Store
	params   router.PathParams
	writable []router.WritableField
	idField  *schema.Field
	opts     Options
	logger   *zap.Logger
	tokens   *auth.TokenService
}

// AddCRUD registers the configured routes of a resource on r. A route
// template naming an unknown field fails with *router.UnknownPathParamError.
func AddCRUD(r *router.Router, cfg ResourceConfig) error {
	h, err := newHandler(cfg)
	if err != nil {
		return err
	}

	for _, m := range GenerateMethods(cfg) {
		if m.Config == nil {
			continue
		}
		route := h.register(r, m)
		h.logger.Debug("route registered",
			zap.String("method", route.Method),
			zap.String("pattern", route.Pattern),
			zap.String("title", route.Info().Title),
		)
	}
	return nil
}

// Method is one generated route before registration
type Method struct {
	HTTPMethod string
	// Suffix is appended to the prefix: "", "/:ids" or "/:id"
	Suffix    string
	Operation router.CRUDOperation
	Config    *RouteConfig
}

// GenerateMethods lists the routes AddCRUD registers for cfg, in registration order
func GenerateMethods(cfg ResourceConfig) []Method {
	return []Method{
		{http.MethodGet, "", router.OpList, cfg.Routes.Get},
		{http.MethodGet, "/:ids", router.OpGetByIDs, cfg.Routes.GetByIDs},
		{http.MethodPost, "", router.OpCreate, cfg.Routes.Post},
		{http.MethodPut, "/:id", router.OpUpdate, cfg.Routes.Put},
		{http.MethodDelete, "/:ids", router.OpDelete, cfg.Routes.Delete},
	}
}

func newHandler(cfg ResourceConfig) (*handler, error) {
	if cfg.Resource == nil {
		return nil, errors.New("resource config has no resource")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("resource %s has no store", cfg.Resource.Name)
	}

	prefix := strings.TrimSuffix(cfg.Prefix, "/")
	params, err := router.PartitionFields(prefix, cfg.Resource)
	if err != nil {
		return nil, err
	}

	h := &handler{
		prefix:   prefix,
		name:     NameFromPrefix(prefix),
		resource: cfg.Resource,
		store:    cfg.Store,
		params:   params,
		writable: router.WritableFields(cfg.Resource, params),
		opts:     cfg.Options,
		logger:   cfg.Logger,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	h.logger = h.logger.With(zap.String("resource", cfg.Resource.Name))
	if cfg.WebTokenKey != "" {
		h.tokens = auth.NewTokenService(cfg.WebTokenKey, 0)
	}

	if needsID(cfg.Routes) {
		h.idField, err = cfg.Resource.IDField()
		if err != nil {
			return nil, err
		}
	}

	return h, nil
}

func needsID(routes Routes) bool {
	return routes.GetByIDs != nil || routes.Put != nil || routes.Delete != nil
}

func (h *handler) register(r *router.Router, m Method) *router.Route {
	var serve http.HandlerFunc
	switch m.Operation {
	case router.OpList:
		serve = h.list(m.Config)
	case router.OpGetByIDs:
		serve = h.getByIDs(m.Config)
	case router.OpCreate:
		serve = h.create(m.Config)
	case router.OpUpdate:
		serve = h.update(m.Config)
	case router.OpDelete:
		serve = h.delete(m.Config)
	}

	var wrapped http.Handler = serve
	if h.tokens != nil {
		wrapped = middleware.JWT(h.tokens)(wrapped)
	}

	var route *router.Route
	pattern := h.prefix + m.Suffix
	switch m.HTTPMethod {
	case http.MethodGet:
		route = r.Get(pattern, wrapped.ServeHTTP)
	case http.MethodPost:
		route = r.Post(pattern, wrapped.ServeHTTP)
	case http.MethodPut:
		route = r.Put(pattern, wrapped.ServeHTTP)
	case http.MethodDelete:
		route = r.Delete(pattern, wrapped.ServeHTTP)
	}

	title := m.Config.Title
	if title == "" {
		title = h.defaultTitle(m.Operation)
	}
	params, returns := h.declare(m.Operation)

	return route.
		Named(h.resource.Name+"."+m.Operation.String()).
		WithResource(h.resource.Name, m.Operation).
		Describe(title, m.Config.Description).
		Declare(params, returns)
}

func (h *handler) defaultTitle(op router.CRUDOperation) string {
	switch op {
	case router.OpList:
		return "Get " + h.name
	case router.OpGetByIDs:
		return "Get " + h.name + " by Ids"
	case router.OpCreate:
		return "Create " + h.name
	case router.OpUpdate:
		return "Alter " + h.name
	case router.OpDelete:
		return "Delete " + h.name
	}
	return ""
}

// NameFromPrefix derives the display name of a resource from its route
// prefix: the last segment with its first letter upper-cased.
func NameFromPrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	name := prefix[strings.LastIndex(prefix, "/")+1:]
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// pathValues extracts the typed values of the prefix path parameters
func (h *handler) pathValues(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	values, err := router.PathValues(r, h.resource, h.params)
	if err != nil {
		h.fieldMismatch(w, err)
		return nil, false
	}
	return values, true
}

// typedParam extracts one extra path parameter such as id or ids
func (h *handler) typedParam(w http.ResponseWriter, r *http.Request, name string, typ *schema.TypeSpec) (interface{}, bool) {
	v, err := router.TypedPathParam(r, name, typ)
	if err != nil {
		h.fieldMismatch(w, err)
		return nil, false
	}
	return v, true
}

// checkAccess runs the access logic of the route and answers 403 on denial
func (h *handler) checkAccess(w http.ResponseWriter, r *http.Request, cfg *RouteConfig, params map[string]interface{}) bool {
	access := cfg.Access
	if access == nil {
		access = auth.Nobody
	}

	ok, err := access(r.Context(), &auth.Request{HTTP: r, Params: params}, auth.GetClaims(r.Context()))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		h.internalError(w, r, "access check failed", err)
		return false
	}
	if !ok {
		response.Forbidden(w, MsgAccessDenied)
		return false
	}
	return true
}

func (h *handler) fieldMismatch(w http.ResponseWriter, err error) {
	var details map[string]interface{}
	var pe *router.ParamError
	var fe *fieldError
	switch {
	case errors.As(err, &pe):
		details = map[string]interface{}{"field": pe.Name}
	case errors.As(err, &fe):
		details = map[string]interface{}{"field": fe.key}
	}
	response.BadRequest(w, MsgFieldMismatch, details)
}

// queryError answers a compiler error with 400. Any other error is a 500.
func (h *handler) queryError(w http.ResponseWriter, r *http.Request, err error) {
	var qe *query.Error
	if !errors.As(err, &qe) {
		h.internalError(w, r, "failed to read list parameters", err)
		return
	}
	response.BadRequest(w, qe.Message, qe.Details())
}

func (h *handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		zap.Error(err),
		zap.String("request_id", webcontext.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	response.InternalServerError(w)
}
