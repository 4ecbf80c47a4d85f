package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/schema/schematest"
	"github.com/conduit-lang/restgen/internal/web/auth"
	"github.com/conduit-lang/restgen/internal/web/query"
	"github.com/conduit-lang/restgen/internal/web/router"
)

func TestAddCRUDUnknownPathParam(t *testing.T) {
	err := AddCRUD(router.NewRouter(), ResourceConfig{
		Prefix:   "/v/1/model/:parentId/submodel",
		Resource: schematest.Submodel(),
		Store:    crud.NewMemoryStore(),
		Routes:   AllRoutes(auth.Anybody),
	})

	var upe *router.UnknownPathParamError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, "parentId", upe.Param)
	assert.Equal(t, "submodel", upe.Resource)
}

func TestAddCRUDRequiresResourceAndStore(t *testing.T) {
	assert.Error(t, AddCRUD(router.NewRouter(), ResourceConfig{Prefix: "/x", Store: crud.NewMemoryStore()}))
	assert.Error(t, AddCRUD(router.NewRouter(), ResourceConfig{Prefix: "/x", Resource: schematest.Model()}))
}

func TestAddCRUDSkipsUnconfiguredRoutes(t *testing.T) {
	r := router.NewRouter()
	require.NoError(t, AddCRUD(r, ResourceConfig{
		Prefix:   "/v/1/model",
		Resource: schematest.Model(),
		Store:    crud.NewMemoryStore(),
		Routes:   Routes{Get: &RouteConfig{Access: auth.Anybody}, Delete: &RouteConfig{Access: auth.Anybody}},
	}))

	routes := r.GetRoutes()
	require.Len(t, routes, 2)
	assert.Equal(t, router.OpList, routes[0].Operation)
	assert.Equal(t, router.OpDelete, routes[1].Operation)
}

func TestAddCRUDLogsRoutes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	require.NoError(t, AddCRUD(router.NewRouter(), ResourceConfig{
		Prefix:   "/v/1/model",
		Resource: schematest.Model(),
		Store:    crud.NewMemoryStore(),
		Routes:   AllRoutes(auth.Anybody),
		Logger:   zap.New(core),
	}))

	entries := logs.FilterMessage("route registered").All()
	require.Len(t, entries, 5)
	fields := entries[0].ContextMap()
	assert.Equal(t, "model", fields["resource"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/v/1/model", fields["pattern"])
}

func TestRouteIntrospection(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name    string
		method  string
		pattern string
		title   string
	}{
		{"model.list", http.MethodGet, "/v/1/model", "Get Model"},
		{"model.getByIds", http.MethodGet, "/v/1/model/:ids", "Get Model by Ids"},
		{"model.create", http.MethodPost, "/v/1/model", "Create Model"},
		{"model.update", http.MethodPut, "/v/1/model/:id", "Alter Model"},
		{"model.delete", http.MethodDelete, "/v/1/model/:ids", "Delete Model"},
		{"submodel.list", http.MethodGet, "/v/1/model/:modelId/submodel", "Get Submodel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := api.router.GetRoute(tt.name)
			require.NoError(t, err)
			info := route.Info()
			assert.Equal(t, tt.method, info.Method)
			assert.Equal(t, tt.pattern, info.Pattern)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.name[:strings.Index(tt.name, ".")], info.ResourceName)
		})
	}
}

func TestRouteTitleOverride(t *testing.T) {
	r := router.NewRouter()
	require.NoError(t, AddCRUD(r, ResourceConfig{
		Prefix:   "/model",
		Resource: schematest.Model(),
		Store:    crud.NewMemoryStore(),
		Routes: Routes{Get: &RouteConfig{
			Access:      auth.Anybody,
			Title:       "All models",
			Description: "Lists every model",
		}},
	}))

	info := r.GetRoutes()[0]
	assert.Equal(t, "All models", info.Title)
	assert.Equal(t, "Lists every model", info.Description)
}

func TestRouteDeclarations(t *testing.T) {
	api := newTestAPI(t)

	route, err := api.router.GetRoute("submodel.update")
	require.NoError(t, err)
	info := route.Info()

	path := info.ParametersFrom(router.PathParam)
	require.Len(t, path, 2)
	assert.Equal(t, "modelId", path[0].Name)
	assert.Equal(t, "id", path[1].Name)

	body := info.ParametersFrom(router.BodyParam)
	require.Len(t, body, 1)
	assert.Equal(t, "opt", body[0].Name)
	assert.True(t, body[0].Optional)

	errs := map[string]int{}
	for _, ret := range info.Returns {
		if ret.Error != "" {
			errs[ret.Error] = ret.Status
		}
	}
	assert.Equal(t, http.StatusNotFound, errs["Submodel not found"])
	assert.Equal(t, http.StatusBadRequest, errs[MsgAlterPathID])
	assert.Equal(t, http.StatusForbidden, errs[MsgAccessDenied])
	assert.Equal(t, http.StatusUnauthorized, errs["Token invalid"])

	route, err = api.router.GetRoute("model.create")
	require.NoError(t, err)
	body = route.Info().ParametersFrom(router.BodyParam)
	require.Len(t, body, 2)
	assert.Equal(t, "optionalVal", body[0].Name)
	assert.Equal(t, "someNumber", body[1].Name)
	assert.False(t, body[1].Optional)

	route, err = api.router.GetRoute("model.list")
	require.NoError(t, err)
	query := route.Info().ParametersFrom(router.QueryParam)
	require.Len(t, query, 4)
	assert.Equal(t, 50, query[0].Default)
}

func TestNameFromPrefix(t *testing.T) {
	assert.Equal(t, "Model", NameFromPrefix("/v/1/model"))
	assert.Equal(t, "Submodel", NameFromPrefix("/v/1/model/:modelId/submodel/"))
	assert.Equal(t, "X", NameFromPrefix("x"))
	assert.Equal(t, "", NameFromPrefix("/"))
}

func TestGenerateMethods(t *testing.T) {
	methods := GenerateMethods(ResourceConfig{Routes: AllRoutes(auth.Anybody)})
	require.Len(t, methods, 5)

	var suffixes []string
	for _, m := range methods {
		suffixes = append(suffixes, m.HTTPMethod+" "+m.Suffix)
		assert.NotNil(t, m.Config)
	}
	assert.Equal(t, []string{"GET ", "GET /:ids", "POST ", "PUT /:id", "DELETE /:ids"}, suffixes)
}

func TestWithoutTokenKey(t *testing.T) {
	var claimsSeen auth.Claims = auth.Claims{"sentinel": true}
	r := router.NewRouter()
	require.NoError(t, AddCRUD(r, ResourceConfig{
		Prefix:   "/model",
		Resource: schematest.Model(),
		Store:    crud.NewMemoryStore(),
		Routes: Routes{Get: &RouteConfig{Access: func(_ context.Context, _ *auth.Request, claims auth.Claims) (bool, error) {
			claimsSeen = claims
			return true, nil
		}}},
	}))

	api := &testAPI{t: t, router: r}
	rec := api.doWithToken(http.MethodGet, "/model", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, claimsSeen)
}

func TestQueryErrorResponses(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := &handler{logger: zap.New(core)}
	req := httptest.NewRequest(http.MethodGet, "/v/1/model", nil)

	rec := httptest.NewRecorder()
	h.queryError(rec, req, fmt.Errorf("compile: %w", &query.Error{Code: query.CodeUnknownOrderField, Field: "x", Message: query.Message(query.CodeUnknownOrderField)}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Order could not be applied to field", errorMessage(t, rec))
	assert.Equal(t, "x", errorDetails(t, rec)["field"])
	assert.Zero(t, logs.Len())

	rec = httptest.NewRecorder()
	h.queryError(rec, req, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["error"])
}
