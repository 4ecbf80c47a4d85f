package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_ColonParamsAreRouted(t *testing.T) {
	r := NewRouter()
	r.Get("/v/1/model/:modelId/submodel/:ids", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(GetPathParam(req, "modelId") + "," + GetPathParam(req, "ids")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v/1/model/3/submodel/1,2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3,1,2", rec.Body.String())
}

func TestRouter_Methods(t *testing.T) {
	r := NewRouter()
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) { w.Write([]byte(name)) }
	}
	r.Get("/m", handler("get"))
	r.Post("/m", handler("post"))
	r.Put("/m/:id", handler("put"))
	r.Delete("/m/:ids", handler("delete"))

	tests := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/m", "get"},
		{http.MethodPost, "/m", "post"},
		{http.MethodPut, "/m/1", "put"},
		{http.MethodDelete, "/m/1,2", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRouter_Introspection(t *testing.T) {
	r := NewRouter()
	r.Get("/m/:ids", func(http.ResponseWriter, *http.Request) {}).
		Named("m.getByIds").
		WithResource("m", OpGetByIDs).
		Describe("Get M by Ids", "")

	routes := r.GetRoutes()
	require.Len(t, routes, 1)
	info := routes[0]
	assert.Equal(t, "/m/:ids", info.Pattern)
	assert.Equal(t, http.MethodGet, info.Method)
	assert.Equal(t, "getByIds", info.Operation)
	assert.Equal(t, "Get M by Ids", info.Title)
	require.Len(t, info.Parameters, 1)
	assert.Equal(t, "ids", info.Parameters[0].Name)
	assert.Equal(t, PathParam, info.Parameters[0].Source)

	route, err := r.GetRoute("m.getByIds")
	require.NoError(t, err)
	assert.Same(t, info, route.Info())

	_, err = r.GetRoute("missing")
	assert.Error(t, err)
}

func TestRouter_Declare(t *testing.T) {
	r := NewRouter()
	route := r.Post("/m", func(http.ResponseWriter, *http.Request) {}).Declare(
		[]RouteParameter{{Name: "val", Type: "int", Source: BodyParam}, {Name: "x", Type: "string", Source: QueryParam}},
		[]ReturnDeclaration{{Status: http.StatusOK, Type: "id"}},
	)

	info := route.Info()
	assert.Len(t, info.ParametersFrom(BodyParam), 1)
	assert.Len(t, info.ParametersFrom(QueryParam), 1)
	assert.Empty(t, info.ParametersFrom(PathParam))
	assert.Equal(t, "id", info.Returns[0].Type)
}

func TestRouter_Middleware(t *testing.T) {
	r := NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Test", "1")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
}

func TestChiPattern(t *testing.T) {
	assert.Equal(t, "/v/1/model/{modelId}/sub/{ids}", ChiPattern("/v/1/model/:modelId/sub/:ids"))
	assert.Equal(t, "/a/{b}", ChiPattern("/a/{b}"))
	assert.Equal(t, "/a/:", ChiPattern("/a/:"))
}

func TestPathParamNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, PathParamNames("/x/:a/y/{b}/{c:[0-9]+}"))
	assert.Empty(t, PathParamNames("/x/y"))
}

func TestCRUDOperation_String(t *testing.T) {
	assert.Equal(t, "list", OpList.String())
	assert.Equal(t, "getByIds", OpGetByIDs.String())
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "update", OpUpdate.String())
	assert.Equal(t, "delete", OpDelete.String())
	assert.Equal(t, "unknown", CRUDOperation(99).String())
}
