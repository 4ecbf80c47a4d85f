package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/orm/schema/schematest"
	"github.com/conduit-lang/restgen/internal/web/auth"
	"github.com/conduit-lang/restgen/internal/web/router"
)

const testTokenKey = "rsoaietn0932lyrstenoie3nrst"

// testAPI is a router with the model, submodel, multikey and strangeids
// resources mounted on a shared memory store
type testAPI struct {
	t      *testing.T
	router *router.Router
	store  *crud.MemoryStore
	token  string

	model, submodel, multikey, strange *schema.ResourceSchema
}

func newTestAPI(t *testing.T, opts ...func(*ResourceConfig)) *testAPI {
	t.Helper()

	api := &testAPI{
		t:        t,
		router:   router.NewRouter(),
		model:    schematest.Model(),
		submodel: schematest.Submodel(),
		multikey: schematest.Multikey(),
		strange:  schematest.StrangeIDs(),
		store: crud.NewMemoryStore(crud.Reference{
			ChildResource:  "submodel",
			Field:          "modelId",
			ParentResource: "model",
		}),
	}

	token, err := auth.NewTokenService(testTokenKey, time.Hour).GenerateToken(auth.Claims{"email": "a@b.de"})
	require.NoError(t, err)
	api.token = token

	mounts := []struct {
		prefix   string
		resource *schema.ResourceSchema
	}{
		{"/v/1/model", api.model},
		{"/v/1/model/:modelId/submodel", api.submodel},
		{"/v/1/multimodel", api.multikey},
		{"/v/1/strangemodel", api.strange},
	}
	for _, m := range mounts {
		cfg := ResourceConfig{
			Prefix:      m.prefix,
			Resource:    m.resource,
			Store:       api.store,
			WebTokenKey: testTokenKey,
			Routes:      AllRoutes(auth.Anybody),
		}
		for _, opt := range opts {
			opt(&cfg)
		}
		require.NoError(t, AddCRUD(api.router, cfg))
	}

	return api
}

// insert stores a record directly and returns its id
func (api *testAPI) insert(resource *schema.ResourceSchema, rec crud.Record) interface{} {
	api.t.Helper()
	id, err := api.store.Insert(context.Background(), resource, rec)
	require.NoError(api.t, err)
	return id
}

func (api *testAPI) load(resource *schema.ResourceSchema) []crud.Record {
	api.t.Helper()
	records, err := api.store.Load(context.Background(), resource, nil, crud.Page{}, nil)
	require.NoError(api.t, err)
	return records
}

func (api *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	return api.doWithToken(method, path, body, api.token)
}

func (api *testAPI) doWithToken(method, path, body, token string) *httptest.ResponseRecorder {
	api.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

// ids renders a JSON array path segment
func ids(s string) string {
	return url.PathEscape(s)
}

// q builds a query string
func q(pairs ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return "?" + v.Encode()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) interface{} {
	t.Helper()
	var v interface{}
	dec := json.NewDecoder(rec.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&v), rec.Body.String())
	return v
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var v []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// errorMessage returns error.message of a JSON error body
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string                 `json:"message"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Message
}

func errorDetails(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body struct {
		Error struct {
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Details
}
