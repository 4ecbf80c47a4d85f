package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/orm/schema/schematest"
)

func serve(t *testing.T, pattern, path string, h http.HandlerFunc) {
	t.Helper()
	r := NewRouter()
	r.Get(pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTypedPathParam(t *testing.T) {
	serve(t, "/m/:id", "/m/42", func(w http.ResponseWriter, req *http.Request) {
		v, err := TypedPathParam(req, "id", schema.Scalar(schema.TypeID))
		require.NoError(t, err)
		assert.Equal(t, int64(42), v)
	})
}

func TestTypedPathParam_Mismatch(t *testing.T) {
	serve(t, "/m/:id", "/m/abc", func(w http.ResponseWriter, req *http.Request) {
		_, err := TypedPathParam(req, "id", schema.Scalar(schema.TypeID))
		var pe *ParamError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "id", pe.Name)
	})
}

func TestPathValues(t *testing.T) {
	sub := schematest.Submodel()
	params, err := PartitionFields("/model/:modelId/submodel", sub)
	require.NoError(t, err)

	serve(t, "/model/:modelId/submodel", "/model/7/submodel", func(w http.ResponseWriter, req *http.Request) {
		values, err := PathValues(req, sub, params)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"modelId": int64(7)}, values)
	})
}
