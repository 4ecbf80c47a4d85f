package ui

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "METHOD", "PATTERN", "TITLE")
	table.StyleColumn(0, MethodColor)
	table.AddRow(http.MethodGet, "/v/1/model", "Get Model")
	table.AddRow(http.MethodDelete, "/v/1/model/:ids")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "METHOD  PATTERN          TITLE", lines[0])
	assert.Equal(t, "──────  ───────────────  ─────────", lines[1])
	assert.Equal(t, "GET     /v/1/model       Get Model", lines[2])
	assert.Equal(t, "DELETE  /v/1/model/:ids  ", lines[3])
	assert.Equal(t, 2, table.Len())
}

func TestTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, true).Render()
	assert.Empty(t, buf.String())
}

func TestMethodColor(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		assert.NotNil(t, MethodColor(m), m)
	}
	assert.Nil(t, MethodColor(http.MethodPatch))
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("name", "model.list")
	kv.AddRow("resource", "model")
	kv.Render()

	assert.Equal(t, "name:     model.list\nresource: model\n", buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Routes", true)
	assert.Equal(t, "Routes\n──────\n", buf.String())
}

func TestMessageFormat(t *testing.T) {
	msg := ResourceNotFound("modl", []string{"model", "submodel", "user"}, true)
	out := msg.Format()

	assert.Contains(t, out, "✗ RESOURCE NOT FOUND: Cannot find resource 'modl'.")
	assert.Contains(t, out, "Did you mean: model?")
	assert.Contains(t, out, "→ See all routes: restgen routes")

	out = ConfigError(errors.New("unsupported database.driver: mongo"), true).Format()
	assert.Contains(t, out, "CONFIGURATION ERROR: unsupported database.driver: mongo")

	warn := Message{Level: LevelWarning, Problem: "no resources configured", NoColor: true}
	var buf bytes.Buffer
	warn.Write(&buf)
	assert.Equal(t, "! no resources configured\n", buf.String())

	assert.Equal(t, "✓ done", Success("done", true))
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"model", "submodel", "multikey", "strangeids"}

	assert.Equal(t, []string{"model"}, FindSimilar("modl", candidates, nil))
	assert.Equal(t, []string{"model", "submodel"}, FindSimilar("MODEL", candidates, &FuzzyOptions{}))
	assert.Empty(t, FindSimilar("MODEL", candidates, &FuzzyOptions{CaseSensitive: true}))
	assert.Len(t, FindSimilar("x", []string{"a", "b", "c", "d"}, &FuzzyOptions{MaxDistance: 1, MaxSuggestions: 2}), 2)
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"über", "uber", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevenshteinDistance(tt.a, tt.b), tt.a+"/"+tt.b)
	}
}
