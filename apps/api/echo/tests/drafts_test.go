package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/masomo-studio/apps/api/echo"
	"github.com/trezcool/masomo-studio/core/content"
)

func Test_draftsApi(t *testing.T) {
	// create
	rec := do(httpTest{path: "/v1/drafts"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Key)
	assert.Equal(t, content.KindCode, created.Draft.Kind)

	path := "/v1/drafts/" + created.Key

	// update
	body := marchallObj(t, obj{
		"title":  "Closures",
		"blocks": []obj{{"code": "const add = a => b => a + b", "explanation": "curried"}},
	})
	rec = do(httpTest{method: http.MethodPut, path: path, body: body})
	require.Equal(t, http.StatusOK, rec.Code)

	// retrieve
	rec = do(httpTest{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusOK, rec.Code)

	var got DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.Key, got.Key)
	assert.Equal(t, "Closures", got.Draft.Title)
	assert.Equal(t, []content.Block{{ID: 0, Code: "const add = a => b => a + b", Explanation: "curried"}}, got.Draft.Blocks)

	// destroy
	rec = do(httpTest{method: http.MethodDelete, path: path})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	runHTTPTests(t, []httpTest{
		{
			name: "gone", method: http.MethodGet, path: path,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "bad key", method: http.MethodGet, path: "/v1/drafts/bad%20key",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, obj{"key": "only alphanumeric characters, dashes, underscores, dots and colons are allowed"}),
		},
		{
			name: "bad kind", method: http.MethodPut, path: "/v1/drafts/k1", body: marchallObj(t, obj{"kind": "video"}),
			wantCode: http.StatusBadRequest,
		},
	})
}
