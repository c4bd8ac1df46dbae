package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/masomo-studio/core/content"
)

func Test_itemsApi_resolve(t *testing.T) {
	path := "/v1/items/resolve"

	tests := []httpTest{
		{
			name: "math", path: path,
			body:     []byte(`{"title":"Pythagoras","equation":"a^2 + b^2 = c^2","explanation":"right triangles"}`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, content.MathItem{Title: "Pythagoras", Equation: "a^2 + b^2 = c^2", Explanation: "right triangles"}),
		},
		{
			name: "code", path: path,
			body:     []byte(`{"title":"Imports","equation":null,"code":"import os","explanation":"os module"}`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, content.CodeItem{Title: "Imports", Blocks: []content.Block{
				{ID: 0, Code: "import os", Explanation: "os module", Language: content.LangPython},
			}}),
		},
		{
			name: "code without columns", path: path, body: []byte(`{"title":"Empty"}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"kind":"code","title":"Empty","blocks":[]}`),
		},
		{name: "not an object", path: path, body: []byte(`[]`), wantCode: http.StatusBadRequest},
		{name: "non-string code", path: path, body: []byte(`{"code":1}`), wantCode: http.StatusBadRequest},
	}
	runHTTPTests(t, tests)
}
