package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/masomo-studio/apps/api/echo"
	"github.com/trezcool/masomo-studio/core"
	"github.com/trezcool/masomo-studio/core/content"
	"github.com/trezcool/masomo-studio/core/explanation"
	"github.com/trezcool/masomo-studio/storage/cache/ristretto"
	"github.com/trezcool/masomo-studio/storage/drafts/inmem"
)

var app *Server

func TestMain(m *testing.M) {
	conf := &core.Config{
		TestMode: true,
		Env:      "TEST",
		Server:   core.ServerConfig{BodyLimit: "64K"},
		Drafts:   core.DraftsConfig{Namespace: "test", TTL: time.Hour},
		Codec:    core.CodecConfig{DefaultFormat: "legacy", MaxPayload: content.DefaultMaxPayload},
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	explanation.InitValidators(validate, translator)

	cache, err := ristrettocache.New(ristrettocache.Config{NumCounters: 1000, MaxCost: 1 << 20})
	if err != nil {
		fmt.Printf("ristrettocache.New(): %v", err)
		os.Exit(1)
	}

	svc, err := explanation.NewService(explanation.Deps{
		Conf:     conf,
		Validate: validate,
		Drafts:   inmemdrafts.New(),
		Cache:    cache,
	})
	if err != nil {
		fmt.Printf("explanation.NewService(): %v", err)
		os.Exit(1)
	}

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         core.NopLogger{},
			ExplanationSvc: svc,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)

	// run tests
	code := m.Run()

	// clean up
	cache.Close()

	os.Exit(code)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodPost
	}
	req, rec := newRequest(method, tt.path, tt.body)
	app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, do(tt))
		})
	}
}

func Test_home(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "Welcome to Masomo Studio API!" {
		t.Errorf("home: code = %v; body = %q", rec.Code, rec.Body.String())
	}
}
