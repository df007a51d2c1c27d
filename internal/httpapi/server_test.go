package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/tenonchecker/internal/tenon"
)

// ---- test helpers ----

type fakeChecker struct {
	lastKind string
	lastOpts tenon.Options
	res      tenon.Result
	err      error
}

func (f *fakeChecker) record(kind, target string, opts tenon.Options) (tenon.Result, error) {
	f.lastKind = kind
	f.lastOpts = opts
	if target == "" {
		return tenon.Result{}, tenon.ErrInvalidInput
	}
	if f.err != nil {
		return tenon.Result{}, f.err
	}
	return f.res, nil
}

func (f *fakeChecker) CheckURLWithOptions(_ context.Context, t string, o tenon.Options) (tenon.Result, error) {
	return f.record("url", t, o)
}
func (f *fakeChecker) CheckSrcWithOptions(_ context.Context, t string, o tenon.Options) (tenon.Result, error) {
	return f.record("src", t, o)
}
func (f *fakeChecker) CheckFragmentWithOptions(_ context.Context, t string, o tenon.Options) (tenon.Result, error) {
	return f.record("fragment", t, o)
}
func (f *fakeChecker) AnalyzeWithOptions(_ context.Context, t string, o tenon.Options) (tenon.Result, error) {
	return f.record("auto", t, o)
}

func post(t *testing.T, h http.Handler, path, body string, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	h := NewServer(zap.NewNop(), &fakeChecker{}).Router(nil, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCheckRoutes(t *testing.T) {
	chk := &fakeChecker{res: tenon.Result{"status": float64(200), "resultSet": "success!"}}
	h := NewServer(zap.NewNop(), chk).Router([]string{"pub_test"}, nil)

	for path, kind := range map[string]string{
		"/api/check/":         "auto",
		"/api/check/url":      "url",
		"/api/check/src":      "src",
		"/api/check/fragment": "fragment",
	} {
		rec := post(t, h, path, `{"target":"<p>test</p>","options":{"level":"AA"}}`, "pub_test")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, kind, chk.lastKind, path)
		assert.Equal(t, "AA", chk.lastOpts["level"])
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "success!", body["resultSet"])
	}
}

func TestCheck_NilOptionsBecomeEmpty(t *testing.T) {
	chk := &fakeChecker{res: tenon.Result{"status": float64(200)}}
	h := NewServer(zap.NewNop(), chk).Router(nil, nil)

	rec := post(t, h, "/api/check/url", `{"target":"http://www.example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, chk.lastOpts)
}

func TestCheck_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		body string
		want int
	}{
		{"bad payload", nil, `not json`, http.StatusBadRequest},
		{"empty target", nil, `{"target":""}`, http.StatusBadRequest},
		{"service", &tenon.ServiceError{Status: 999, Message: "a message"}, `{"target":"a.io"}`, http.StatusUnprocessableEntity},
		{"decode", &tenon.DecodeError{Err: errors.New("eof")}, `{"target":"a.io"}`, http.StatusBadGateway},
		{"transport", &tenon.TransportError{Err: &url.Error{Op: "Post", Err: errors.New("refused")}}, `{"target":"a.io"}`, http.StatusBadGateway},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := NewServer(zap.NewNop(), &fakeChecker{err: c.err}).Router(nil, nil)
			rec := post(t, h, "/api/check/", c.body, "")
			assert.Equal(t, c.want, rec.Code)
		})
	}

	h := NewServer(zap.NewNop(), &fakeChecker{err: &tenon.ServiceError{Status: 999, Message: "a message"}}).Router(nil, nil)
	rec := post(t, h, "/api/check/", `{"target":"a.io"}`, "")
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "a message", body["error"])
	assert.Equal(t, float64(999), body["status"])
}

func TestCheck_RequiresKey(t *testing.T) {
	h := NewServer(zap.NewNop(), &fakeChecker{}).Router([]string{"pub_test"}, []string{"https://a.example"})
	rec := post(t, h, "/api/check/url", `{"target":"a.io"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Relay end to end against a fake Tenon service.
func TestCheck_ThroughRealClient(t *testing.T) {
	var gotForm url.Values
	tenonSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"status":200,"resultSet":"success!"}`))
	}))
	defer tenonSrv.Close()

	c, err := tenon.New(tenon.Config{Key: "AN_API_KEY", Endpoint: tenonSrv.URL})
	require.NoError(t, err)
	h := NewServer(zap.NewNop(), c).Router(nil, nil)

	rec := post(t, h, "/api/check", `{"target":"<p>test</p>","options":{"key":"other"}}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", gotForm.Get("fragment"))
	assert.Equal(t, "AN_API_KEY", gotForm.Get("key"))
}
