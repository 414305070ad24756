package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/flo/pkg/library"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(&Server{Version: "1.2.3"})

	w := serve(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(t, h, "/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"app":"flo","version":"1.2.3"}`, w.Body.String())

	// Optional routes are absent without their backing.
	assert.Equal(t, http.StatusNotFound, serve(t, h, "/specs").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, h, "/metrics").Code)
}

func TestSpecs(t *testing.T) {
	h := NewHandler(&Server{Catalog: library.Registry()})

	w := serve(t, h, "/specs")
	require.Equal(t, http.StatusOK, w.Code)
	var specs []SpecInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &specs))

	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"capture", "generate", "log", "sleep"}, names)

	w = serve(t, h, "/specs/generate")
	require.Equal(t, http.StatusOK, w.Code)
	var gen SpecInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gen))
	assert.Empty(t, gen.Inputs)
	assert.Equal(t, []PortInfo{{Name: "outflow", Type: "int"}}, gen.Outputs)
	assert.Equal(t, map[string]string{"arg": "int"}, gen.Params)

	assert.Equal(t, http.StatusNotFound, serve(t, h, "/specs/missing").Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "flo_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(3)

	w := serve(t, NewHandler(&Server{Gatherer: reg}), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "flo_test_total 3"))
}

func TestCheckParams(t *testing.T) {
	h := NewHandler(&Server{Catalog: library.Registry()})
	check := func(path, body string) (*httptest.ResponseRecorder, CheckResult) {
		t.Helper()
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		var res CheckResult
		if w.Code == http.StatusOK || w.Code == http.StatusUnprocessableEntity {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		}
		return w, res
	}

	w, res := check("/specs/generate/check", `{"arg": 3}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, res.Valid)

	w, res = check("/specs/generate/check", `{"arg": "three"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{`field "arg": expected int, got string (got string)`}, res.Errors)

	w, res = check("/specs/capture/check", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.ElementsMatch(t, []string{`field "url": required`, `field "key": required`}, res.Errors)

	w, _ = check("/specs/log/check", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = check("/specs/nope/check", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
