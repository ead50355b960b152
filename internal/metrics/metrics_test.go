package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTool(t *testing.T) {
	m := New()
	m.ObserveTool("price", "ok", 10*time.Millisecond)
	m.ObserveTool("price", "ok", 10*time.Millisecond)
	m.ObserveTool("news", "search_error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("price", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("news", "search_error")))
}

func TestObserveRunAndLLM(t *testing.T) {
	m := New()
	m.ObserveRun(nil)
	m.ObserveRun(errors.New("boom"))
	m.ObserveLLM("openai", time.Second, errors.New("rate limited"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMErrors.WithLabelValues("openai")))
	assert.Greater(t, testutil.ToFloat64(m.LastRun), 0.0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTool("price", "ok", time.Second)
		m.ObserveLLM("openai", time.Second, nil)
		m.ObserveRun(nil)
	})
}

func TestServer_Endpoints(t *testing.T) {
	m := New()
	m.ObserveTool("price", "ok", time.Millisecond)
	health := NewHealth()
	srv := NewServer(":0", m, health)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `xaucopilot_tool_invocations_total{status="ok",tool="price"} 1`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	health.RecordRun(time.Now(), errors.New("analyst down"))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "analyst down")
}
