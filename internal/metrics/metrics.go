// Package metrics exposes Prometheus instrumentation for tool calls, analyst
// calls and pipeline runs on a dedicated registry.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors of the copilot.
type Metrics struct {
	Registry *prometheus.Registry

	ToolCalls    *prometheus.CounterVec   // labels: tool, status
	ToolDuration *prometheus.HistogramVec // labels: tool
	LLMDuration  *prometheus.HistogramVec // labels: provider
	LLMErrors    *prometheus.CounterVec   // labels: provider
	PipelineRuns *prometheus.CounterVec   // labels: result
	LastRun      prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xaucopilot_tool_invocations_total",
			Help: "Tool invocations by tool and result status",
		}, []string{"tool", "status"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xaucopilot_tool_duration_seconds",
			Help:    "Tool invocation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		LLMDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xaucopilot_llm_duration_seconds",
			Help:    "Analyst completion latency",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
		LLMErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xaucopilot_llm_errors_total",
			Help: "Failed analyst completions",
		}, []string{"provider"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xaucopilot_pipeline_runs_total",
			Help: "Pipeline runs by result (ok, error)",
		}, []string{"result"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xaucopilot_last_run_timestamp_seconds",
			Help: "Unix time of the last finished pipeline run",
		}),
	}

	m.Registry.MustRegister(
		m.ToolCalls,
		m.ToolDuration,
		m.LLMDuration,
		m.LLMErrors,
		m.PipelineRuns,
		m.LastRun,
	)
	return m
}

// ObserveTool records one tool invocation. Safe on a nil receiver.
func (m *Metrics) ObserveTool(tool, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveLLM records one analyst completion. Safe on a nil receiver.
func (m *Metrics) ObserveLLM(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.LLMDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err != nil {
		m.LLMErrors.WithLabelValues(provider).Inc()
	}
}

// ObserveRun records a finished pipeline run. Safe on a nil receiver.
func (m *Metrics) ObserveRun(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PipelineRuns.WithLabelValues(result).Inc()
	m.LastRun.SetToCurrentTime()
}

// Health tracks the outcome of the most recent run for /healthz.
type Health struct {
	mu        sync.RWMutex
	StartedAt time.Time
	LastRun   time.Time
	LastError string
}

// NewHealth returns a health tracker started now.
func NewHealth() *Health {
	return &Health{StartedAt: time.Now()}
}

// RecordRun stores the outcome of a pipeline run.
func (h *Health) RecordRun(at time.Time, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastRun = at
	h.LastError = ""
	if err != nil {
		h.LastError = err.Error()
	}
}

// ServeHTTP handles the /healthz endpoint.
func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.LastError != "" {
		status = "degraded"
	}
	lastRun := ""
	if !h.LastRun.IsZero() {
		lastRun = h.LastRun.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(struct {
		Status    string `json:"status"`
		Uptime    string `json:"uptime"`
		LastRun   string `json:"last_run"`
		LastError string `json:"last_error,omitempty"`
	}{
		Status:    status,
		Uptime:    time.Since(h.StartedAt).Round(time.Second).String(),
		LastRun:   lastRun,
		LastError: h.LastError,
	})
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server for the given registry.
func NewServer(addr string, m *Metrics, health *Health) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] metrics server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
