// Package metrics provides Prometheus metrics for prediction runs, FIT
// imports and the HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import outcomes
const (
	ImportOK     = "ok"
	ImportFailed = "failed"
)

// Manager owns a registry and the collectors registered on it.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Engine
	evaluations        *prometheus.CounterVec
	signalsFired       *prometheus.CounterVec
	currentVDOT        prometheus.Gauge
	evaluationDuration prometheus.Histogram

	// Import
	imports *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager on a fresh registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "raceready",
		histogramBuckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "engine",
		Name:      "evaluations_total",
		Help:      "Engine evaluations by confidence label",
	}, []string{"confidence"})

	m.signalsFired = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "engine",
		Name:      "signals_fired_total",
		Help:      "Signals produced by each extractor",
	}, []string{"signal"})

	m.currentVDOT = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "engine",
		Name:      "vdot",
		Help:      "Most recently blended VDOT",
	})

	m.evaluationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "engine",
		Name:      "evaluation_duration_seconds",
		Help:      "Time spent in a single engine evaluation",
		Buckets:   m.histogramBuckets,
	})

	m.imports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "import",
		Name:      "files_total",
		Help:      "FIT files imported by outcome",
	}, []string{"status"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// RecordEvaluation records one engine run and the signals it produced.
func (m *Manager) RecordEvaluation(confidence string, vdot float64, signals []string, d time.Duration) {
	m.evaluations.WithLabelValues(confidence).Inc()
	for _, s := range signals {
		m.signalsFired.WithLabelValues(s).Inc()
	}
	m.currentVDOT.Set(vdot)
	m.evaluationDuration.Observe(d.Seconds())
}

// RecordImport counts an imported FIT file by outcome.
func (m *Manager) RecordImport(status string) {
	m.imports.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records a served request.
func (m *Manager) RecordHTTPRequest(route, method, statusCode string, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
