package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Protocol metrics
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	// Tool metrics
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec

	// Catalog and widget metrics
	CatalogDrivers prometheus.Gauge
	WidgetBundle   prometheus.Gauge
	WidgetRenders  *prometheus.CounterVec

	startTime time.Time
	snapshot  Snapshot
	mu        sync.RWMutex
}

// Snapshot holds current values for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	RPCErrors     int64   `json:"rpc_errors"`
	ToolCalls     int64   `json:"tool_calls"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector backed by its own registry, so
// several servers (and tests) can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driverbook_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driverbook_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driverbook_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		RPCRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driverbook_rpc_requests_total",
				Help: "JSON-RPC requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		RPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driverbook_rpc_duration_seconds",
				Help:    "JSON-RPC dispatch duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"method"},
		),

		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driverbook_tool_calls_total",
				Help: "Tool invocations by tool and status",
			},
			[]string{"tool", "status"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driverbook_tool_duration_seconds",
				Help:    "Tool invocation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"tool"},
		),

		CatalogDrivers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "driverbook_catalog_drivers",
				Help: "Number of driver records loaded",
			},
		),
		WidgetBundle: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "driverbook_widget_bundle_loaded",
				Help: "1 when the widget bundle is available, 0 for text-only mode",
			},
		),
		WidgetRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driverbook_widget_renders_total",
				Help: "Server-side widget renders by state",
			},
			[]string{"state"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "driverbook_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler exposes the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.mu.Unlock()
}

// RecordRPC records one dispatched JSON-RPC request
func (m *Metrics) RecordRPC(method, outcome string, duration time.Duration) {
	m.RPCRequests.WithLabelValues(method, outcome).Inc()
	m.RPCDuration.WithLabelValues(method).Observe(duration.Seconds())

	if outcome != OutcomeOK {
		m.mu.Lock()
		m.snapshot.RPCErrors++
		m.mu.Unlock()
	}
}

// RecordToolCall records one tool invocation
func (m *Metrics) RecordToolCall(tool, status string, duration time.Duration) {
	m.ToolCalls.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.ToolCalls++
	m.mu.Unlock()
}

// SetCatalogDrivers sets the number of loaded driver records
func (m *Metrics) SetCatalogDrivers(count int) {
	m.CatalogDrivers.Set(float64(count))
}

// SetWidgetBundle records whether the widget bundle is available
func (m *Metrics) SetWidgetBundle(loaded bool) {
	if loaded {
		m.WidgetBundle.Set(1)
		return
	}
	m.WidgetBundle.Set(0)
}

// RecordWidgetRender records a server-side widget render
func (m *Metrics) RecordWidgetRender(state string) {
	m.WidgetRenders.WithLabelValues(state).Inc()
}

// Snapshot returns a copy of the current counters
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

// Outcome labels for RecordRPC
const (
	OutcomeOK            = "ok"
	OutcomeMethodMissing = "method_not_found"
	OutcomeInvalidParams = "invalid_params"
	OutcomeInternal      = "internal_error"
)
