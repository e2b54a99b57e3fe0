// Package metrics provides the Prometheus collectors used by the store,
// the HTTP transport and the live view.
//
// All methods are safe to call on a nil *Metrics, so components can hold
// an optional collector without checking for it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "appstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "appstore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	fetchesTotal    *prometheus.CounterVec
	fetchesShared   *prometheus.CounterVec
	pendingFetches  prometheus.Gauge
	writesTotal     *prometheus.CounterVec
	refreshesTotal  *prometheus.CounterVec
	rendersTotal    prometheus.Counter
	renderDuration  prometheus.Histogram
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	liveClients     prometheus.Gauge
	framesSent      prometheus.Counter
}

// New registers the collectors with the configured registry.
// Registering twice against the same registry panics, as with promauto.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		fetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fetches_total",
			Help:        "Total record fetches issued to the server, by model and status",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "status"}),

		fetchesShared: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fetches_deduplicated_total",
			Help:        "Fetch requests satisfied by an already in-flight fetch for the same id",
			ConstLabels: config.ConstLabels,
		}, []string{"model"}),

		pendingFetches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pending_fetches",
			Help:        "Number of record fetches currently in flight",
			ConstLabels: config.ConstLabels,
		}),

		writesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total record writes, by model and status",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "status"}),

		refreshesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "refreshes_total",
			Help:        "Total record refreshes, by model and status",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "status"}),

		rendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total root re-renders pushed to the mounted view",
			ConstLabels: config.ConstLabels,
		}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Root re-render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests sent by the transport, by method and status",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),

		liveClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_clients",
			Help:        "Number of connected live view clients",
			ConstLabels: config.ConstLabels,
		}),

		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Total render frames written to live view clients",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordFetch counts a completed server fetch.
func (m *Metrics) RecordFetch(model string, err error) {
	if m == nil {
		return
	}
	m.fetchesTotal.WithLabelValues(model, status(err)).Inc()
}

// RecordSharedFetch counts a fetch that joined an in-flight request.
func (m *Metrics) RecordSharedFetch(model string) {
	if m == nil {
		return
	}
	m.fetchesShared.WithLabelValues(model).Inc()
}

// FetchStarted increments the in-flight gauge.
func (m *Metrics) FetchStarted() {
	if m == nil {
		return
	}
	m.pendingFetches.Inc()
}

// FetchDone decrements the in-flight gauge.
func (m *Metrics) FetchDone() {
	if m == nil {
		return
	}
	m.pendingFetches.Dec()
}

// RecordWrite counts a record write.
func (m *Metrics) RecordWrite(model string, err error) {
	if m == nil {
		return
	}
	m.writesTotal.WithLabelValues(model, status(err)).Inc()
}

// RecordRefresh counts a record refresh.
func (m *Metrics) RecordRefresh(model string, err error) {
	if m == nil {
		return
	}
	m.refreshesTotal.WithLabelValues(model, status(err)).Inc()
}

// RecordRender counts a root re-render and its duration.
func (m *Metrics) RecordRender(d time.Duration) {
	if m == nil {
		return
	}
	m.rendersTotal.Inc()
	m.renderDuration.Observe(d.Seconds())
}

// RecordRequest counts an HTTP request. code is the response status or
// "error" when no response was received.
func (m *Metrics) RecordRequest(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, code).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ClientConnected increments the live client gauge.
func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.liveClients.Inc()
}

// ClientDisconnected decrements the live client gauge.
func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.liveClients.Dec()
}

// RecordFrame counts a frame written to a live client.
func (m *Metrics) RecordFrame() {
	if m == nil {
		return
	}
	m.framesSent.Inc()
}
