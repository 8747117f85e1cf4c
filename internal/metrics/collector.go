// Package metrics provides Prometheus metrics for the thiz dev server.
package metrics

import (
	"strconv"

	"github.com/fentz26/thiz/internal/portbind"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds Prometheus metrics for the dev server.
type Collector struct {
	bindAttempts    *prometheus.CounterVec
	boundPort       prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		bindAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thiz_bind_attempts_total",
				Help: "Listener bind attempts by result",
			},
			[]string{"result"},
		),
		boundPort: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "thiz_bound_port",
				Help: "Port the dev server is listening on",
			},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thiz_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "thiz_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.bindAttempts.Describe(ch)
	c.boundPort.Describe(ch)
	c.requestsTotal.Describe(ch)
	c.requestDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.bindAttempts.Collect(ch)
	c.boundPort.Collect(ch)
	c.requestsTotal.Collect(ch)
	c.requestDuration.Collect(ch)
}

// RecordBindAttempt records one attempt made by a portbind.Binder.
func (c *Collector) RecordBindAttempt(a portbind.Attempt) {
	result := "ok"
	switch {
	case a.Err == nil:
	case a.InUse():
		result = "in_use"
	default:
		result = "error"
	}
	c.bindAttempts.WithLabelValues(result).Inc()
}

// SetBoundPort records the port the listener actually bound, which differs
// from the requested one for port 0.
func (c *Collector) SetBoundPort(port int) {
	c.boundPort.Set(float64(port))
}

// RecordRequest records a served HTTP request.
func (c *Collector) RecordRequest(route string, code int, seconds float64) {
	c.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(seconds)
}
