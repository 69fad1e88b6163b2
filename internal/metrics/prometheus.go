// Package metrics exports request and query-outcome metrics in
// Prometheus format for the gRPC and JSON-RPC transports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "didrpc"

// Transport label values.
const (
	TransportGRPC = "grpc"
	TransportHTTP = "jsonrpc"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	gatherer prometheus.Gatherer

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	reads    *prometheus.CounterVec
}

// NewPrometheusExporter registers the metrics with reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewPrometheusExporter(reg *prometheus.Registry) *PrometheusExporter {
	factory := promauto.With(reg)
	return &PrometheusExporter{
		gatherer: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests by transport and method",
			},
			[]string{"transport", "method"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of requests in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"transport", "method"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of transport-level errors",
			},
			[]string{"transport", "method"},
		),
		reads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attribute_reads_total",
				Help:      "Attribute reads by outcome (present, absent, error)",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequest records a request.
func (e *PrometheusExporter) RecordRequest(transport, method string) {
	e.requests.WithLabelValues(transport, method).Inc()
}

// RecordDuration records a duration.
func (e *PrometheusExporter) RecordDuration(transport, method string, seconds float64) {
	e.duration.WithLabelValues(transport, method).Observe(seconds)
}

// RecordError records a transport-level error.
func (e *PrometheusExporter) RecordError(transport, method string) {
	e.errors.WithLabelValues(transport, method).Inc()
}

// ObserveRead implements server.Observer.
func (e *PrometheusExporter) ObserveRead(outcome string) {
	e.reads.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.gatherer, promhttp.HandlerOpts{})
}
