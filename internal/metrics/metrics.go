package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service instruments on a dedicated Prometheus registry.
type Registry struct {
	reg             *prometheus.Registry
	HTTPRequests    *prometheus.CounterVec
	HTTPDurationSec *prometheus.HistogramVec
	Operations      *prometheus.CounterVec
}

// NewRegistry creates and registers every instrument.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sales_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_operations_total",
		Help: "Sale record operations by outcome.",
	}, []string{"operation", "outcome"})

	r.MustRegister(requests, duration, operations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:             r,
		HTTPRequests:    requests,
		HTTPDurationSec: duration,
		Operations:      operations,
	}
}

// ObserveOperation counts one sale operation. A nil registry is a no-op.
func (r *Registry) ObserveOperation(operation, outcome string) {
	if r == nil {
		return
	}
	r.Operations.WithLabelValues(operation, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
