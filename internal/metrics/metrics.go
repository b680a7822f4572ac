// Package metrics provides the Prometheus collectors for the proxy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus collectors, registered on their own
// registry so the debug listener serves only what the proxy exports.
type Metrics struct {
	Registry *prometheus.Registry

	// RequestsTotal counts handled requests by outcome: hit, miss,
	// bad_request, dns_error or upstream_error.
	RequestsTotal *prometheus.CounterVec

	// ConnectionsInFlight tracks client connections currently dispatched.
	ConnectionsInFlight prometheus.Gauge

	// UpstreamDuration observes origin fetch latency in seconds.
	UpstreamDuration prometheus.Histogram
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hoard_requests_total",
			Help: "Total handled client requests by outcome.",
		}, []string{"outcome"}),

		ConnectionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hoard_connections_in_flight",
			Help: "Client connections currently being handled.",
		}),

		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hoard_upstream_duration_seconds",
			Help:    "Origin fetch latency in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.ConnectionsInFlight,
		m.UpstreamDuration,
	)

	return m
}
