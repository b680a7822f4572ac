package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	m := New()

	m.RequestsTotal.WithLabelValues("hit").Inc()
	m.RequestsTotal.WithLabelValues("hit").Inc()
	m.ConnectionsInFlight.Inc()
	m.UpstreamDuration.Observe(0.02)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("hit")); got != 2 {
		t.Errorf("requests_total{outcome=hit} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ConnectionsInFlight); got != 1 {
		t.Errorf("connections_in_flight = %v, want 1", got)
	}

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"hoard_requests_total",
		"hoard_connections_in_flight",
		"hoard_upstream_duration_seconds",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
