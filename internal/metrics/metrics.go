// Package metrics exposes linkbox counters and gauges for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector on a private registry, so tests and
// several instances in one process do not collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	Operations *prometheus.CounterVec // op, outcome
	Searches   *prometheus.CounterVec // filter
	Links      prometheus.Gauge
	Folders    prometheus.Gauge
	Purged     prometheus.Counter
	Imported   *prometheus.CounterVec // kind
}

// New registers the linkbox collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkbox",
			Name:      "operations_total",
			Help:      "Repository operations by name and outcome.",
		}, []string{"op", "outcome"}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkbox",
			Name:      "searches_total",
			Help:      "Search requests by filter.",
		}, []string{"filter"}),
		Links: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linkbox",
			Name:      "links",
			Help:      "Links in the current index snapshot.",
		}),
		Folders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linkbox",
			Name:      "folders",
			Help:      "Folders in the current index snapshot.",
		}),
		Purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "linkbox",
			Name:      "purged_links_total",
			Help:      "Soft-deleted links removed by the garbage collector.",
		}),
		Imported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkbox",
			Name:      "imported_total",
			Help:      "Entities created by imports.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.Operations, m.Searches, m.Links, m.Folders, m.Purged, m.Imported,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe counts one operation. A nil error is recorded as "ok".
func (m *Metrics) Observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
