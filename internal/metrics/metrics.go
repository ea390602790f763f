// Package metrics exposes Prometheus instrumentation for the agent.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the agent's Prometheus metrics on a private registry so
// multiple instances can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	applicationsCompleted prometheus.Counter
	applicationsFailed    prometheus.Counter
	itemsSkipped          prometheus.Counter
	riskDenials           prometheus.Counter
	riskReputation        prometheus.Gauge
}

// NewCollector creates and registers the agent's metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		applicationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autojob_applications_completed_total",
			Help: "Total number of applications that reached COMPLETED",
		}),
		applicationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autojob_applications_failed_total",
			Help: "Total number of applications that ended FAILED",
		}),
		itemsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autojob_items_skipped_total",
			Help: "Total number of bulk items skipped below the match threshold",
		}),
		riskDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autojob_risk_denials_total",
			Help: "Total number of apply actions denied by the risk shield",
		}),
		riskReputation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autojob_risk_ip_reputation",
			Help: "Current IP reputation score (0-100)",
		}),
	}

	c.registry.MustRegister(
		c.applicationsCompleted,
		c.applicationsFailed,
		c.itemsSkipped,
		c.riskDenials,
		c.riskReputation,
	)
	c.riskReputation.Set(100)
	return c
}

func (c *Collector) RecordCompleted() { c.applicationsCompleted.Inc() }
func (c *Collector) RecordFailed()    { c.applicationsFailed.Inc() }
func (c *Collector) RecordSkipped()   { c.itemsSkipped.Inc() }
func (c *Collector) RecordDenial()    { c.riskDenials.Inc() }

// SetReputation updates the IP reputation gauge.
func (c *Collector) SetReputation(reputation int) {
	c.riskReputation.Set(float64(reputation))
}

// Handler serves this collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
