// Package metrics exports SDK activity as Prometheus metrics.
//
// Collector implements tapsdk.Observer; pass it with tapsdk.WithObserver
// and serve Handler on the metrics address.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/sys"
)

const defaultNamespace = "tapsdk"

// Collector counts dispatched and dropped events, poll batch sizes and
// request outcomes on a private registry.
type Collector struct {
	registry *prometheus.Registry

	dispatched *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	polls      prometheus.Counter
	batchSize  prometheus.Histogram
	requests   *prometheus.CounterVec
}

var _ tapsdk.Observer = (*Collector)(nil)

// NewCollector creates a collector. An empty namespace means "tapsdk".
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = defaultNamespace
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.dispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Events queued by the native callback, by category.",
		},
		[]string{"event"},
	)
	c.dropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events that arrived after shutdown, by category.",
		},
		[]string{"event"},
	)
	c.polls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "calls_total",
			Help:      "Number of Poll calls.",
		},
	)
	c.batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "batch_size",
			Help:      "Events drained per Poll.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
	)
	c.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "total",
			Help:      "Authorize and cloud-save requests, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	c.registry.MustRegister(
		c.dispatched,
		c.dropped,
		c.polls,
		c.batchSize,
		c.requests,
		prometheus.NewGoCollector(),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// EventDispatched counts an event queued for delivery, by category.
func (c *Collector) EventDispatched(id sys.EventID) {
	c.dispatched.WithLabelValues(id.String()).Inc()
}

// EventDropped counts an event that arrived after Close, by category.
func (c *Collector) EventDropped(id sys.EventID) {
	c.dropped.WithLabelValues(id.String()).Inc()
}

// Polled counts a poll and records how many events it returned.
func (c *Collector) Polled(n int) {
	c.polls.Inc()
	c.batchSize.Observe(float64(n))
}

// Requested counts a cloud-save request by operation and outcome.
func (c *Collector) Requested(op string, err error) {
	c.requests.WithLabelValues(op, outcome(err)).Inc()
}

// outcome is "ok" or the wrapper error code, "error" for anything else.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := tapsdk.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
