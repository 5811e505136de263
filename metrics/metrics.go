// Package metrics exposes Prometheus counters for remote writes, completion
// calls and HTTP traffic. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the application metrics and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Mutations        *prometheus.CounterVec
	PendingMutations prometheus.Gauge

	Completions        *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sync",
				Name:      "mutations_total",
				Help:      "Remote store writes by kind and final status",
			},
			[]string{"kind", "status"},
		),
		PendingMutations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "sync",
				Name:      "pending_mutations",
				Help:      "Remote store writes queued or in flight",
			},
		),
		Completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "completion",
				Name:      "requests_total",
				Help:      "Completion service calls by outcome",
			},
			[]string{"outcome"},
		),
		CompletionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "completion",
				Name:      "duration_seconds",
				Help:      "Completion service call latency",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Mutations,
		c.PendingMutations,
		c.Completions,
		c.CompletionDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) MutationQueued() {
	if c == nil {
		return
	}
	c.PendingMutations.Inc()
}

func (c *Collector) MutationDone(kind, status string) {
	if c == nil {
		return
	}
	c.PendingMutations.Dec()
	c.Mutations.WithLabelValues(kind, status).Inc()
}

func (c *Collector) CompletionDone(outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.Completions.WithLabelValues(outcome).Inc()
	c.CompletionDuration.Observe(took.Seconds())
}

func (c *Collector) HTTPDone(method string, status int, took time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method).Observe(took.Seconds())
}
