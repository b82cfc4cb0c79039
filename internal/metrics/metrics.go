// Package metrics exposes Prometheus collectors for the block registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/memberguard/block-registry/internal/events"
)

const namespace = "block_registry"

// Operation results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	events          *prometheus.CounterVec
	suppressed      *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Registry operations by name and result.",
		}, []string{"operation", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events published on the observer bus by hook.",
		}, []string{"hook"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_suppressed_total",
			Help:      "Notifications withheld from blocked users by key.",
		}, []string{"key"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocked_set_cache_lookups_total",
			Help:      "Blocked-set cache lookups by outcome.",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.operations,
		m.events,
		m.suppressed,
		m.cacheLookups,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOperation counts one registry operation.
func (m *Metrics) ObserveOperation(operation string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// ObserveCacheLookup counts a blocked-set cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Listener counts bus events. Subscribe it to every hook of interest.
func (m *Metrics) Listener(_ context.Context, event events.Event) error {
	m.events.WithLabelValues(string(event.Hook)).Inc()
	if event.Hook == events.HookBeforeNotificationDispatch && event.Suppressed {
		m.suppressed.WithLabelValues(event.NotificationKey).Inc()
	}
	return nil
}

// Subscribe attaches Listener to every hook on bus.
func (m *Metrics) Subscribe(bus *events.Bus) {
	for _, hook := range []events.Hook{
		events.HookAfterBlock,
		events.HookAfterUnblock,
		events.HookBeforeNotificationDispatch,
	} {
		bus.Subscribe(hook, m.Listener)
	}
}
