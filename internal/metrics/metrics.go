// Package metrics exposes engine counters to Prometheus.
//
// Every Metrics value owns its own registry, so several engines can live in
// one process (tests do this all the time).
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/executor"
)

const namespace = "graphua"

// BusStats is the part of the event bus the collectors read.
type BusStats interface {
	Stats() eventbus.Stats
}

// PoolStats is the part of the worker pool the collectors read.
type PoolStats interface {
	Stats() executor.Stats
}

// NodeCounter reports the number of live nodes.
type NodeCounter interface {
	Len(ctx context.Context) int
}

// Metrics holds the collectors of one engine.
type Metrics struct {
	registry *prometheus.Registry

	Requests *prometheus.CounterVec
	Sessions prometheus.Gauge
}

// New registers the collectors. Any source may be nil, in which case its
// collectors are left out.
func New(nodes NodeCounter, bus BusStats, pool PoolStats) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Session requests served, by operation and status.",
		}, []string{"operation", "status"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_open",
			Help:      "Remote sessions currently open.",
		}),
	}
	m.registry.MustRegister(m.Requests, m.Sessions)

	if nodes != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes in the address space.",
		}, func() float64 { return float64(nodes.Len(context.Background())) }))
	}
	if bus != nil {
		m.registerBus(bus)
	}
	if pool != nil {
		m.registerPool(pool)
	}
	return m
}

func (m *Metrics) registerBus(bus BusStats) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Events accepted by the bus.",
		}, func() float64 { return float64(bus.Stats().Published) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped because the queue was full.",
		}, func() float64 { return float64(bus.Stats().Dropped) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "delivered_total",
			Help:      "Events handed to subscribers.",
		}, func() float64 { return float64(bus.Stats().Delivered) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "queued",
			Help:      "Events waiting in the bus queue.",
		}, func() float64 { return float64(bus.Stats().Queued) }),
	)
}

func (m *Metrics) registerPool(pool PoolStats) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "workers",
			Help:      "Size of the request worker pool.",
		}, func() float64 { return float64(pool.Stats().Workers) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "queued",
			Help:      "Requests waiting for a worker.",
		}, func() float64 { return float64(pool.Stats().Queued) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "running",
			Help:      "Requests currently running.",
		}, func() float64 { return float64(pool.Stats().Running) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "completed_total",
			Help:      "Requests completed.",
		}, func() float64 { return float64(pool.Stats().Completed) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "rejected_total",
			Help:      "Requests rejected because the queue was full.",
		}, func() float64 { return float64(pool.Stats().Rejected) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "panics_total",
			Help:      "Requests that panicked.",
		}, func() float64 { return float64(pool.Stats().Panics) }),
	)
}

// ObserveRequest counts one served request.
func (m *Metrics) ObserveRequest(operation, status string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(operation, status).Inc()
}

// SessionOpened and SessionClosed track the open session gauge.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.Sessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.Sessions.Dec()
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
