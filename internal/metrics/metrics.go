// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hisab"

// Metrics groups every collector the server exports.
type Metrics struct {
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	// LedgerComputations counts calculator runs by view (dashboard, archive, reminder).
	LedgerComputations *prometheus.CounterVec
	LedgerDuration     *prometheus.HistogramVec

	// EventsPublished counts outbound events by type and result.
	EventsPublished *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		LedgerComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_computations_total",
			Help:      "Balance and settlement computations by view.",
		}, []string{"view"}),
		LedgerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_computation_duration_seconds",
			Help:      "Time spent loading a snapshot and computing a view.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"view"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Outbound domain events by type and result.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(m.RPCRequests, m.RPCDuration, m.LedgerComputations, m.LedgerDuration, m.EventsPublished)
	return m
}

// ObserveLedger records one computation of view that started at start.
func (m *Metrics) ObserveLedger(view string, start time.Time) {
	if m == nil {
		return
	}
	m.LedgerComputations.WithLabelValues(view).Inc()
	m.LedgerDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// ObserveEvent records the outcome of publishing one event.
func (m *Metrics) ObserveEvent(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}
