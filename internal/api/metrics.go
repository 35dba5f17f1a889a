package api

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Stats is a point-in-time copy of the client's call counters.
type Stats struct {
	Total     int64
	Succeeded int64
	Failed    int64
	Retried   int64
	Latency   time.Duration // cumulative, retries and backoff included
}

type metrics struct {
	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
	latency   atomic.Int64

	calls    *prometheus.CounterVec
	retries  prometheus.Counter
	duration *prometheus.HistogramVec
	breaker  prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &metrics{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hireboard",
			Subsystem: "api",
			Name:      "calls_total",
			Help:      "Remote calls by method and outcome.",
		}, []string{"method", "outcome"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hireboard",
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Retry attempts after a retryable failure.",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hireboard",
			Subsystem: "api",
			Name:      "call_duration_seconds",
			Help:      "Wall time of remote calls including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		}, []string{"method"}),
		breaker: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hireboard",
			Subsystem: "api",
			Name:      "circuit_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}),
	}
}

func (m *metrics) retry() {
	m.retried.Add(1)
	m.retries.Inc()
}

func (m *metrics) observe(method string, err error, elapsed time.Duration) {
	m.total.Add(1)
	m.latency.Add(int64(elapsed))
	if err == nil {
		m.succeeded.Add(1)
	} else {
		m.failed.Add(1)
	}
	m.calls.WithLabelValues(method, outcome(err)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *metrics) breakerState(s gobreaker.State) {
	switch s {
	case gobreaker.StateClosed:
		m.breaker.Set(0)
	case gobreaker.StateHalfOpen:
		m.breaker.Set(1)
	case gobreaker.StateOpen:
		m.breaker.Set(2)
	}
}

func (m *metrics) stats() Stats {
	return Stats{
		Total:     m.total.Load(),
		Succeeded: m.succeeded.Load(),
		Failed:    m.failed.Load(),
		Retried:   m.retried.Load(),
		Latency:   time.Duration(m.latency.Load()),
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case isAborted(err):
		return "aborted"
	case isCircuitOpen(err):
		return "circuit_open"
	case IsRetryable(err):
		return "exhausted"
	default:
		return "terminal"
	}
}
