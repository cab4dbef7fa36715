// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the agent. All recording methods
// are nil-safe so components can run without metrics wired.
type Metrics struct {
	// Cycle metrics
	CyclesTotal prometheus.Counter
	CycleErrors *prometheus.CounterVec

	// Monitor metrics
	AccountBalance prometheus.Gauge

	// Yield metrics
	BestPoolScore prometheus.Gauge

	// Bridge metrics
	TransfersTotal      *prometheus.CounterVec
	BridgePhaseDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "treasury_agent"
	}

	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "cycles_total",
			Help:      "Total number of agent cycles started",
		}),
		CycleErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "cycle_errors_total",
			Help:      "Total number of cycle errors by error class",
		}, []string{"class"}),
		AccountBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "account_balance_atomic",
			Help:      "Last observed account balance in atomic units",
		}),
		BestPoolScore: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "yield",
			Name:      "best_pool_score",
			Help:      "Score of the most recently selected pool",
		}),
		TransfersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "transfers_total",
			Help:      "Total number of transfers by final state",
		}, []string{"state"}),
		BridgePhaseDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "phase_duration_seconds",
			Help:      "Duration of bridge protocol phases",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last cycle that completed without error",
		}),
	}
}

// RecordCycle counts a started cycle.
func (m *Metrics) RecordCycle() {
	if m == nil {
		return
	}
	m.CyclesTotal.Inc()
}

// RecordCycleError counts a failed cycle under its error class.
func (m *Metrics) RecordCycleError(class string) {
	if m == nil {
		return
	}
	m.CycleErrors.WithLabelValues(class).Inc()
}

// RecordBalance publishes the last observed balance.
func (m *Metrics) RecordBalance(atomic float64) {
	if m == nil {
		return
	}
	m.AccountBalance.Set(atomic)
}

// RecordBestPool publishes the selected pool's score.
func (m *Metrics) RecordBestPool(score float64) {
	if m == nil {
		return
	}
	m.BestPoolScore.Set(score)
}

// RecordTransfer counts a transfer reaching a final state.
func (m *Metrics) RecordTransfer(state string) {
	if m == nil {
		return
	}
	m.TransfersTotal.WithLabelValues(state).Inc()
}

// ObservePhase records the duration of one bridge leg.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.BridgePhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordCycleSuccess stamps the health gauge.
func (m *Metrics) RecordCycleSuccess() {
	if m == nil {
		return
	}
	m.LastSuccessfulCycle.SetToCurrentTime()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
