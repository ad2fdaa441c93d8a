// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScanCyclesTotal    prometheus.Counter
	TokensEvaluated    *prometheus.CounterVec
	RejectionsTotal    *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram

	// Trade metrics
	AnomaliesDetected prometheus.Counter
	TradesTotal       *prometheus.CounterVec

	// Blacklist metrics
	BlacklistSize    *prometheus.GaugeVec
	BlacklistUpdates prometheus.Counter

	// Side-effect metrics
	IntentFailures *prometheus.CounterVec

	// Health metrics
	LastScanTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solsniper"
	}

	return &Metrics{
		ScanCyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "cycles_total",
			Help:      "Total number of scan ticks executed",
		}),
		TokensEvaluated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "tokens_evaluated_total",
			Help:      "Total number of token evaluations by outcome",
		}, []string{"outcome"}),
		RejectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vetting",
			Name:      "rejections_total",
			Help:      "Total number of vetting rejections by reason",
		}, []string{"reason"}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "evaluation_duration_seconds",
			Help:      "Per-token evaluation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		AnomaliesDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "anomalies_detected_total",
			Help:      "Total number of accepted tokens with a price anomaly",
		}),
		TradesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "trades_total",
			Help:      "Total number of trade executions by status",
		}, []string{"status"}),
		BlacklistSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "blacklist",
			Name:      "size",
			Help:      "Current number of blacklist entries by kind",
		}, []string{"kind"}),
		BlacklistUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blacklist",
			Name:      "updates_total",
			Help:      "Total number of blacklist updates requested by vetting",
		}),
		IntentFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "intent_failures_total",
			Help:      "Total number of failed side-effect executions by intent",
		}, []string{"intent"}),
		LastScanTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_scan_timestamp",
			Help:      "Unix timestamp of the last completed scan tick",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScanCycle marks one completed scan tick.
func RecordScanCycle() {
	DefaultMetrics.ScanCyclesTotal.Inc()
	DefaultMetrics.LastScanTimestamp.Set(float64(time.Now().Unix()))
}

// RecordEvaluation records one token evaluation and its duration.
func RecordEvaluation(outcome string, seconds float64) {
	DefaultMetrics.TokensEvaluated.WithLabelValues(outcome).Inc()
	DefaultMetrics.EvaluationDuration.Observe(seconds)
}

// RecordRejection increments the rejection counter for a reason.
func RecordRejection(reason string) {
	DefaultMetrics.RejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordAnomaly increments the anomaly counter.
func RecordAnomaly() {
	DefaultMetrics.AnomaliesDetected.Inc()
}

// RecordTrade records a trade execution outcome.
func RecordTrade(status string) {
	DefaultMetrics.TradesTotal.WithLabelValues(status).Inc()
}

// RecordBlacklistUpdate increments the blacklist update counter.
func RecordBlacklistUpdate() {
	DefaultMetrics.BlacklistUpdates.Inc()
}

// UpdateBlacklistSize updates the blacklist size gauges.
func UpdateBlacklistSize(tokens, devs int) {
	DefaultMetrics.BlacklistSize.WithLabelValues("token").Set(float64(tokens))
	DefaultMetrics.BlacklistSize.WithLabelValues("dev").Set(float64(devs))
}

// RecordIntentFailure records a failed side-effect execution.
func RecordIntentFailure(intent string) {
	DefaultMetrics.IntentFailures.WithLabelValues(intent).Inc()
}
