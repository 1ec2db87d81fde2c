// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the hub.
type Metrics struct {
	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	RetryAttempts     prometheus.Counter
	AssetsProcessed   *prometheus.CounterVec
	AssetsSkipped     *prometheus.CounterVec

	// Evaluation metrics
	EvaluationsTotal    *prometheus.CounterVec
	EvaluationMAE       prometheus.Gauge
	PredictionsLogged   prometheus.Counter
	PredictionsMatched  prometheus.Counter
	PredictionsMissed   prometheus.Counter

	// Server metrics
	SignupsTotal    prometheus.Counter
	LoginsTotal     *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
	TickerClients   prometheus.Gauge

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fypy_hub"
	}

	return &Metrics{
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by path and status",
		}, []string{"path", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"path"}),
		RetryAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "retry_attempts_total",
			Help:      "Total number of retraining retry attempts",
		}),
		AssetsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "assets_processed_total",
			Help:      "Total number of assets that entered a final table",
		}, []string{"path"}),
		AssetsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "assets_skipped_total",
			Help:      "Total number of assets excluded from a run",
		}, []string{"path"}),

		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "runs_total",
			Help:      "Total number of prediction evaluations by status",
		}, []string{"status"}),
		EvaluationMAE: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "mean_absolute_error",
			Help:      "Mean absolute error of the most recent evaluation",
		}),
		PredictionsLogged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "predictions_logged_total",
			Help:      "Total number of prediction rows appended to the log",
		}),
		PredictionsMatched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "predictions_matched_total",
			Help:      "Total number of stale predictions matched to a fresh price",
		}),
		PredictionsMissed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "predictions_missed_total",
			Help:      "Total number of stale predictions with no fresh price",
		}),

		SignupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "signups_total",
			Help:      "Total number of accounts created",
		}),
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "logins_total",
			Help:      "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "active_sessions",
			Help:      "Current number of live sessions",
		}),
		TickerClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ticker_clients",
			Help:      "Current number of websocket ticker subscribers",
		}),

		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPipelineRun records one pipeline run.
func RecordPipelineRun(path, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(path, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(path).Observe(durationSeconds)
}

// RecordRunOutcome records the per-asset outcome counts of a run.
func RecordRunOutcome(path string, processed, skipped int) {
	DefaultMetrics.AssetsProcessed.WithLabelValues(path).Add(float64(processed))
	DefaultMetrics.AssetsSkipped.WithLabelValues(path).Add(float64(skipped))
}

// RecordEvaluation records one evaluation pass.
func RecordEvaluation(status string, matched, missed int, mae float64) {
	DefaultMetrics.EvaluationsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PredictionsMatched.Add(float64(matched))
	DefaultMetrics.PredictionsMissed.Add(float64(missed))
	if matched > 0 {
		DefaultMetrics.EvaluationMAE.Set(mae)
	}
}

// RecordLogin records a login attempt.
func RecordLogin(outcome string) {
	DefaultMetrics.LoginsTotal.WithLabelValues(outcome).Inc()
}
