// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraisal_evaluations_completed_total",
			Help: "Total number of completed appraisal evaluations by verdict",
		},
		[]string{"verdict"},
	)

	EvaluationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraisal_evaluations_failed_total",
			Help: "Total number of failed appraisal evaluations",
		},
		[]string{"error_code"},
	)

	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "appraisal_evaluation_duration_seconds",
			Help: "Duration of a full appraisal evaluation in seconds",
		},
		[]string{"source"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "appraisal_stage_duration_seconds",
			Help: "Duration of a single pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	EvaluationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appraisal_evaluations_active",
			Help: "Number of evaluations currently in flight",
		},
	)

	ResultCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraisal_result_cache_hits_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appraisal_queue_depth",
			Help: "Number of evaluation requests waiting in the async queue",
		},
	)
)
