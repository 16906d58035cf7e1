// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Intent pipeline
var (
	DirectivesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_directives_dropped_total",
			Help: "Function-call directives rejected by argument validation",
		},
		[]string{"intent"},
	)

	FallbackUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_fallback_total",
			Help: "Transcripts routed through the fallback classifier, by outcome",
		},
		[]string{"outcome"},
	)

	NutritionLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrition_lookups_total",
			Help: "Nutrition cascade resolutions by source",
		},
		[]string{"source"},
	)

	ActionResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_action_results_total",
			Help: "Executed actions by intent and outcome",
		},
		[]string{"intent", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intent_llm_request_duration_seconds",
			Help:    "Latency of language model calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
		[]string{"purpose"},
	)
)
