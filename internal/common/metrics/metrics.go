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

var (
	MatchesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_records_computed_total",
			Help: "Match records computed, by expected outcome",
		},
		[]string{"match_type", "expected_outcome"},
	)

	MatchCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_cache_lookups_total",
			Help: "Match lookups by result (cache_hit, store_hit, miss)",
		},
		[]string{"result"},
	)

	MatchOverallScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_overall_score",
			Help:    "Distribution of computed overall scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	MatchFeedbackSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_feedback_submitted_total",
			Help: "Feedback submissions by side",
		},
		[]string{"side"},
	)

	MatchRecordsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_records_expired_total",
			Help: "Records moved to expired by the sweep",
		},
	)

	MatchHistoryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_history_lookup_failures_total",
			Help: "Historical outcome lookups that failed and were skipped",
		},
	)
)
