// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_actions_detected_total",
			Help: "Total number of actions detected, by action type and classification stage",
		},
		[]string{"action_type", "stage"},
	)

	ClassifierEscalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_classifier_escalations_total",
			Help: "Escalations to the remote classifier, by outcome",
		},
		[]string{"outcome"},
	)

	ExecutionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_executions_total",
			Help: "Total executor invocations, by action type and result",
		},
		[]string{"action_type", "result"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
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
)
