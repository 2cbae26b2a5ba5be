package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	completionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_notes_completion_requests_total",
			Help: "Total number of completion requests by provider, model and outcome.",
		},
		[]string{"provider", "model", "status"},
	)
	completionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "study_notes_completion_duration_seconds",
			Help:    "Histogram of completion request durations.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s .. ~2m
		},
		[]string{"provider", "model"},
	)
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_notes_pipeline_runs_total",
			Help: "Total number of generation pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)
	flashcardsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "study_notes_flashcards_created_total",
			Help: "Total number of flashcards persisted.",
		},
	)
)

// outcomeLabel turns a completion/pipeline error into a metric label.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	switch err = kindOf(err); {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrPaymentRequired):
		return "payment_required"
	case errors.Is(err, ErrPersistenceFailed):
		return "persistence_failed"
	default:
		return "generation_failed"
	}
}
