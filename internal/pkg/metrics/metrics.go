package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// LoginAttempts counts login requests by role and result (success, missing_field,
	// invalid_format, not_found, invalid_credentials, error).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolportal",
		Name:      "login_attempts_total",
		Help:      "Login attempts by role and result.",
	}, []string{"role", "result"})

	// LectureUploads counts accepted and rejected recordings.
	LectureUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolportal",
		Name:      "lecture_uploads_total",
		Help:      "Lecture recording uploads by outcome.",
	}, []string{"outcome"})

	// LecturePublished counts draft to published transitions.
	LecturePublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolportal",
		Name:      "lecture_published_total",
		Help:      "Lecture summaries moved from draft to published.",
	})

	// EnrichmentJobs counts background transcription jobs by outcome.
	EnrichmentJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolportal",
		Name:      "enrichment_jobs_total",
		Help:      "Background transcription jobs by outcome.",
	}, []string{"outcome"})

	// EnrichmentDuration observes how long the external transcription took.
	EnrichmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "schoolportal",
		Name:      "enrichment_duration_seconds",
		Help:      "Duration of external transcription runs.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	})
)
