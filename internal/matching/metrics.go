package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_requests_total",
			Help: "Total number of match requests created",
		},
	)

	matchResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_responses_total",
			Help: "Total number of match responses by outcome",
		},
		[]string{"status"},
	)

	matchesExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_expired_total",
			Help: "Total number of matches expired by the sweep",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of computed compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	candidateGenerationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "matching_candidate_generation_seconds",
			Help: "Time spent generating a ranked candidate list",
		},
	)

	candidatesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_candidates_returned",
			Help:    "Number of candidates returned per request",
			Buckets: prometheus.LinearBuckets(0, 1, 6),
		},
	)

	profileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_profile_cache_lookups_total",
			Help: "Signal profile cache lookups by result",
		},
		[]string{"result"},
	)
)

func RecordMatchRequest() {
	matchRequestsTotal.Inc()
}

func RecordMatchResponse(status string) {
	matchResponsesTotal.WithLabelValues(status).Inc()
}

func RecordExpiredMatches(count int) {
	matchesExpiredTotal.Add(float64(count))
}

func RecordCompatibilityScore(score int) {
	compatibilityScores.Observe(float64(score))
}

func ObserveCandidateGeneration(elapsed time.Duration, returned int) {
	candidateGenerationSeconds.Observe(elapsed.Seconds())
	candidatesReturned.Observe(float64(returned))
}

func RecordProfileCacheHit() {
	profileCacheLookups.WithLabelValues("hit").Inc()
}

func RecordProfileCacheMiss() {
	profileCacheLookups.WithLabelValues("miss").Inc()
}
