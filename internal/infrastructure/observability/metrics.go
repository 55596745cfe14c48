package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts requests by route, method and status
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recapp_http_requests_total",
		Help: "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// httpRequestDuration tracks request latency
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recapp_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	friendRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recapp_friend_request_transitions_total",
		Help: "Friend request state transitions by resulting status",
	}, []string{"status"})

	matchComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recapp_match_compute_duration_seconds",
		Help:    "Time spent gathering, scoring and ranking matches",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	matchCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recapp_match_candidates",
		Help:    "Number of candidates scored per match computation",
		Buckets: prometheus.ExponentialBuckets(1, 4, 6),
	})

	matchCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recapp_match_cache_results_total",
		Help: "Match cache lookups by result",
	}, []string{"result"}) // "hit", "miss" or "error"
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(route, method, status string, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(route, method, status).Inc()
	httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordFriendRequestTransition counts a request entering status.
func RecordFriendRequestTransition(status string) {
	friendRequestTransitions.WithLabelValues(status).Inc()
}

// ObserveMatchComputation records one uncached match computation.
func ObserveMatchComputation(candidates int, elapsed time.Duration) {
	matchCandidates.Observe(float64(candidates))
	matchComputeDuration.Observe(elapsed.Seconds())
}

func RecordMatchCacheResult(result string) {
	matchCacheResults.WithLabelValues(result).Inc()
}
