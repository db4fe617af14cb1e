package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the SelectNext HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cosound_recommend_latency_seconds",
		Help:    "Latency of the next-track selection handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of tracks served to playback clients
	RecommendRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cosound_recommend_requests_total",
		Help: "Total number of next-track requests",
	})

	// Recommendation requests that had to ignore presence entirely
	RecommendFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cosound_recommend_fallback_total",
		Help: "Recommendations aggregated over the full population because nobody was checked in",
	})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
		RecommendFallbacks,
	)
}
