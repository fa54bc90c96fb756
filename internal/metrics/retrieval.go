package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lawdex",
			Name:      "search_requests_total",
			Help:      "Total number of similarity searches",
		},
		[]string{"collection", "status"},
	)

	SearchHitsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lawdex",
			Name:      "search_hits_returned",
			Help:      "Number of hits returned per search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
		[]string{"collection"},
	)

	QuestionTypesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lawdex",
			Name:      "question_types_total",
			Help:      "Question classifications by intent category",
		},
		[]string{"type"},
	)

	MultiQueryFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lawdex",
			Name:      "multi_query_fallbacks_total",
			Help:      "Multi-query retrievals that fell back to single search",
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchHitsReturned)
	prometheus.MustRegister(QuestionTypesTotal)
	prometheus.MustRegister(MultiQueryFallbacksTotal)
	retrievalMetricsRegistered = true
}
