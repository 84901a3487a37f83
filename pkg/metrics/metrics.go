package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verynews_search_queries_total",
		Help: "Search queries executed, by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	SearchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verynews_search_results_total",
		Help: "Search results collected, by strategy.",
	}, []string{"strategy"})

	ContentFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verynews_content_fetches_total",
		Help: "Content fetches, by outcome (pdf, html, unsupported, http_error, timeout, failed).",
	}, []string{"outcome"})

	ContentFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verynews_content_fetch_duration_seconds",
		Help:    "Wall time of a content fetch including retries.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
	})

	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verynews_llm_calls_total",
		Help: "LLM calls per pipeline step, by outcome (ok, llm_error, parse_error).",
	}, []string{"step", "outcome"})

	Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verynews_verdicts_total",
		Help: "Final verdicts produced by the judge pipeline.",
	}, []string{"result"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
