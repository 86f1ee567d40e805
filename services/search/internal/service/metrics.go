package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_rank_duration_seconds",
			Help:    "Time spent ranking the catalog for one query",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	searchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_results",
			Help:    "Number of products returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	searchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Searches by outcome: ranked, fallback, passthrough or empty",
		},
		[]string{"outcome"},
	)
)
