package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SourceSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crunchythread_source_searches_total",
			Help: "Community searches issued, labeled by community and outcome.",
		},
		[]string{"community", "outcome"},
	)
	SourceSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crunchythread_source_search_duration_seconds",
			Help:    "Duration of a single community search in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"community"},
	)
	Detections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crunchythread_detections_total",
			Help: "Page detections, labeled by extractor and whether a title was found.",
		},
		[]string{"extractor", "outcome"},
	)
	ThreadSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crunchythread_thread_selections_total",
			Help: "Best-thread lookups, labeled by whether a thread was selected.",
		},
		[]string{"outcome"},
	)
	MappingSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crunchythread_mapping_syncs_total",
			Help: "Community mapping sync runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(SourceSearches)
	prometheus.MustRegister(SourceSearchDuration)
	prometheus.MustRegister(Detections)
	prometheus.MustRegister(ThreadSelections)
	prometheus.MustRegister(MappingSyncs)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
