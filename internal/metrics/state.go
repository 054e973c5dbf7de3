package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search-state Prometheus metrics.
var (
	FacetEditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchstate",
			Name:      "facet_edits_total",
			Help:      "Facet constraints added or removed",
		},
		[]string{"op"}, // "add" / "remove"
	)

	SessionLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchstate",
			Name:      "session_lookups_total",
			Help:      "Search session lookups by result",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var stateMetricsRegistered bool

// RegisterStateMetrics registers search-state metrics. Must be called once from main.
func RegisterStateMetrics() {
	if stateMetricsRegistered {
		return
	}
	prometheus.MustRegister(FacetEditsTotal)
	prometheus.MustRegister(SessionLookupsTotal)
	stateMetricsRegistered = true
}
