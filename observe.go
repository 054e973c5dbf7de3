package searchstate

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics holds prometheus metrics registered for the client.
type clientMetrics struct {
	facetEdits     *prometheus.CounterVec
	sessionLookups *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		facetEdits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchstate",
			Subsystem: "sdk",
			Name:      "facet_edits_total",
			Help:      "Facet constraints added or removed through the client.",
		}, []string{"op"}),
		sessionLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchstate",
			Subsystem: "sdk",
			Name:      "session_lookups_total",
			Help:      "Search session lookups by result.",
		}, []string{"result"}),
	}
	if err := registerOrReuse(reg, &m.facetEdits); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.sessionLookups); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("searchstate: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("searchstate: register metric: %w", err)
	}
	return nil
}
