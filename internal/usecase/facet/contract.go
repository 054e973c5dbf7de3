package facet

import "github.com/prometheus/client_golang/prometheus"

// DefaultFinalizeKeys are the request keys of the facet paginator. They only
// make sense on a facet listing and are dropped before redirecting to the
// result list.
var DefaultFinalizeKeys = []string{"facet.sort", "facet.page", "facet.prefix"}

// editCounter is the subset of *prometheus.CounterVec used for edit metrics.
type editCounter interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}
