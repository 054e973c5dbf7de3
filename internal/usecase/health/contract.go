package health

import "context"

// DBPinger checks session store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// FacetConfigChecker checks that facet field configuration is usable.
type FacetConfigChecker interface {
	HealthCheck(ctx context.Context) error
}
