package facet

import (
	"context"
	"slices"

	"go.uber.org/zap"

	domfacet "github.com/kailas-cloud/searchstate/internal/domain/facet"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
	"github.com/kailas-cloud/searchstate/internal/logger"
)

// Service adds and removes facet constraints on parameter sets.
// Every operation works on a copy of its input.
type Service struct {
	configs      domfacet.ConfigLookup
	finalizeKeys []string
	edits        editCounter
}

// New creates a facet editor. A nil configs treats every field as
// multi-valued.
func New(configs domfacet.ConfigLookup) *Service {
	if configs == nil {
		configs = domfacet.NewNodeConfig(nil)
	}
	return &Service{
		configs:      configs,
		finalizeKeys: slices.Clone(DefaultFinalizeKeys),
	}
}

// WithFinalizeKeys replaces the keys stripped by AddAndFinalize.
func (s *Service) WithFinalizeKeys(keys []string) *Service {
	if len(keys) > 0 {
		s.finalizeKeys = slices.Clone(keys)
	}
	return s
}

// WithMetrics sets a counter vec with label "op" ("add"/"remove").
func (s *Service) WithMetrics(edits editCounter) *Service {
	s.edits = edits
	return s
}

// Add activates item on field. Pagination is reset; a single-valued field
// has its current values replaced; dependent constraints of a structured
// item are added too.
func (s *Service) Add(ctx context.Context, field string, item domfacet.Item, source *params.Set) *params.Set {
	s.inc("add")
	return s.add(ctx, field, item, source)
}

func (s *Service) add(ctx context.Context, field string, item domfacet.Item, source *params.Set) *params.Set {
	field, value, dependents := domfacet.Resolve(field, item)
	cfg := s.configs.FieldConfig(field)

	p, facets := resetWithFacets(source)
	values := facets.List(field)
	if cfg.Single && len(values) > 0 {
		values = nil
	}
	values = append(values, value)
	facets.Put(field, values)
	p.Put(params.FacetKey, facets)

	logger.FromContext(ctx).Debug("facet added",
		zap.String("field", field),
		zap.String("value", value),
		zap.Bool("single", cfg.Single),
		zap.Int("dependents", len(dependents)),
	)

	for _, dep := range dependents {
		p = s.add(ctx, dep.Field, domfacet.Bare(dep.Value), p)
	}
	return p
}

// AddAndFinalize adds item and drops facet-listing keys so the result can
// be used to redirect to the result list.
func (s *Service) AddAndFinalize(
	ctx context.Context, field string, item domfacet.Item, source *params.Set,
) *params.Set {
	return s.Add(ctx, field, item, source).Delete(s.finalizeKeys...)
}

// Remove deactivates one occurrence of item's value on field. An emptied
// field is dropped, and so is an emptied facet map. Dependent constraints
// are left in place.
func (s *Service) Remove(ctx context.Context, field string, item domfacet.Item, source *params.Set) *params.Set {
	s.inc("remove")
	field, value, _ := domfacet.Resolve(field, item)

	p, facets := resetWithFacets(source)
	values := facets.List(field)
	if i := slices.Index(values, value); i >= 0 {
		values = slices.Delete(values, i, i+1)
	}

	if len(values) == 0 {
		facets.Delete(field)
	} else {
		facets.Put(field, values)
	}
	if facets.Len() == 0 {
		p.Delete(params.FacetKey)
	} else {
		p.Put(params.FacetKey, facets)
	}

	logger.FromContext(ctx).Debug("facet removed",
		zap.String("field", field),
		zap.String("value", value),
		zap.Int("remaining", len(values)),
	)
	return p
}

// resetWithFacets returns a reset copy of source and its own facet map.
func resetWithFacets(source *params.Set) (*params.Set, *params.Set) {
	p := params.Reset(source)
	facets := p.Nested(params.FacetKey)
	if facets == nil {
		facets = params.New()
	}
	return p, facets
}

func (s *Service) inc(op string) {
	if s.edits != nil {
		s.edits.WithLabelValues(op).Inc()
	}
}
