package searchstate

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
	"github.com/kailas-cloud/searchstate/internal/domain/session"
	"github.com/kailas-cloud/searchstate/internal/logger"
)

// DefaultView is the index view used when none is configured.
const DefaultView = "list"

// Service derives canonical parameter sets across navigation actions.
type Service struct {
	defaultView string
	views       []string
}

// New creates a Service. views lists the accepted view types; when empty,
// any non-empty view is accepted.
func New(defaultView string, views ...string) *Service {
	if defaultView == "" {
		defaultView = DefaultView
	}
	return &Service{defaultView: defaultView, views: slices.Clone(views)}
}

// Derive merges overrides over a source set and sanitizes the result.
//
// With no args the source is current and nothing is merged; with one arg it
// is merged over current; with two the first is the source and the second
// the overrides. Any other count is a usage error. transform, when set, sees
// the merged set before the page rule and sanitization.
//
// If the merged set has a page and its per_page or sort differs from the
// source, page is forced back to 1.
func (s *Service) Derive(
	ctx context.Context, current *params.Set, transform TransformFunc, args ...*params.Set,
) (*params.Set, error) {
	var source, overrides *params.Set
	switch len(args) {
	case 0:
		source = current
	case 1:
		source, overrides = current, args[0]
	case 2:
		source, overrides = args[0], args[1]
	default:
		return nil, domain.NewUsageError("derive",
			fmt.Sprintf("wrong number of arguments (%d for 0..2)", len(args)))
	}

	merged := source.Merge(overrides)
	if transform != nil {
		transform(merged)
	}

	if page, ok := merged.Get("page"); ok && page != nil && orderingChanged(source, merged) {
		logger.FromContext(ctx).Debug("ordering changed, resetting page",
			zap.String("per_page", merged.Scalar("per_page")),
			zap.String("sort", merged.Scalar("sort")),
		)
		merged.Put("page", params.Int(1))
	}

	return params.Sanitize(merged), nil
}

func orderingChanged(source, merged *params.Set) bool {
	for _, k := range []string{"per_page", "sort"} {
		a, _ := source.Get(k)
		b, _ := merged.Get(k)
		if !params.ValuesEqual(a, b) {
			return true
		}
	}
	return false
}

// StartOver returns the minimal set for a fresh search: only the view
// choice, and only when it differs from the default view.
func (s *Service) StartOver(_ context.Context, p *params.Set) *params.Set {
	out := params.New()
	if view := s.ViewType(p); view != s.defaultView {
		out.Put("view", params.Scalar(view))
	}
	return out
}

// ViewType returns the view requested by p, or the default view when p has
// none or names an unknown one.
func (s *Service) ViewType(p *params.Set) string {
	view := p.Scalar("view")
	if view == "" {
		return s.defaultView
	}
	if len(s.views) > 0 && !slices.Contains(s.views, view) {
		return s.defaultView
	}
	return view
}

// QueryLink returns current with the query replaced by q, for links such as
// spelling suggestions. The page and action are dropped.
func (s *Service) QueryLink(_ context.Context, current *params.Set, q string) *params.Set {
	return current.Except("page", "action").Put("q", params.Scalar(q))
}

// BackToResults rebuilds the result-list parameters of a search session so
// that the page containing the current document is shown. A nil record
// yields an empty set.
func (s *Service) BackToResults(ctx context.Context, rec *session.Record, defaultPerPage int) *params.Set {
	if rec == nil {
		return params.New()
	}
	p := rec.QueryParams.Clone()
	if rec.Counter <= 0 {
		return p
	}

	// The stored value is compared, so a session without per_page still
	// pins the default page size in the link.
	page, perPage := rec.ResultsPage(defaultPerPage)
	if rec.PerPage != defaultPerPage {
		p.Put("per_page", params.Int(perPage))
	}
	p.Put("page", params.Int(page))

	logger.FromContext(ctx).Debug("back to results",
		zap.String("search_id", rec.ID),
		zap.Int("counter", rec.Counter),
		zap.Int("page", page),
	)
	return p
}
