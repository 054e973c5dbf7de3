package tracking

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/domain/params"
	"github.com/kailas-cloud/searchstate/internal/domain/session"
	"github.com/kailas-cloud/searchstate/internal/logger"
)

// Service builds click-tracking attributes from a search session.
type Service struct {
	trackPath string
}

// New creates a tracker. An empty trackPath uses DefaultTrackPath.
func New(trackPath string) *Service {
	if trackPath == "" {
		trackPath = DefaultTrackPath
	}
	return &Service{trackPath: trackPath}
}

// Attrs returns the tracking attributes for doc at the 1-based counter.
// per_page comes from the request params when given, else from the session.
// An absent doc (nil or with an empty id) yields empty attributes.
func (s *Service) Attrs(
	ctx context.Context, doc Document, rec *session.Record, request *params.Set, counter int,
) Attrs {
	if absent(doc) {
		return Attrs{}
	}

	q := url.Values{}
	if perPage := request.Scalar("per_page"); perPage != "" {
		q.Set("per_page", perPage)
	} else if rec != nil && rec.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(rec.PerPage))
	}
	q.Set("counter", strconv.Itoa(counter))
	if rec != nil && rec.ID != "" {
		q.Set("search_id", rec.ID)
	}

	href := s.path(doc.DocumentID()) + "?" + q.Encode()
	logger.FromContext(ctx).Debug("tracking href", zap.String("href", href))

	return Attrs{ContextHrefAttr: href}
}

// Previous returns the attributes for the document before the current one.
func (s *Service) Previous(ctx context.Context, doc Document, rec *session.Record, request *params.Set) Attrs {
	return s.Attrs(ctx, doc, rec, request, counterOf(rec)-1)
}

// Next returns the attributes for the document after the current one.
func (s *Service) Next(ctx context.Context, doc Document, rec *session.Record, request *params.Set) Attrs {
	return s.Attrs(ctx, doc, rec, request, counterOf(rec)+1)
}

func (s *Service) path(id string) string {
	return strings.ReplaceAll(s.trackPath, "{id}", url.PathEscape(id))
}

func absent(doc Document) bool {
	return doc == nil || doc.DocumentID() == ""
}

func counterOf(rec *session.Record) int {
	if rec == nil {
		return 0
	}
	return rec.Counter
}
