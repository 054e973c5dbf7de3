package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/domain"
	domfacet "github.com/kailas-cloud/searchstate/internal/domain/facet"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
	domsession "github.com/kailas-cloud/searchstate/internal/domain/session"
	facetuc "github.com/kailas-cloud/searchstate/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/searchstate/internal/usecase/health"
	searchstateuc "github.com/kailas-cloud/searchstate/internal/usecase/searchstate"
	trackinguc "github.com/kailas-cloud/searchstate/internal/usecase/tracking"
)

const defaultPerPage = 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// SessionStore persists search session records.
type SessionStore interface {
	Save(ctx context.Context, rec *domsession.Record) error
	Get(ctx context.Context, id string) (*domsession.Record, error)
}

// Server exposes the search-state operations over HTTP.
type Server struct {
	state          *searchstateuc.Service
	facets         *facetuc.Service
	tracker        *trackinguc.Service
	sessions       SessionStore
	facetConfig    *domfacet.NodeConfig
	health         *healthuc.Service
	defaultPerPage int
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	state *searchstateuc.Service,
	facets *facetuc.Service,
	tracker *trackinguc.Service,
	sessions SessionStore,
	facetConfig *domfacet.NodeConfig,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		state:          state,
		facets:         facets,
		tracker:        tracker,
		sessions:       sessions,
		facetConfig:    facetConfig,
		health:         health,
		defaultPerPage: defaultPerPage,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		usageHandler,
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, errorCodeSessionNotFound),
		sentinelHandler(domain.ErrInvalidSession, http.StatusBadRequest, errorCodeInvalidSession),
		sentinelHandler(domain.ErrInvalidParams, http.StatusBadRequest, errorCodeInvalidParams),
	}
	return s
}

// WithDefaultPerPage sets the page size assumed when a session has none.
func (s *Server) WithDefaultPerPage(n int) *Server {
	if n > 0 {
		s.defaultPerPage = n
	}
	return s
}

// Mount registers all routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/params/derive", s.DeriveParams)
		r.Post("/params/reset", s.ResetParams)
		r.Post("/params/start-over", s.StartOver)
		r.Post("/params/query-link", s.QueryLink)

		r.Post("/facets/add", s.AddFacet)
		r.Post("/facets/remove", s.RemoveFacet)
		r.Get("/facet-config", s.FacetConfig)

		r.Put("/sessions/{id}", s.PutSession)
		r.Get("/sessions/{id}", s.GetSession)
		r.Get("/sessions/{id}/back", s.BackToResults)
		r.Get("/sessions/{id}/tracking", s.SessionTracking)
	})
}

// DeriveParams handles POST /v1/params/derive.
func (s *Server) DeriveParams(w http.ResponseWriter, r *http.Request) {
	var req DeriveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	current, err := req.Current.resolve()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if req.SanitizeOnly {
		writeJSON(w, http.StatusOK, paramsResponse(params.Sanitize(current)))
		return
	}

	args := make([]*params.Set, len(req.Args))
	for i, a := range req.Args {
		if args[i], err = a.resolve(); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	out, err := s.state.Derive(r.Context(), current, nil, args...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paramsResponse(out))
}

// ResetParams handles POST /v1/params/reset.
func (s *Server) ResetParams(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, paramsResponse(params.Reset(p)))
}

// StartOver handles POST /v1/params/start-over.
func (s *Server) StartOver(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, paramsResponse(s.state.StartOver(r.Context(), p)))
}

// QueryLink handles POST /v1/params/query-link.
func (s *Server) QueryLink(w http.ResponseWriter, r *http.Request) {
	var req QueryLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := req.resolve()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paramsResponse(s.state.QueryLink(r.Context(), p, req.Q)))
}

// AddFacet handles POST /v1/facets/add.
func (s *Server) AddFacet(w http.ResponseWriter, r *http.Request) {
	req, p, item, ok := s.decodeFacetRequest(w, r)
	if !ok {
		return
	}

	var out *params.Set
	if req.Finalize {
		out = s.facets.AddAndFinalize(r.Context(), req.Field, item, p)
	} else {
		out = s.facets.Add(r.Context(), req.Field, item, p)
	}
	writeJSON(w, http.StatusOK, paramsResponse(out))
}

// RemoveFacet handles POST /v1/facets/remove.
func (s *Server) RemoveFacet(w http.ResponseWriter, r *http.Request) {
	req, p, item, ok := s.decodeFacetRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, paramsResponse(s.facets.Remove(r.Context(), req.Field, item, p)))
}

// FacetConfig handles GET /v1/facet-config.
func (s *Server) FacetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"facet_fields": s.facetConfig.Fields(),
	})
}

// PutSession handles PUT /v1/sessions/{id}.
func (s *Server) PutSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rec domsession.Record
	if !decodeBody(w, r, &rec) {
		return
	}
	if rec.ID != "" && rec.ID != id {
		writeError(w, http.StatusBadRequest, errorCodeInvalidSession,
			fmt.Sprintf("body id %q does not match path id %q", rec.ID, id))
		return
	}
	rec.ID = id

	if err := s.sessions.Save(r.Context(), &rec); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &rec)
}

// GetSession handles GET /v1/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// BackToResults handles GET /v1/sessions/{id}/back.
func (s *Server) BackToResults(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paramsResponse(s.state.BackToResults(r.Context(), rec, s.defaultPerPage)))
}

// SessionTracking handles GET /v1/sessions/{id}/tracking.
func (s *Server) SessionTracking(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		document *string
		counter  *int
		perPage  *int
		position *string
	)
	if err := runtime.BindQueryParameter("form", true, false, "document", query, &document); err != nil {
		writeError(w, http.StatusBadRequest, errorCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "counter", query, &counter); err != nil {
		writeError(w, http.StatusBadRequest, errorCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "per_page", query, &perPage); err != nil {
		writeError(w, http.StatusBadRequest, errorCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "position", query, &position); err != nil {
		writeError(w, http.StatusBadRequest, errorCodeBadRequest, err.Error())
		return
	}

	rec, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if counter != nil {
		override := *rec
		override.Counter = *counter
		rec = &override
	}

	request := params.New()
	if perPage != nil {
		request.Put("per_page", params.Int(*perPage))
	}

	// A missing neighbor at a list boundary has no document.
	var doc trackinguc.Document
	docID := ""
	if document != nil && *document != "" {
		docID = *document
		doc = trackinguc.DocumentID(docID)
	}
	pos := "current"
	if position != nil && *position != "" {
		pos = *position
	}

	var attrs trackinguc.Attrs
	switch pos {
	case "current":
		attrs = s.tracker.Attrs(r.Context(), doc, rec, request, rec.Counter)
	case "previous":
		attrs = s.tracker.Previous(r.Context(), doc, rec, request)
	case "next":
		attrs = s.tracker.Next(r.Context(), doc, rec, request)
	default:
		writeError(w, http.StatusBadRequest, errorCodeBadRequest,
			"position must be one of current, previous, next")
		return
	}

	writeJSON(w, http.StatusOK, TrackingResponse{
		Document: docID,
		Position: pos,
		Attrs:    attrs,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decodeParams(w http.ResponseWriter, r *http.Request) (*params.Set, bool) {
	var in ParamsInput
	if !decodeBody(w, r, &in) {
		return nil, false
	}
	p, err := in.resolve()
	if err != nil {
		s.handleDomainError(w, err)
		return nil, false
	}
	return p, true
}

func (s *Server) decodeFacetRequest(
	w http.ResponseWriter, r *http.Request,
) (FacetRequest, *params.Set, domfacet.Item, bool) {
	var req FacetRequest
	if !decodeBody(w, r, &req) {
		return req, nil, nil, false
	}

	item, err := req.Item.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return req, nil, nil, false
	}
	if req.Field == "" && req.Item.Field == "" {
		writeError(w, http.StatusBadRequest, errorCodeInvalidParams, "field is required")
		return req, nil, nil, false
	}

	p, err := req.resolve()
	if err != nil {
		s.handleDomainError(w, err)
		return req, nil, nil, false
	}
	return req, p, item, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUsage,
		domain.ErrInvalidParams,
		domain.ErrSessionNotFound,
		domain.ErrInvalidSession,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// usageHandler handles ErrUsage, exposing the offending operation and reason.
func usageHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrUsage) {
		return false
	}
	var ue *domain.UsageError
	if errors.As(err, &ue) {
		msg = ue.Error()
	}
	writeError(w, http.StatusBadRequest, errorCodeUsage, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, errorCodeInternal, "internal error")
}
