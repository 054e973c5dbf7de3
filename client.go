// Package searchstate manages faceted-search request state: deriving
// canonical parameter sets, editing facet constraints, and tracking the
// user's position in the last result list.
package searchstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/config"
	"github.com/kailas-cloud/searchstate/internal/db"
	dbRedis "github.com/kailas-cloud/searchstate/internal/db/redis"
	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/facet"
	"github.com/kailas-cloud/searchstate/internal/domain/params"
	"github.com/kailas-cloud/searchstate/internal/logger"
	sessionrepo "github.com/kailas-cloud/searchstate/internal/repository/session"
	facetuc "github.com/kailas-cloud/searchstate/internal/usecase/facet"
	searchstateuc "github.com/kailas-cloud/searchstate/internal/usecase/searchstate"
	trackinguc "github.com/kailas-cloud/searchstate/internal/usecase/tracking"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultSessionTTL       = 24 * time.Hour
	defaultPerPage          = 10
)

// Errors returned by the client. Match with errors.Is.
var (
	ErrUsage           = domain.ErrUsage
	ErrInvalidParams   = domain.ErrInvalidParams
	ErrSessionNotFound = domain.ErrSessionNotFound
	ErrInvalidSession  = domain.ErrInvalidSession
	ErrNoSessionStore  = errors.New("searchstate: session store not configured (use WithRedis)")
)

// Client is the searchstate SDK entry point.
type Client struct {
	store          db.Store
	state          *searchstateuc.Service
	facets         *facetuc.Service
	tracker        *trackinguc.Service
	sessions       *sessionrepo.Store
	fields         *ConfigNode
	defaultPerPage int
	logger         *zap.Logger
}

// New creates a Client. With WithRedis it connects to the session store and
// waits for it to become ready.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
			DB:       cfg.db,
		})
		if err != nil {
			return nil, fmt.Errorf("searchstate: create redis store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("searchstate: session store not ready: %w", err)
		}
		store = s
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	if cfg.trackPath != "" && !strings.Contains(cfg.trackPath, "{id}") {
		return nil, fmt.Errorf("searchstate: track path must contain {id}, got %q", cfg.trackPath)
	}

	fields := cfg.facetFields
	if fields == nil {
		var err error
		if fields, err = config.LoadFacets(cfg.facetsFile); err != nil {
			return nil, fmt.Errorf("searchstate: %w", err)
		}
	}

	var m *clientMetrics
	if cfg.metricsReg != nil {
		var err error
		if m, err = newClientMetrics(cfg.metricsReg); err != nil {
			return nil, err
		}
	}

	facetSvc := facetuc.New(facet.NewNodeConfig(fields))
	if len(cfg.finalizeKeys) > 0 {
		facetSvc = facetSvc.WithFinalizeKeys(cfg.finalizeKeys)
	}
	if m != nil {
		facetSvc = facetSvc.WithMetrics(m.facetEdits)
	}

	perPage := cfg.defaultPerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	c := &Client{
		store:          store,
		state:          searchstateuc.New(cfg.defaultView, cfg.viewTypes...),
		facets:         facetSvc,
		tracker:        trackinguc.New(cfg.trackPath),
		fields:         fields,
		defaultPerPage: perPage,
		logger:         cfg.logger,
	}

	if store != nil {
		ttl := cfg.sessionTTL
		if ttl <= 0 {
			ttl = defaultSessionTTL
		}
		var lookups *prometheus.CounterVec
		if m != nil {
			lookups = m.sessionLookups
		}
		c.sessions = sessionrepo.New(store, cfg.keyPrefix, ttl, lookups)
	}

	return c, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks session store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return ErrNoSessionStore
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Sanitize returns a copy of p without empty values and routing keys.
func (c *Client) Sanitize(p *Params) *Params { return params.Sanitize(p) }

// Reset returns Sanitize(p) without pagination and result-position keys.
func (c *Client) Reset(p *Params) *Params { return params.Reset(p) }

// Derive merges up to two parameter sets over current and returns the
// sanitized result. See DeriveWith.
func (c *Client) Derive(ctx context.Context, current *Params, args ...*Params) (*Params, error) {
	return c.DeriveWith(ctx, current, nil, args...)
}

// DeriveWith is Derive with a transform applied to the merged set before
// pagination is adjusted and the result sanitized. More than two args is an
// ErrUsage error.
func (c *Client) DeriveWith(
	ctx context.Context, current *Params, transform func(*Params), args ...*Params,
) (*Params, error) {
	out, err := c.state.Derive(c.ctx(ctx), current, transform, args...)
	if err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	return out, nil
}

// StartOver returns the parameters of a fresh search, keeping only a
// non-default view choice.
func (c *Client) StartOver(ctx context.Context, p *Params) *Params {
	return c.state.StartOver(c.ctx(ctx), p)
}

// QueryLink returns the parameters of a link that reruns the search with q.
func (c *Client) QueryLink(ctx context.Context, p *Params, q string) *Params {
	return c.state.QueryLink(c.ctx(ctx), p, q)
}

// AddFacet returns p with item activated in field.
func (c *Client) AddFacet(ctx context.Context, field string, item FacetItem, p *Params) *Params {
	return c.facets.Add(c.ctx(ctx), field, item, p)
}

// AddFacetAndFinalize is AddFacet for links leaving a facet paginator.
func (c *Client) AddFacetAndFinalize(ctx context.Context, field string, item FacetItem, p *Params) *Params {
	return c.facets.AddAndFinalize(c.ctx(ctx), field, item, p)
}

// RemoveFacet returns p with one occurrence of item removed from field.
func (c *Client) RemoveFacet(ctx context.Context, field string, item FacetItem, p *Params) *Params {
	return c.facets.Remove(c.ctx(ctx), field, item, p)
}

// FacetFields returns a copy of the facet field configuration.
func (c *Client) FacetFields() *ConfigNode { return c.fields.Clone() }

// SaveSession stores rec, replacing any session with the same id.
func (c *Client) SaveSession(ctx context.Context, rec *Session) error {
	if c.sessions == nil {
		return ErrNoSessionStore
	}
	if err := c.sessions.Save(c.ctx(ctx), rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Session loads the session with the given id.
func (c *Client) Session(ctx context.Context, id string) (*Session, error) {
	if c.sessions == nil {
		return nil, ErrNoSessionStore
	}
	rec, err := c.sessions.Get(c.ctx(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return rec, nil
}

// DeleteSession removes the session with the given id.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if c.sessions == nil {
		return ErrNoSessionStore
	}
	if err := c.sessions.Delete(c.ctx(ctx), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// BackToResults loads a session and returns the parameters of the result
// page holding its current document.
func (c *Client) BackToResults(ctx context.Context, id string) (*Params, error) {
	rec, err := c.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.state.BackToResults(c.ctx(ctx), rec, c.defaultPerPage), nil
}

// TrackingAttrs returns the click-tracking attributes for doc at pos
// relative to the session counter. request may carry per_page.
func (c *Client) TrackingAttrs(
	ctx context.Context, doc Document, rec *Session, request *Params, pos Position,
) TrackingAttrs {
	ctx = c.ctx(ctx)
	switch pos {
	case Previous:
		return c.tracker.Previous(ctx, doc, rec, request)
	case Next:
		return c.tracker.Next(ctx, doc, rec, request)
	}
	counter := 0
	if rec != nil {
		counter = rec.Counter
	}
	return c.tracker.Attrs(ctx, doc, rec, request, counter)
}

func (c *Client) ctx(ctx context.Context) context.Context {
	if c.logger == nil {
		return ctx
	}
	return logger.ContextWithLogger(ctx, c.logger)
}
