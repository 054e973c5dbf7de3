package searchstate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string
	db       int

	sessionTTL time.Duration
	keyPrefix  string

	defaultView    string
	viewTypes      []string
	defaultPerPage int
	trackPath      string
	finalizeKeys   []string

	facetsFile  string
	facetFields *ConfigNode

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores search sessions in a Redis or Valkey instance.
// Without it, session operations return ErrNoSessionStore.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithDB selects the logical database used for sessions.
func WithDB(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = n
	})
}

// WithSessionTTL sets how long an unread session survives. Default: 24h.
func WithSessionTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.sessionTTL = ttl
	})
}

// WithKeyPrefix sets the prefix of session keys. Default: "searchstate:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithViews sets the default view and the accepted view types.
func WithViews(defaultView string, views ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultView = defaultView
		c.viewTypes = views
	})
}

// WithDefaultPerPage sets the page size assumed when a session has none.
// Default: 10.
func WithDefaultPerPage(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPerPage = n
	})
}

// WithTrackPath sets the click-tracking path template; it must contain {id}.
func WithTrackPath(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.trackPath = path
	})
}

// WithFinalizeKeys replaces the keys AddFacetAndFinalize strips.
func WithFinalizeKeys(keys ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.finalizeKeys = keys
	})
}

// WithFacetsFile loads facet field configuration from a YAML file with a
// top-level facet_fields mapping.
func WithFacetsFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.facetsFile = path
	})
}

// WithFacetFields uses an in-memory facet_fields tree (see NewFacetFields).
// It takes precedence over WithFacetsFile.
func WithFacetFields(fields *ConfigNode) Option {
	return optionFunc(func(c *clientConfig) {
		c.facetFields = fields
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers facet edit and session lookup counters on the
// given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
