package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/db"
	"github.com/kailas-cloud/searchstate/internal/domain"
	domsession "github.com/kailas-cloud/searchstate/internal/domain/session"
	"github.com/kailas-cloud/searchstate/internal/logger"
)

// store is the consumer interface for session persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store persists search session records as JSON with a TTL.
type Store struct {
	store   store
	prefix  string
	ttl     time.Duration
	lookups *prometheus.CounterVec
}

// New creates a session store. Keys are "<prefix>session:<id>".
// lookups is a counter vec with label "result" ("hit"/"miss"); it may be nil.
func New(s store, prefix string, ttl time.Duration, lookups *prometheus.CounterVec) *Store {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Store{
		store:   s,
		prefix:  prefix,
		ttl:     ttl,
		lookups: lookups,
	}
}

// Save validates and stores rec, replacing any record with the same id.
func (s *Store) Save(ctx context.Context, rec *domsession.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session marshal %s: %w", rec.ID, err)
	}
	if err := s.store.SetWithTTL(ctx, s.key(rec.ID), data, s.ttl); err != nil {
		return fmt.Errorf("session SET %s: %w", rec.ID, err)
	}
	logger.FromContext(ctx).Debug("session saved",
		zap.String("search_id", rec.ID),
		zap.Int("counter", rec.Counter),
	)
	return nil
}

// Get loads the record for id and slides its expiry forward.
// A missing record is domain.ErrSessionNotFound.
func (s *Store) Get(ctx context.Context, id string) (*domsession.Record, error) {
	key := s.key(id)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			s.inc("miss")
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("session GET %s: %w", id, err)
	}
	s.inc("hit")

	var rec domsession.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrInvalidSession, id, err)
	}

	if s.ttl > 0 {
		if err := s.store.Expire(ctx, key, s.ttl, false); err != nil {
			logger.FromContext(ctx).Warn("session expiry refresh failed",
				zap.String("search_id", id),
				zap.Error(err),
			)
		}
	}
	return &rec, nil
}

// Delete removes the record for id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.store.Del(ctx, s.key(id)); err != nil {
		return fmt.Errorf("session DEL %s: %w", id, err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return s.prefix + "session:" + id
}

func (s *Store) inc(result string) {
	if s.lookups != nil {
		s.lookups.WithLabelValues(result).Inc()
	}
}
