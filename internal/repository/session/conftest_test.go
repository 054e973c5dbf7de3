package session

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/searchstate/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	delKeys []string
	touched []string
	expErr  error
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	m.delKeys = append(m.delKeys, key)
	delete(m.data, key)
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, _ bool) error {
	if m.expErr != nil {
		return m.expErr
	}
	m.touched = append(m.touched, key)
	m.ttls[key] = ttl
	return nil
}

func newTestStore(t *testing.T) (*Store, *mockStore) {
	t.Helper()
	ms := &mockStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
	return New(ms, "test:", time.Hour, nil), ms
}
