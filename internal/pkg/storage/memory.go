package storage

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryBackend keeps every scope in process memory. Session-scope keys can be given an idle
// expiry so abandoned browser tabs do not accumulate; local-scope keys never expire.
type MemoryBackend struct {
	items       *gocache.Cache
	sessionIdle time.Duration
	closed      atomic.Bool
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an in-memory backend. sessionIdle <= 0 disables session-key expiry.
func NewMemoryBackend(sessionIdle time.Duration) *MemoryBackend {
	cleanup := time.Duration(0)
	if sessionIdle > 0 {
		cleanup = sessionIdle / 2
	}
	return &MemoryBackend{
		items:       gocache.New(gocache.NoExpiration, cleanup),
		sessionIdle: sessionIdle,
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	if m.closed.Load() {
		return "", false, ErrClosed
	}
	v, ok := m.items.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.items.Set(key, value, m.expiryFor(key))
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	for _, k := range keys {
		m.items.Delete(k)
	}
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	var keys []string
	for k := range m.items.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MemoryBackend) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.items.Flush()
	return nil
}

func (m *MemoryBackend) expiryFor(key string) time.Duration {
	if m.sessionIdle > 0 && IsSessionKey(key) {
		return m.sessionIdle
	}
	return gocache.NoExpiration
}
