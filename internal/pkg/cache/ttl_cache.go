package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/storage"
)

// DefaultTTL is how long an entry is served after it was written.
const DefaultTTL = 5 * time.Minute

// CacheMetrics tracks cache performance for one TTLCache.
type CacheMetrics struct {
	Hits    int64
	Misses  int64
	Expired int64
	Sets    int64
}

// entry is the serialised form written to storage.
type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
}

// TTLCache stores JSON payloads in a storage scope and stops serving them once they are
// older than the TTL. Expired entries are deleted lazily on the read that notices them.
type TTLCache struct {
	store  storage.Storage
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	hits, misses, expired, sets atomic.Int64
}

type Option func(*TTLCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *TTLCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *TTLCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a cache over store (normally the profile's session scope).
func New(store storage.Storage, opts ...Option) *TTLCache {
	c := &TTLCache{
		store:  store,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TTLCache) TTL() time.Duration { return c.ttl }

// Set stores data under key, stamped with the current time. Storage failures are returned.
func (c *TTLCache) Set(ctx context.Context, key string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(err, "cache: encode %q", key)
	}
	raw, err := json.Marshal(entry{Data: payload, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return errors.Wrapf(err, "cache: encode entry %q", key)
	}
	if err := c.store.SetItem(ctx, key, string(raw)); err != nil {
		return err
	}

	c.sets.Add(1)
	metrics.Get().CacheSetsTotal.Add(ctx, 1)
	c.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

// Get returns the stored payload if it is younger than the TTL. Missing, expired and
// unreadable entries are all reported as a miss; only expired entries are removed.
func (c *TTLCache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, ok, err := c.store.GetItem(ctx, key)
	if err != nil {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		c.miss(ctx, "error")
		return nil, false
	}
	if !ok {
		c.logger.Debug("Cache miss", zap.String("key", key))
		c.miss(ctx, "miss")
		return nil, false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.logger.Warn("Cache entry unreadable", zap.String("key", key), zap.Error(err))
		c.miss(ctx, "corrupt")
		return nil, false
	}

	age := c.now().Sub(time.UnixMilli(e.Timestamp))
	if age >= c.ttl {
		c.expired.Add(1)
		c.logger.Debug("Cache expired", zap.String("key", key), zap.Duration("age", age))
		if err := c.store.RemoveItem(ctx, key); err != nil {
			c.logger.Warn("Failed to remove expired cache entry", zap.String("key", key), zap.Error(err))
		}
		c.miss(ctx, "expired")
		return nil, false
	}

	c.hits.Add(1)
	metrics.CacheLookup(ctx, "hit")
	c.logger.Debug("Cache hit", zap.String("key", key))
	return e.Data, true
}

// Invalidate removes key. Removing an absent key is not an error.
func (c *TTLCache) Invalidate(ctx context.Context, key string) {
	if err := c.store.RemoveItem(ctx, key); err != nil {
		c.logger.Warn("Cache invalidate failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.logger.Debug("Cache invalidate", zap.String("key", key))
}

// Clear wipes the whole storage scope, not only the keys this cache wrote.
func (c *TTLCache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.logger.Info("Cache cleared")
	return nil
}

// GetMetrics returns the counters of this cache instance.
func (c *TTLCache) GetMetrics() CacheMetrics {
	return CacheMetrics{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Expired: c.expired.Load(),
		Sets:    c.sets.Load(),
	}
}

func (c *TTLCache) miss(ctx context.Context, result string) {
	c.misses.Add(1)
	metrics.CacheLookup(ctx, result)
}

// Lookup decodes the cached payload into T. A payload that does not decode into T is a miss.
func Lookup[T any](ctx context.Context, c *TTLCache, key string) (T, bool) {
	var zero T
	raw, ok := c.Get(ctx, key)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("Cache payload has unexpected shape", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	return v, true
}

// Fetch returns the cached value for key, or runs load on a miss and caches its result.
// Load errors are returned as-is and nothing is cached. A failed cache write is logged only.
func Fetch[T any](ctx context.Context, c *TTLCache, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := Lookup[T](ctx, c, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		c.logger.Warn("Failed to cache fetched value", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
