package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-mentorportal/internal/pkg/storage"
	"github.com/FACorreiaa/go-mentorportal/internal/testfixtures"
)

func newTestCache(t *testing.T) (*TTLCache, *storage.Scoped, *testfixtures.Clock) {
	t.Helper()
	backend := storage.NewMemoryBackend(0)
	t.Cleanup(func() { _ = backend.Close() })
	scope := storage.Session(backend, "profile-1")
	clock := testfixtures.NewClock(time.Time{})
	return New(scope, WithClock(clock.Now)), scope, clock
}

func TestTTLCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t)

	payloads := map[string]any{
		"list":   []string{"MIT", "CMU"},
		"object": map[string]any{"name": "Ada", "age": float64(36)},
		"number": float64(42),
		"null":   nil,
	}
	for key, p := range payloads {
		require.NoError(t, c.Set(ctx, key, p))
		got, ok := Lookup[any](ctx, c, key)
		require.True(t, ok, key)
		assert.Equal(t, p, got, key)
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, scope, clock := newTestCache(t)

	require.NoError(t, c.Set(ctx, KeyColleges, []string{"MIT"}))

	clock.Advance(DefaultTTL - time.Millisecond)
	_, ok := c.Get(ctx, KeyColleges)
	assert.True(t, ok, "entry is served until the TTL elapses")

	clock.Advance(time.Millisecond)
	_, ok = c.Get(ctx, KeyColleges)
	assert.False(t, ok, "entry exactly TTL old is expired")

	_, present, err := scope.GetItem(ctx, KeyColleges)
	require.NoError(t, err)
	assert.False(t, present, "expired entry is deleted on read")

	m := c.GetMetrics()
	assert.EqualValues(t, 1, m.Hits)
	assert.EqualValues(t, 1, m.Expired)
	assert.EqualValues(t, 1, m.Misses)
}

func TestTTLCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, KeyCities, []string{"Pune"}))
	c.Invalidate(ctx, KeyCities)
	_, ok := c.Get(ctx, KeyCities)
	assert.False(t, ok)

	c.Invalidate(ctx, "never-set")
	_, ok = c.Get(ctx, "never-set")
	assert.False(t, ok)
}

func TestTTLCache_MalformedEntryIsMissButKept(t *testing.T) {
	ctx := context.Background()
	c, scope, _ := newTestCache(t)

	require.NoError(t, scope.SetItem(ctx, KeyBatches, "{not json"))
	_, ok := c.Get(ctx, KeyBatches)
	assert.False(t, ok)

	raw, present, err := scope.GetItem(ctx, KeyBatches)
	require.NoError(t, err)
	assert.True(t, present, "malformed entries are left in place")
	assert.Equal(t, "{not json", raw)
}

func TestTTLCache_ClearIsScopeWide(t *testing.T) {
	ctx := context.Background()
	c, scope, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, KeyColleges, []string{"MIT"}))
	require.NoError(t, scope.SetItem(ctx, "draft-announcement", "hello"))

	require.NoError(t, c.Clear(ctx))

	keys, err := scope.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLookupWrongShapeIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, "count", 3))
	_, ok := Lookup[[]string](ctx, c, "count")
	assert.False(t, ok)
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCache(t)

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"2024", "2025"}, nil
	}

	v, err := Fetch(ctx, c, KeyBatches, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "2025"}, v)

	_, err = Fetch(ctx, c, KeyBatches, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second read is served from cache")

	clock.Advance(DefaultTTL)
	_, err = Fetch(ctx, c, KeyBatches, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry triggers a reload")

	boom := errors.New("backend down")
	_, err = Fetch(ctx, c, "other", func(context.Context) ([]string, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get(ctx, "other")
	assert.False(t, ok, "failed loads are not cached")
}

// Scenario: colleges are cached, read back, expire after six minutes and must be set again.
func TestCollegesScenario(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCache(t)

	require.NoError(t, c.Set(ctx, "colleges", []string{"MIT", "CMU"}))
	got, ok := Lookup[[]string](ctx, c, "colleges")
	require.True(t, ok)
	assert.Equal(t, []string{"MIT", "CMU"}, got)

	clock.Advance(6 * time.Minute)
	_, ok = Lookup[[]string](ctx, c, "colleges")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "colleges", []string{"MIT", "CMU", "IIT"}))
	got, ok = Lookup[[]string](ctx, c, "colleges")
	require.True(t, ok)
	assert.Len(t, got, 3)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "conversation:42", Key("conversation", "42"))
}
