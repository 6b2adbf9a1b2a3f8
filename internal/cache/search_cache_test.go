package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*SearchCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSearchCache(rdb, time.Minute), s
}

func TestSearchCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, s := newCache(t)

	_, hit, err := c.Get(ctx, "compass")
	require.NoError(t, err)
	assert.False(t, hit)

	want := []onboarding.Candidate{{AppID: "APP011", AppName: "Compass API", Owner: "Sarah Lee"}}
	require.NoError(t, c.Set(ctx, " Compass ", want))
	assert.True(t, s.Exists("cloudnext:search:compass"))

	got, hit, err := c.Get(ctx, "COMPASS")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)
}

func TestSearchCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, s := newCache(t)

	require.NoError(t, c.Set(ctx, "billing", nil))
	got, hit, err := c.Get(ctx, "billing")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, got)

	s.FastForward(2 * time.Minute)
	_, hit, err = c.Get(ctx, "billing")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSearchCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, s := newCache(t)

	require.NoError(t, c.Set(ctx, "ab", nil))
	require.NoError(t, c.Set(ctx, "cd", nil))
	require.NoError(t, s.Set("unrelated", "x"))

	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, s.Exists(Key("ab")))
	assert.False(t, s.Exists(Key("cd")))
	assert.True(t, s.Exists("unrelated"))
}

func TestSearchCacheReportsBrokenEntries(t *testing.T) {
	ctx := context.Background()
	c, s := newCache(t)
	require.NoError(t, s.Set(Key("bad"), "{not json"))

	_, hit, err := c.Get(ctx, "bad")
	require.Error(t, err)
	assert.False(t, hit)
}
