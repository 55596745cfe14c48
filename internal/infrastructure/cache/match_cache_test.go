package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisMatchCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisMatchCache(client, ttl), mr
}

func TestRedisMatchCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	_, gen, ok, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)

	matches := []domain.Match{{
		UserID:             "u2",
		Name:               "Ben",
		Sports:             []string{"Tennis"},
		GymLevel:           domain.GymLevelAdvanced,
		WorkoutGoal:        "Getting fit",
		CompatibilityScore: 88,
		ScoreBreakdown:     domain.ScoreBreakdown{SportsOverlap: 1, GymLevelMatch: 0.7, WorkoutGoalMatch: 1, AgeCompatibility: 0.8},
	}}
	require.NoError(t, c.Set(ctx, "u1", gen, matches))

	got, _, ok, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, matches, got)
	assert.Equal(t, 30*time.Second, mr.TTL(matchKey("u1")))

	mr.FastForward(31 * time.Second)
	_, _, ok, err = c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisMatchCacheInvalidate(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, id, 0, []domain.Match{}))
	}

	require.NoError(t, c.Invalidate(ctx, "a", "b"))
	assert.False(t, mr.Exists(matchKey("a")))
	assert.False(t, mr.Exists(matchKey("b")))
	assert.True(t, mr.Exists(matchKey("c")))
	assert.NoError(t, c.Invalidate(ctx))

	_, gen, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)
}

func TestRedisMatchCacheDropsListBuiltBeforeInvalidate(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	// A reader misses and starts computing under generation 0.
	_, gen, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	// A friend request lands meanwhile.
	require.NoError(t, c.Invalidate(ctx, "a", "b"))

	stale := []domain.Match{{UserID: "b", CompatibilityScore: 90}}
	require.NoError(t, c.Set(ctx, "a", gen, stale))
	assert.False(t, mr.Exists(matchKey("a")))

	// The next reader computes under the new generation and is stored.
	_, gen, _, err = c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "a", gen, []domain.Match{}))
	got, _, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestRedisMatchCacheUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisMatchCache(client, time.Minute)
	mr.Close()

	_, _, _, err = c.Get(context.Background(), "u1")
	assert.Error(t, err)
}
