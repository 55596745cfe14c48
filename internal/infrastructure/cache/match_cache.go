package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

const (
	matchKeyPrefix      = "recapp:matches:"
	generationKeyPrefix = "recapp:matches:gen:"
)

// RedisMatchCache stores ranked match lists per user.
//
// Each user also has a generation counter with no expiry. Invalidate bumps
// it, and Set only writes when the counter still holds the value the caller
// read before computing its list, so a list built from data read before a
// relationship change is never stored after that change's invalidation.
type RedisMatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMatchCache(client *redis.Client, ttl time.Duration) *RedisMatchCache {
	return &RedisMatchCache{client: client, ttl: ttl}
}

func matchKey(userID string) string {
	return matchKeyPrefix + userID
}

func generationKey(userID string) string {
	return generationKeyPrefix + userID
}

func (c *RedisMatchCache) Get(ctx context.Context, userID string) ([]domain.Match, int64, bool, error) {
	vals, err := c.client.MGet(ctx, matchKey(userID), generationKey(userID)).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get matches: %w", err)
	}

	generation, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, false, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, false, nil
	}
	var matches []domain.Match
	if err := json.Unmarshal([]byte(raw), &matches); err != nil {
		return nil, 0, false, fmt.Errorf("decode cached matches: %w", err)
	}
	return matches, generation, true, nil
}

// Set stores matches unless the user was invalidated after generation was read.
func (c *RedisMatchCache) Set(ctx context.Context, userID string, generation int64, matches []domain.Match) error {
	raw, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}

	genKey := generationKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		cur, err := parseGeneration(nilIfMissing(current, err))
		if err != nil {
			return err
		}
		if cur != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, matchKey(userID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("redis set matches: %w", err)
	}
}

// Invalidate drops cached lists for every given user and bumps their generations.
func (c *RedisMatchCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Del(ctx, matchKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate matches: %w", err)
	}
	return nil
}

var errStaleGeneration = errors.New("match cache generation changed")

func nilIfMissing(v string, err error) any {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return v
}

func parseGeneration(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode match cache generation %q: %w", s, err)
	}
	return n, nil
}

// NopMatchCache is used when Redis is disabled.
type NopMatchCache struct{}

func (NopMatchCache) Get(context.Context, string) ([]domain.Match, int64, bool, error) {
	return nil, 0, false, nil
}

func (NopMatchCache) Set(context.Context, string, int64, []domain.Match) error {
	return nil
}

func (NopMatchCache) Invalidate(context.Context, ...string) error {
	return nil
}
