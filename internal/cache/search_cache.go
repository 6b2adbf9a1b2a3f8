// Package cache keeps candidate search results in Redis so repeated
// keystrokes in the add dialog do not hit the directory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cloudnext:search:"

// SearchCache stores search results keyed by the normalized query.
type SearchCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSearchCache(rdb redis.Cmdable, ttl time.Duration) *SearchCache {
	return &SearchCache{rdb: rdb, ttl: ttl}
}

// Key is the Redis key used for query.
func Key(query string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached result for query. A miss is not an error.
func (c *SearchCache) Get(ctx context.Context, query string) ([]onboarding.Candidate, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []onboarding.Candidate
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *SearchCache) Set(ctx context.Context, query string, results []onboarding.Candidate) error {
	if results == nil {
		results = []onboarding.Candidate{}
	}
	b, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(query), b, c.ttl).Err()
}

// Invalidate drops every cached query, e.g. after the directory is reseeded.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
