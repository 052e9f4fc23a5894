package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const ruleSetCacheKey = "catalog:ruleset"

// ErrCacheMiss indicates the rule set is not cached.
var ErrCacheMiss = errors.New("catalog: cache miss")

// Cache wraps Redis based caching of the routing rule set.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetRuleSet returns the cached rule set, or ErrCacheMiss.
func (c *Cache) GetRuleSet(ctx context.Context) (RuleSet, error) {
	if c == nil || c.client == nil {
		return RuleSet{}, ErrCacheMiss
	}
	payload, err := c.client.Get(ctx, ruleSetCacheKey).Bytes()
	if err == redis.Nil {
		return RuleSet{}, ErrCacheMiss
	}
	if err != nil {
		return RuleSet{}, err
	}
	var set RuleSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return RuleSet{}, ErrCacheMiss
	}
	return set, nil
}

// SetRuleSet stores the rule set with the configured TTL.
func (c *Cache) SetRuleSet(ctx context.Context, set RuleSet) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ruleSetCacheKey, payload, c.ttl).Err()
}

// Invalidate drops the cached rule set after routing mutations.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, ruleSetCacheKey).Err()
}
