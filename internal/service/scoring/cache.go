package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// RedisResultCache keeps each account's latest run output in Redis so
// reads survive process restarts and stay off the hot path of a run.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResultCache wraps a Redis client. Entries expire after ttl; a
// zero ttl keeps them until overwritten.
func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

func latestKey(accountID string) string {
	return "scoring:latest:" + accountID
}

// SetLatest stores the run output as JSON under the account's key.
func (c *RedisResultCache) SetLatest(ctx context.Context, accountID string, out *domain.RunOutput) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshaling run output: %w", err)
	}
	if err := c.client.Set(ctx, latestKey(accountID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching run output: %w", err)
	}
	return nil
}

// GetLatest returns the cached output, or ErrNoLatestResult on a miss.
func (c *RedisResultCache) GetLatest(ctx context.Context, accountID string) (*domain.RunOutput, error) {
	data, err := c.client.Get(ctx, latestKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoLatestResult
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached run output: %w", err)
	}

	var out domain.RunOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding cached run output: %w", err)
	}
	return &out, nil
}
