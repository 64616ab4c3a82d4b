package distlock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLock implements DistLock with SET NX plus a TTL. The TTL frees the
// lock if a holder crashes mid-run; it must exceed the run timeout so a
// live run never loses its lock. Each instance carries a random ownership
// token, and release is a compare-and-delete so one instance can never
// free another's lock.
type RedisLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// NewRedisLock creates a lock instance for the given key. The "lock:"
// prefix keeps lock keys apart from cache keys on a shared Redis.
func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		client: client,
		key:    "lock:" + key,
		token:  uuid.NewString(),
		ttl:    ttl,
	}
}

// Acquire attempts SET NX. False means another holder has the key.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	return ok, nil
}

// Release deletes the key only while it still carries this instance's
// token. A lock lost to TTL expiry is left alone.
func (l *RedisLock) Release(ctx context.Context) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Result()
	return err
}
