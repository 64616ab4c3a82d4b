// Package distlock serializes scoring runs across instances: at most one
// run per ad account holds the account's lock at a time, whether the run
// was triggered by the API or by the poller.
package distlock

import (
	"context"
	"database/sql"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is a single-owner lock around one scoring run. An instance is
// not goroutine-safe; each run acquires its own instance.
type DistLock interface {
	// Acquire attempts the lock without blocking. False means another
	// holder has it.
	Acquire(ctx context.Context) (bool, error)
	// Release frees the lock if this instance still owns it.
	Release(ctx context.Context) error
}

// NewLock picks the backend: Redis when a client is available (works
// across hosts), otherwise Postgres advisory locks on the shared DB.
func NewLock(redisClient *redis.Client, db *sql.DB, key string, ttl time.Duration) DistLock {
	if redisClient != nil {
		return NewRedisLock(redisClient, key, ttl)
	}
	return NewPGAdvisoryLock(db, key)
}

// PGAdvisoryLock implements DistLock on pg_try_advisory_lock. Advisory
// locks are session scoped, so the acquiring connection stays pinned
// until Release; unlocking through a different pooled connection would
// silently do nothing. A dropped connection releases the lock, which
// covers the crashed-holder case the Redis TTL covers.
type PGAdvisoryLock struct {
	db     *sql.DB
	lockID int64
	conn   *sql.Conn
}

// NewPGAdvisoryLock derives a stable 64-bit lock ID from the key so every
// instance contends on the same advisory slot.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &PGAdvisoryLock{
		db:     db,
		lockID: int64(h.Sum64()),
	}
}

// Acquire pins a connection from the pool and tries the advisory lock on
// it. The connection is returned to the pool immediately unless the lock
// was won.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, err
	}
	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired); err != nil {
		conn.Close()
		return false, err
	}
	if !acquired {
		conn.Close()
		return false, nil
	}
	l.conn = conn
	return true, nil
}

// Release unlocks on the pinned connection and returns it to the pool.
// Safe to call when the lock was never acquired.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	_, err := l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	l.conn.Close()
	l.conn = nil
	return err
}
