package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ardash/backend/internal/domain/shared"
)

// releaseScript deletes the lock key only when it still holds our token,
// so a run that outlived its TTL cannot release a lock acquired by another
// instance in the meantime.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSyncLock implements SyncLocker using Redis. It is suitable for
// distributed deployments where multiple instances share one sync schedule.
type RedisSyncLock struct {
	client *redis.Client
	key    string
}

// NewRedisSyncLock creates a Redis-backed sync lock over an existing client
func NewRedisSyncLock(client *redis.Client, key string) *RedisSyncLock {
	if key == "" {
		key = "sync:lock"
	}
	return &RedisSyncLock{
		client: client,
		key:    key,
	}
}

// Acquire attempts to take the lock with a TTL via SETNX.
// Returns false if another holder owns the lock.
func (l *RedisSyncLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token, err := newLockToken()
	if err != nil {
		return "", false, err
	}

	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives the lock back if the token still identifies the holder
func (l *RedisSyncLock) Release(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}

func newLockToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Ensure RedisSyncLock implements SyncLocker
var _ shared.SyncLocker = (*RedisSyncLock)(nil)
