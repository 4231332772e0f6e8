package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ardash/backend/internal/domain/shared"
)

// InMemorySyncLock implements SyncLocker using process-local state.
// Suitable for single-instance deployments and testing; for multi-instance
// deployments use RedisSyncLock so the lock is shared.
type InMemorySyncLock struct {
	mu          sync.Mutex
	holderToken string
	expiresAt   time.Time
}

// NewInMemorySyncLock creates a new in-memory sync lock
func NewInMemorySyncLock() *InMemorySyncLock {
	return &InMemorySyncLock{}
}

// Acquire takes the lock unless it is held and not yet expired
func (l *InMemorySyncLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.holderToken != "" && time.Now().Before(l.expiresAt) {
		return "", false, nil
	}

	token, err := newLockToken()
	if err != nil {
		return "", false, err
	}

	l.holderToken = token
	l.expiresAt = time.Now().Add(ttl)
	return token, true, nil
}

// Release gives the lock back if the token still identifies the holder.
// A stale token from a claim that expired and was re-acquired is ignored.
func (l *InMemorySyncLock) Release(ctx context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if token == "" || token != l.holderToken {
		return nil
	}

	l.holderToken = ""
	l.expiresAt = time.Time{}
	return nil
}

// Ensure InMemorySyncLock implements SyncLocker
var _ shared.SyncLocker = (*InMemorySyncLock)(nil)
