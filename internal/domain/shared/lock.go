package shared

import (
	"context"
	"time"
)

// SyncLocker guards the sync pipeline so only one run executes at a time,
// across all instances when backed by a shared store. Acquire returns false
// without error when another holder owns the lock; on success it returns a
// token identifying the claim. Release is a no-op when the token no longer
// matches the current holder, so a run that outlived its TTL cannot free a
// lock a later run has since acquired.
type SyncLocker interface {
	Acquire(ctx context.Context, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, token string) error
}
