package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySyncLock_AcquireAndRelease(t *testing.T) {
	lock := NewInMemorySyncLock()
	ctx := context.Background()

	token, ok, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	// Second acquire while held fails without error
	_, ok, err = lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx, token))

	_, ok, err = lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemorySyncLock_ExpiredLockCanBeReacquired(t *testing.T) {
	lock := NewInMemorySyncLock()
	ctx := context.Background()

	_, ok, err := lock.Acquire(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok, err = lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemorySyncLock_StaleReleaseDoesNotFreeSuccessor(t *testing.T) {
	lock := NewInMemorySyncLock()
	ctx := context.Background()

	// Run 1 takes the lock but its claim expires mid-run
	firstToken, ok, err := lock.Acquire(ctx, time.Nanosecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(time.Millisecond)

	// Run 2 acquires over the expired claim
	_, ok, err = lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Run 1 finishing late must not free run 2's lock
	require.NoError(t, lock.Release(ctx, firstToken))

	_, ok, err = lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemorySyncLock_ReleaseWithoutAcquireIsSafe(t *testing.T) {
	lock := NewInMemorySyncLock()
	assert.NoError(t, lock.Release(context.Background(), ""))
}
