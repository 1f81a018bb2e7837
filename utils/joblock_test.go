package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalJobLock(t *testing.T) {
	ctx := context.Background()
	lock := NewLocalJobLock()

	release, err := lock.TryLock(ctx, "ingest")
	require.NoError(t, err)

	_, err = lock.TryLock(ctx, "ingest")
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := lock.TryLock(ctx, "sweep")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := lock.TryLock(ctx, "ingest")
	require.NoError(t, err)
	again()
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return s, client
}

func TestRedisJobLock(t *testing.T) {
	ctx := context.Background()
	s, client := newTestRedis(t)
	lock := NewRedisJobLock(client, time.Minute)

	release, err := lock.TryLock(ctx, "ingest")
	require.NoError(t, err)
	assert.True(t, s.Exists("creditapproval:lock:ingest"))

	// Вторая реплика не может захватить блокировку
	replica := NewRedisJobLock(client, time.Minute)
	_, err = replica.TryLock(ctx, "ingest")
	assert.ErrorIs(t, err, ErrLockHeld)

	release()
	assert.False(t, s.Exists("creditapproval:lock:ingest"))

	release2, err := replica.TryLock(ctx, "ingest")
	require.NoError(t, err)
	release2()
}

func TestRedisJobLockExpiry(t *testing.T) {
	ctx := context.Background()
	s, client := newTestRedis(t)
	lock := NewRedisJobLock(client, time.Second)

	stale, err := lock.TryLock(ctx, "ingest")
	require.NoError(t, err)

	s.FastForward(2 * time.Second)

	fresh, err := lock.TryLock(ctx, "ingest")
	require.NoError(t, err)

	// Просроченный владелец не должен снять чужую блокировку
	stale()
	assert.True(t, s.Exists("creditapproval:lock:ingest"))

	fresh()
	assert.False(t, s.Exists("creditapproval:lock:ingest"))
}

func TestNewRedisClient(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	client.Close()

	s.Close()
	_, err = NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestRedisJobLockRenewal(t *testing.T) {
	ctx := context.Background()
	s, client := newTestRedis(t)
	lock := NewRedisJobLock(client, 300*time.Millisecond)
	key := "creditapproval:lock:ingest"

	release, err := lock.TryLock(ctx, "ingest")
	require.NoError(t, err)

	// Время в miniredis идет только через FastForward: без продления ключ истек бы через 100ms
	s.FastForward(200 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return s.TTL(key) > 200*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond)

	s.FastForward(200 * time.Millisecond)
	assert.True(t, s.Exists(key))

	release()
	assert.False(t, s.Exists(key))
}
