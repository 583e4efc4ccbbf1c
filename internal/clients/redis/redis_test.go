package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

// unreachable points at a port nothing listens on so calls fail fast.
func unreachable(t *testing.T) *goredis.Client {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(nil, Config{Addr: "localhost:6379"})
	assert.Error(t, err)

	_, err = NewClient(testLogger(t), Config{Addr: "  "})
	assert.ErrorContains(t, err, "REDIS_ADDR")
}

func TestNewClientFailsPing(t *testing.T) {
	_, err := NewClient(testLogger(t), Config{Addr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "redis ping")
}

func TestLockerSurfacesConnectionErrors(t *testing.T) {
	l := NewLocker(testLogger(t), unreachable(t), "", 0)
	assert.Equal(t, "lock:", l.prefix)
	assert.Equal(t, 10*time.Second, l.ttl)

	unlock, err := l.Lock(context.Background(), "progress:user")
	assert.Nil(t, unlock)
	assert.ErrorContains(t, err, "acquire lock:progress:user")

	var nilLocker *Locker
	_, err = nilLocker.Lock(context.Background(), "k")
	assert.Error(t, err)
}

func TestLeaderboardCacheKeysAndErrors(t *testing.T) {
	assert.Equal(t, "leaderboard:{top}:3:10", key(3, 10))

	c := NewLeaderboardCache(testLogger(t), unreachable(t), 0)
	assert.Equal(t, 30*time.Second, c.ttl)

	ctx := context.Background()
	_, err := c.Generation(ctx)
	assert.Error(t, err)

	var out []map[string]any
	hit, err := c.Get(ctx, 0, 10, &out)
	assert.False(t, hit)
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, 0, 10, []int{1}))
	assert.Error(t, c.Invalidate(ctx))
}
