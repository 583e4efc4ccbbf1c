package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

// The hash tag keeps the generation and its snapshots in one cluster slot so
// setIfCurrent can touch both.
const (
	leaderboardGenKey    = "leaderboard:{top}:gen"
	leaderboardKeyPrefix = "leaderboard:{top}:"
)

// setIfCurrent writes the snapshot only while KEYS[1] still holds ARGV[1].
var setIfCurrent = goredis.NewScript(`
local current = redis.call("GET", KEYS[1]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// JSONCache stores JSON snapshots of the leaderboard keyed by generation and
// limit. Invalidate bumps the generation; old snapshots age out with the ttl.
type JSONCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewLeaderboardCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) *JSONCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &JSONCache{log: log.With("client", "LeaderboardCache"), rdb: rdb, ttl: ttl}
}

func key(gen int64, limit int) string {
	return leaderboardKeyPrefix + strconv.FormatInt(gen, 10) + ":" + strconv.Itoa(limit)
}

// Generation returns the current generation, 0 before the first invalidation.
func (c *JSONCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, leaderboardGenKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get decodes the cached snapshot for gen and limit into out. A miss returns false.
func (c *JSONCache) Get(ctx context.Context, gen int64, limit int, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key(gen, limit)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("dropping undecodable leaderboard snapshot", "generation", gen, "limit", limit, "error", err)
		_ = c.rdb.Del(ctx, key(gen, limit)).Err()
		return false, nil
	}
	return true, nil
}

// Set stores v unless the generation moved past gen.
func (c *JSONCache) Set(ctx context.Context, gen int64, limit int, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	stored, err := setIfCurrent.Run(ctx, c.rdb,
		[]string{leaderboardGenKey, key(gen, limit)},
		strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		c.log.Debug("skipping leaderboard snapshot from an old generation", "generation", gen, "limit", limit)
	}
	return nil
}

// Invalidate retires every cached snapshot.
func (c *JSONCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, leaderboardGenKey).Err()
}
