package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the content hashes of accepted posts, one sorted set per
// table scored by accept time, so hash dedup survives across runs.
type RedisStore struct {
	rdb       *redis.Client
	retention time.Duration
}

func NewRedisStore(rdb *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, retention: retention}
}

func seenZKey(table string) string {
	return fmt.Sprintf("scout:seen:%s", table)
}

// SeenHashes prunes entries older than the retention window and returns the
// rest.
func (s *RedisStore) SeenHashes(ctx context.Context, table string, now time.Time) ([]string, error) {
	key := seenZKey(table)
	if s.retention > 0 {
		cutoff := now.Add(-s.retention).Unix()
		if err := s.rdb.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
			return nil, err
		}
	}
	return s.rdb.ZRange(ctx, key, 0, -1).Result()
}

// AddHashes records accepted hashes for table.
func (s *RedisStore) AddHashes(ctx context.Context, table string, hashes []string, now time.Time) error {
	if len(hashes) == 0 {
		return nil
	}
	zs := make([]redis.Z, 0, len(hashes))
	for _, h := range hashes {
		if h != "" {
			zs = append(zs, redis.Z{Score: float64(now.Unix()), Member: h})
		}
	}
	if len(zs) == 0 {
		return nil
	}
	return s.rdb.ZAdd(ctx, seenZKey(table), zs...).Err()
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
