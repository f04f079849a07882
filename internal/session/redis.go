package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pulseboard/pulseboard/pkg/helpers"
)

const keyPrefix = "user:session:"

// RedisStore keeps session records in Redis as JSON values with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	var rec Record
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, keyPrefix+key, &rec)
	if err != nil {
		return Record{}, false, err
	}
	return rec, ok, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, s.rdb, keyPrefix+key, rec, ttl)
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return helpers.RedisDel(ctx, s.rdb, keyPrefix+key)
}

var _ Store = (*RedisStore)(nil)
