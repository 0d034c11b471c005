package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "pointgate:challenge:"
	redisMaxAttempts = 5
)

// RedisStore keeps challenges in Redis, with a key TTL only when the
// engine caps retention. Resolve uses WATCH/MULTI so concurrent
// verifications of the same challenge observe one consistent outcome.
type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(userName string) string {
	return redisKeyPrefix + userName
}

func (s *RedisStore) Put(ctx context.Context, c *models.Challenge, ttl time.Duration) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}

	// zero means no expiry for SET
	if ttl < 0 {
		ttl = 0
	}

	if err := s.rdb.Set(ctx, redisKey(c.UserName), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Resolve(ctx context.Context, userName string, fn ResolveFunc) error {
	key := redisKey(userName)

	for attempt := 0; attempt < redisMaxAttempts; attempt++ {
		var result error

		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			b, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				result = common.ErrNoActiveChallenge
				return nil
			}
			if err != nil {
				return err
			}

			var c models.Challenge
			if err := json.Unmarshal(b, &c); err != nil {
				return err
			}

			consume, ferr := fn(&c)
			if consume {
				_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
					p.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
			}
			result = ferr
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis resolve: %w", err)
		}
		return result
	}

	return fmt.Errorf("redis resolve %s: too much contention: %w", userName, common.ErrorInternal)
}
