package api

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"boardkit/domain"
)

// idempotencyKeyHeader carries an optional client-chosen key on create
// requests. A replayed key is rejected with a conflict instead of creating a
// duplicate resource.
const idempotencyKeyHeader = "Idempotency-Key"

// RedisDeduper stores seen idempotency keys in Redis so all instances reject
// the same replays.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(userID, key string) string {
	return fmt.Sprintf("%s:%s", userID, key)
}

// Add records the key if it does not already exist. It returns true when the
// key was newly added.
func (r *RedisDeduper) Add(ctx context.Context, userID, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(userID, key), 1, r.ttl).Result()
}

// Remove deletes a previously recorded key so the caller may retry after a
// failed create.
func (r *RedisDeduper) Remove(ctx context.Context, userID, key string) error {
	return r.client.Del(ctx, r.key(userID, key)).Err()
}

// claimIdempotencyKey reserves the request's idempotency key, if any. The
// returned release func rolls the reservation back when the guarded create
// fails. A deduper outage degrades to no deduplication rather than failing
// the request.
func claimIdempotencyKey(c echo.Context, deduper Deduper, userID string) (func(context.Context), error) {
	noop := func(context.Context) {}

	key := c.Request().Header.Get(idempotencyKeyHeader)
	if key == "" || deduper == nil {
		return noop, nil
	}

	ctx := c.Request().Context()
	added, err := deduper.Add(ctx, userID, key)
	if err != nil {
		c.Logger().Warnf("idempotency check unavailable: %v", err)
		return noop, nil
	}
	if !added {
		return noop, domain.ConflictError{Message: "duplicate request"}
	}

	return func(ctx context.Context) {
		if err := deduper.Remove(ctx, userID, key); err != nil {
			c.Logger().Errorf("idempotency rollback failed: %v", err)
		}
	}, nil
}
