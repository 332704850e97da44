package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores session state in Redis. Each (session, key) pair is a
// separate Redis key so bindings expire independently of one another.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend creates a Redis-backed session backend.
func NewRedisBackend(addr string, db int, ttl time.Duration) *RedisBackend {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisBackend{client: client, ttl: ttl}
}

// Ping checks the Redis connection.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func redisKey(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}

func (r *RedisBackend) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, redisKey(sessionID, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	// Sliding expiry: an active session keeps its bindings alive.
	r.client.Expire(ctx, redisKey(sessionID, key), r.ttl)

	return value, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, sessionID, key, value string) error {
	return r.client.Set(ctx, redisKey(sessionID, key), value, r.ttl).Err()
}
