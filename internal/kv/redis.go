package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a KVStore backed by go-redis. setnx maps directly onto SETNX,
// which Redis guarantees atomic even under cluster-mode replication. The
// caller owns the client's lifecycle (construct it with
// internal/adapter/storage/redis.NewClient, which also verifies
// connectivity with a PING).
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-connected client as a KVStore.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}
