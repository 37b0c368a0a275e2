package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each key as a plain redis string under a namespace prefix.
// Entries carry no TTL: persisted state lives until explicitly cleared.
type Redis struct {
	client    *redis.Client
	namespace string
}

// NewRedis wraps an already connected client. namespace is prepended to
// every key (ex: "multiverse:").
func NewRedis(client *redis.Client, namespace string) *Redis {
	return &Redis{
		client:    client,
		namespace: namespace,
	}
}

// Key returns the redis key used for a storage key.
func (r *Redis) Key(key string) string {
	return r.namespace + key
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.Key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.Key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
