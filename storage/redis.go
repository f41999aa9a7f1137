package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the configuration for the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. one prefix per end user when a
	// service embeds the SDK on behalf of many users.
	Prefix string
}

// Redis is a KeyValue backed by a Redis instance. Used by server-side
// embedders of the SDK; mobile-style single-user processes normally use
// Memory or a platform store instead.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client, prefix: cfg.Prefix}, nil
}

// NewRedisFromClient wraps an already-connected client.
func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// MultiSet writes all pairs in a single MSET so readers never observe a
// partial batch.
func (r *Redis) MultiSet(ctx context.Context, pairs []Pair) error {
	args := make([]interface{}, 0, len(pairs)*2)
	for _, p := range pairs {
		args = append(args, r.key(p.Key), p.Value)
	}
	return r.client.MSet(ctx, args...).Err()
}

func (r *Redis) Remove(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	return r.client.Del(ctx, prefixed...).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
