package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// BackendRedis names the Redis store.
const BackendRedis = "redis"

// DefaultRedisPrefix namespaces collection keys.
const DefaultRedisPrefix = "stockledger:"

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and keeps each collection under
// <prefix><collection>.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*KVStore, error) {
	const op = "NewRedisStore"

	if cfg.Addr == "" {
		return nil, NewStoreError(op, BackendRedis, ErrInvalidConfiguration, "REDIS_ADDR is empty")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultRedisPrefix
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     4,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, NewStoreError(op, BackendRedis, ErrTransient, err.Error())
	}

	return newKVStore(BackendRedis, &redisBlobs{client: rdb, prefix: cfg.Prefix}), nil
}

type redisBlobs struct {
	client *redis.Client
	prefix string
}

func (r *redisBlobs) get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *redisBlobs) put(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.prefix+key, data, 0).Err()
}

func (r *redisBlobs) close() error {
	return r.client.Close()
}
