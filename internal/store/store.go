package store

import (
	"context"
	"fmt"

	"stockledger/pkg/services"
)

// Local backends
const (
	LocalFile  = BackendFile
	LocalRedis = BackendRedis
)

// Config selects and configures the local and remote stores.
type Config struct {
	Local       string // file or redis
	DataDir     string
	Redis       RedisConfig
	DatabaseURL string // empty disables the remote store
}

// Validate checks that the selected local backend has its settings.
func (c Config) Validate() error {
	switch c.Local {
	case LocalFile:
		if c.DataDir == "" {
			return fmt.Errorf("%w: DATA_DIR is required for the file store", ErrInvalidConfiguration)
		}
	case LocalRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: REDIS_ADDR is required for the redis store", ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown local store %q", ErrInvalidConfiguration, c.Local)
	}
	return nil
}

// OpenLocal opens the configured local store.
func OpenLocal(ctx context.Context, cfg Config) (*KVStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Local == LocalRedis {
		return NewRedisStore(ctx, cfg.Redis)
	}
	return NewFileStore(cfg.DataDir)
}

// OpenRemote opens the remote store, or returns nil when none is configured.
// The close function is always safe to call.
func OpenRemote(ctx context.Context, cfg Config) (services.DocumentStore, func() error, error) {
	noop := func() error { return nil }
	if cfg.DatabaseURL == "" {
		return nil, noop, nil
	}

	pg, err := NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, noop, err
	}
	return pg, pg.Close, nil
}
